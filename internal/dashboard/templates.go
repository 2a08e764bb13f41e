package dashboard

import (
	_ "embed"
	"html/template"
	"net/http"
	"strings"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(indexHTML))

// ServeIndex serves the dashboard page. Every page load starts a fresh
// session; the persisted theme is applied before the page is rendered.
func (d *Dashboard) ServeIndex(w http.ResponseWriter, r *http.Request) {
	id, cookie := clientID(r)
	if cookie != nil {
		http.SetCookie(w, cookie)
	}
	s := d.open(r.Context(), id)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.snapshot()); err != nil {
		d.logger.Error("dashboard: rendering index", "error", err)
	}
}
