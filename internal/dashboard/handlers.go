package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/netsentry/internal/chart"
)

func (d *Dashboard) handleState(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (d *Dashboard) handleScan(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}

	// A scan is not cancelled when the browser goes away.
	err := s.ctrl.Scan(context.WithoutCancel(r.Context()))
	if errors.Is(err, ErrScanInProgress) {
		writeJSON(w, http.StatusConflict, s.snapshot())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (d *Dashboard) handleClose(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}
	s.ctrl.Close()
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (d *Dashboard) handleTheme(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}
	s.ctrl.ToggleTheme(r.Context())
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleChart serves the current image of a chart, e.g. /charts/line.svg.
func (d *Dashboard) handleChart(w http.ResponseWriter, r *http.Request) {
	s := d.load(w, r)
	if s == nil {
		return
	}

	var kind chart.Kind
	switch strings.TrimSuffix(chi.URLParam(r, "chart"), ".svg") {
	case string(chart.KindLine):
		kind = chart.KindLine
	case string(chart.KindPie):
		kind = chart.KindPie
	default:
		http.Error(w, "unknown chart", http.StatusNotFound)
		return
	}

	surface := s.page.Surface(kind)
	img := surface.Bytes()
	if len(img) == 0 {
		http.Error(w, "chart not rendered", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", surface.Format().ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(img)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
