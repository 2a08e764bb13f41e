package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/log"
	"github.com/ziadkadry99/netsentry/internal/prefs"
)

// ClientCookie identifies a browser across page loads; its value scopes the
// persisted theme.
const ClientCookie = "netsentry_client"

// DefaultMaxSessions bounds the live sessions; the least recently used one
// is closed to make room.
const DefaultMaxSessions = 256

// Dashboard serves the scan dashboard page and its API. Every page load
// gets a fresh controller; the theme survives through the preference store.
type Dashboard struct {
	scanner Scanner
	prefs   *prefs.Store
	size    chart.Size
	logger  *slog.Logger

	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
	tick        uint64
}

// New creates a Dashboard that scans with scanner and keeps preferences in
// store.
func New(scanner Scanner, store *prefs.Store, size chart.Size) *Dashboard {
	return &Dashboard{
		scanner:  scanner,
		prefs:    store,
		size:     size,
		logger:   log.Logger,
		sessions:    make(map[string]*session),
		maxSessions: DefaultMaxSessions,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/network", d.ServeIndex)
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/state", d.handleState)
		r.Post("/scan", d.handleScan)
		r.Post("/close", d.handleClose)
		r.Post("/theme", d.handleTheme)
		r.Get("/charts/{chart}", d.handleChart)
	})
	r.Get("/ws/dashboard", d.handleWebSocket)
}

// clientID returns the caller's client id, and a cookie to set when the
// caller did not present a valid one.
func clientID(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value, nil
		}
	}
	id := uuid.New().String()
	return id, &http.Cookie{
		Name:     ClientCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	}
}

// load returns the session of the caller. Sessions are only created by a
// page load; without one it answers 404 and returns nil.
func (d *Dashboard) load(w http.ResponseWriter, r *http.Request) *session {
	c, err := r.Cookie(ClientCookie)
	if err == nil {
		if s := d.lookup(c.Value); s != nil {
			return s
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no dashboard session, reload the page"})
	return nil
}

// lookup returns the live session of clientID, or nil.
func (d *Dashboard) lookup(clientID string) *session {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.sessions[clientID]
	if !ok {
		return nil
	}
	d.tick++
	s.lastUsed = d.tick
	return s
}

// open starts a fresh session for clientID, closing the one it replaces.
// When the limit is reached the least recently used session is evicted.
func (d *Dashboard) open(ctx context.Context, clientID string) *session {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.sessions[clientID]; ok {
		s.close()
		delete(d.sessions, clientID)
	}
	for d.maxSessions > 0 && len(d.sessions) >= d.maxSessions {
		d.evictOldest()
	}

	s := d.newSession(ctx, clientID)
	d.tick++
	s.lastUsed = d.tick
	d.sessions[clientID] = s
	return s
}

func (d *Dashboard) evictOldest() {
	var oldest *session
	for _, s := range d.sessions {
		if oldest == nil || s.lastUsed < oldest.lastUsed {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	d.logger.Debug("dashboard: evicting session", "client", oldest.clientID)
	oldest.close()
	delete(d.sessions, oldest.clientID)
}

// Sessions returns the number of live sessions.
func (d *Dashboard) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}
