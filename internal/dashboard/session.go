package dashboard

import (
	"context"
	"sync"
)

// session is one page load of one client: a page model, the controller
// that drives it, and the websocket subscribers watching it.
type session struct {
	clientID string
	page     *Page
	ctrl     *Controller
	// lastUsed orders sessions for eviction; guarded by Dashboard.mu.
	lastUsed uint64

	mu   sync.Mutex
	subs map[chan PageState]struct{}
}

func (d *Dashboard) newSession(ctx context.Context, clientID string) *session {
	s := &session{
		clientID: clientID,
		page:     NewPage(),
		subs:     make(map[chan PageState]struct{}),
	}
	s.ctrl = NewController(s.page.View(), d.scanner, d.prefs.ForClient(clientID),
		WithChartSize(d.size),
		WithLogger(d.logger.With("client", clientID)),
		WithOnChange(s.publish),
	)
	s.ctrl.Initialize(ctx)
	return s
}

// snapshot combines the page elements with the controller state.
func (s *session) snapshot() PageState {
	st := s.page.Snapshot()
	st.State = s.ctrl.State().String()
	st.Theme = string(s.ctrl.Theme())
	st.LineChart = chartState(s.ctrl.LineChart(), s.page.line)
	st.PieChart = chartState(s.ctrl.PieChart(), s.page.pie)
	return st
}

// subscribe returns a channel that always holds the latest snapshot, and a
// function to stop receiving.
func (s *session) subscribe() (<-chan PageState, func()) {
	ch := make(chan PageState, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

func (s *session) publish() {
	if s.ctrl == nil {
		return
	}
	st := s.snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		// Replace an unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

// close releases the session's charts.
func (s *session) close() {
	s.ctrl.Close()
}
