package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/db"
	"github.com/ziadkadry99/netsentry/internal/prefs"
	"github.com/ziadkadry99/netsentry/internal/scan"
	"github.com/ziadkadry99/netsentry/internal/theme"
)

func setupTest(t *testing.T, scanner Scanner) (*Dashboard, *prefs.Store) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := prefs.NewStore(database)
	return New(scanner, store, chart.Size{Width: 320, Height: 200}), store
}

func setupRouter(d *Dashboard) chi.Router {
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

func staticScanner(res *scan.Result) Scanner {
	return ScannerFunc(func(context.Context) (*scan.Result, error) { return res, nil })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// loadPage requests the index and returns the client cookie it was given.
func loadPage(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == ClientCookie {
			return c
		}
	}
	t.Fatal("no client cookie set")
	return nil
}

func do(t *testing.T, r http.Handler, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) PageState {
	t.Helper()
	var st PageState
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	return st
}

func TestIndexPage(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(1)))
	r := setupRouter(d)

	w := do(t, r, "GET", "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	for _, id := range []string{"scan-btn", "result", "close-btn", "chart-container", "toggle-theme", "lineChart", "anomalyPieChart"} {
		if !strings.Contains(body, `id="`+id+`"`) {
			t.Errorf("page missing element %q", id)
		}
	}
	if !strings.Contains(body, LabelIdle) {
		t.Errorf("page missing initial label %q", LabelIdle)
	}
	if d.Sessions() != 1 {
		t.Errorf("sessions = %d, want 1", d.Sessions())
	}
}

func TestIndexAppliesStoredTheme(t *testing.T) {
	d, store := setupTest(t, staticScanner(successResult(1)))
	r := setupRouter(d)
	cookie := loadPage(t, r)

	if err := store.Set(t.Context(), cookie.Value, theme.StorageKey, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	w := do(t, r, "GET", "/", cookie)
	if !strings.Contains(w.Body.String(), `class="dark-mode"`) {
		t.Error("dark theme not applied on reload")
	}
}

func TestScanEndpoint(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(3)))
	r := setupRouter(d)
	cookie := loadPage(t, r)

	w := do(t, r, "POST", "/api/dashboard/scan", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	st := decodeState(t, w)
	if st.Result != "Anomalies Detected: 3" {
		t.Errorf("result = %q", st.Result)
	}
	if !st.ChartsVisible || !st.CloseVisible {
		t.Error("charts not shown")
	}
	if st.Trigger.Label != LabelComplete || !st.Trigger.Enabled {
		t.Errorf("trigger = %+v", st.Trigger)
	}
	if st.State != "scanned" {
		t.Errorf("state = %q, want scanned", st.State)
	}
	if st.LineChart == nil || len(st.LineChart.Labels) != 2 {
		t.Fatalf("line chart = %+v", st.LineChart)
	}
	if st.PieChart == nil || st.PieChart.Labels[0] != "DDoS" {
		t.Fatalf("pie chart = %+v", st.PieChart)
	}

	w = do(t, r, "GET", "/api/dashboard/charts/line.svg", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("chart status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Error("chart body is not SVG")
	}
}

func TestScanEndpointFailure(t *testing.T) {
	d, _ := setupTest(t, staticScanner(scan.ErrorResult("Script error: capture failed")))
	r := setupRouter(d)
	cookie := loadPage(t, r)

	st := decodeState(t, do(t, r, "POST", "/api/dashboard/scan", cookie))
	if st.Result != "Error: Script error: capture failed" {
		t.Errorf("result = %q", st.Result)
	}
	if st.ChartsVisible {
		t.Error("charts shown after failure")
	}
	if st.Trigger.Label != LabelFailed {
		t.Errorf("label = %q", st.Trigger.Label)
	}

	w := do(t, r, "GET", "/api/dashboard/charts/pie.svg", cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("chart status = %d, want 404", w.Code)
	}
}

func TestScanEndpointConflict(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	d, _ := setupTest(t, ScannerFunc(func(context.Context) (*scan.Result, error) {
		started <- struct{}{}
		<-release
		return successResult(1), nil
	}))
	r := setupRouter(d)
	cookie := loadPage(t, r)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- do(t, r, "POST", "/api/dashboard/scan", cookie) }()
	<-started

	w := do(t, r, "POST", "/api/dashboard/scan", cookie)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	st := decodeState(t, w)
	if st.Trigger.Enabled || st.Trigger.Label != LabelScanning {
		t.Errorf("trigger = %+v, want disabled scanning", st.Trigger)
	}

	close(release)
	if first := <-done; first.Code != http.StatusOK {
		t.Errorf("first scan status = %d", first.Code)
	}
}

func TestCloseEndpoint(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(3)))
	r := setupRouter(d)
	cookie := loadPage(t, r)
	do(t, r, "POST", "/api/dashboard/scan", cookie)

	st := decodeState(t, do(t, r, "POST", "/api/dashboard/close", cookie))
	if st.ChartsVisible || st.CloseVisible || st.Result != "" {
		t.Errorf("state after close = %+v", st)
	}
	if st.LineChart != nil || st.PieChart != nil {
		t.Error("charts still live after close")
	}
	if st.Trigger.Label != LabelIdle {
		t.Errorf("label = %q", st.Trigger.Label)
	}

	w := do(t, r, "GET", "/api/dashboard/charts/line.svg", cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("chart status = %d, want 404", w.Code)
	}
}

func TestThemeEndpointPersists(t *testing.T) {
	d, store := setupTest(t, staticScanner(successResult(1)))
	r := setupRouter(d)
	cookie := loadPage(t, r)

	st := decodeState(t, do(t, r, "POST", "/api/dashboard/theme", cookie))
	if st.Theme != "dark" {
		t.Errorf("theme = %q, want dark", st.Theme)
	}
	if len(st.RootClasses) != 1 || st.RootClasses[0] != theme.DarkClass {
		t.Errorf("root classes = %v", st.RootClasses)
	}

	stored, err := store.Get(t.Context(), cookie.Value, theme.StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored != "dark" {
		t.Errorf("stored = %q, want dark", stored)
	}
}

func TestUnknownChart(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(1)))
	r := setupRouter(d)

	cookie := loadPage(t, r)

	w := do(t, r, "GET", "/api/dashboard/charts/bar.svg", cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAPIRequiresPageLoad(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(1)))
	r := setupRouter(d)

	stranger := &http.Cookie{Name: ClientCookie, Value: "6f1c2a4e-8d7b-4c3e-9a1f-0b2d3e4f5a6b"}
	for i := 0; i < 50; i++ {
		for _, cookie := range []*http.Cookie{nil, stranger} {
			w := do(t, r, "GET", "/api/dashboard/state", cookie)
			if w.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", w.Code)
			}
		}
	}
	if w := do(t, r, "POST", "/api/dashboard/scan", nil); w.Code != http.StatusNotFound {
		t.Errorf("scan status = %d, want 404", w.Code)
	}
	if w := do(t, r, "GET", "/ws/dashboard", nil); w.Code != http.StatusNotFound {
		t.Errorf("websocket status = %d, want 404", w.Code)
	}
	if d.Sessions() != 0 {
		t.Errorf("sessions = %d, want 0", d.Sessions())
	}
}

func TestSessionsEvictLeastRecentlyUsed(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(1)))
	d.maxSessions = 3
	r := setupRouter(d)

	var cookies []*http.Cookie
	for i := 0; i < 3; i++ {
		cookies = append(cookies, loadPage(t, r))
	}
	// Touch the first client so the second becomes the oldest.
	do(t, r, "GET", "/api/dashboard/state", cookies[0])

	cookies = append(cookies, loadPage(t, r), loadPage(t, r))
	if d.Sessions() != 3 {
		t.Errorf("sessions = %d, want 3", d.Sessions())
	}

	want := []int{http.StatusOK, http.StatusNotFound, http.StatusNotFound, http.StatusOK, http.StatusOK}
	for i, cookie := range cookies {
		if w := do(t, r, "GET", "/api/dashboard/state", cookie); w.Code != want[i] {
			t.Errorf("client %d status = %d, want %d", i, w.Code, want[i])
		}
	}
}

func TestPageLoadReplacesSession(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(2)))
	r := setupRouter(d)
	cookie := loadPage(t, r)
	do(t, r, "POST", "/api/dashboard/scan", cookie)

	do(t, r, "GET", "/", cookie)

	st := decodeState(t, do(t, r, "GET", "/api/dashboard/state", cookie))
	if st.State != "idle" || st.Result != "" {
		t.Errorf("state after reload = %q %q, want fresh page", st.State, st.Result)
	}
	if d.Sessions() != 1 {
		t.Errorf("sessions = %d, want 1", d.Sessions())
	}
}

func TestWebSocketActions(t *testing.T) {
	d, _ := setupTest(t, staticScanner(successResult(3)))
	r := setupRouter(d)
	srv := httptest.NewServer(r)
	defer srv.Close()
	cookie := loadPage(t, r)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	header := http.Header{"Cookie": {ClientCookie + "=" + cookie.Value}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil := func(match func(wsMessage) bool) wsMessage {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("read: %v", err)
			}
			if match(msg) {
				return msg
			}
		}
	}

	initial := readUntil(func(m wsMessage) bool { return m.Type == "state" })
	if initial.State.Trigger.Label != LabelIdle {
		t.Errorf("initial label = %q", initial.State.Trigger.Label)
	}

	conn.WriteJSON(wsRequest{Action: "scan"})
	msg := readUntil(func(m wsMessage) bool { return m.Type == "state" && m.State.State == "scanned" })
	if msg.State.Result != "Anomalies Detected: 3" {
		t.Errorf("result = %q", msg.State.Result)
	}

	conn.WriteJSON(wsRequest{Action: "theme"})
	msg = readUntil(func(m wsMessage) bool { return m.Type == "state" && m.State.Theme == "dark" })
	if msg.State.LineChart == nil || msg.State.LineChart.TextColor != "#ffffff" {
		t.Errorf("line chart after toggle = %+v", msg.State.LineChart)
	}

	conn.WriteJSON(wsRequest{Action: "close"})
	readUntil(func(m wsMessage) bool { return m.Type == "state" && m.State.State == "idle" })

	conn.WriteJSON(wsRequest{Action: "dance"})
	msg = readUntil(func(m wsMessage) bool { return m.Type == "error" })
	if msg.Error != "unknown action: dance" {
		t.Errorf("error = %q", msg.Error)
	}
}

func TestWebSocketScanOutlivesConnection(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	scanner := ScannerFunc(func(ctx context.Context) (*scan.Result, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return successResult(4), nil
	})
	d, _ := setupTest(t, scanner)
	r := setupRouter(d)
	srv := httptest.NewServer(r)
	defer srv.Close()
	cookie := loadPage(t, r)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard"
	header := http.Header{"Cookie": {ClientCookie + "=" + cookie.Value}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.WriteJSON(wsRequest{Action: "scan"})
	<-started
	conn.Close()

	// Give the server time to notice the closed connection.
	time.Sleep(50 * time.Millisecond)
	close(release)

	waitFor(t, func() bool {
		st := decodeState(t, do(t, r, "GET", "/api/dashboard/state", cookie))
		return st.State == "scanned"
	})
}

func TestTerminalView(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(&out)
	line := chart.NewMemorySurface(chart.FormatPNG)
	ctrl := NewController(term.View(&fakeButton{}, line, nil), staticScanner(successResult(5)),
		&memPrefs{values: map[string]string{}})

	if err := ctrl.Scan(t.Context()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := out.String(); got != "Anomalies Detected: 5\n" {
		t.Errorf("output = %q", got)
	}
	if !term.ChartsVisible() {
		t.Error("charts not marked visible")
	}
	if line.Empty() {
		t.Error("line chart not painted")
	}
}
