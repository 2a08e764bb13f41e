package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/netsentry/internal/db"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

// clock returns a now func that advances one minute per call.
func clock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func success(n int) *scan.Result {
	return &scan.Result{
		Status:      scan.StatusSuccess,
		Anomalies:   n,
		TrafficData: []scan.TrafficPoint{{Time: "00:01", Count: 1}, {Time: "00:02", Count: 3}},
		Distribution: scan.NewDistribution(
			scan.Entry{Label: "DDoS", Count: n},
			scan.Entry{Label: "Port Scan", Count: 0},
		),
	}
}

func TestRecordAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := t.Context()

	rec, err := store.Record(ctx, success(3))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected generated ID")
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != scan.StatusSuccess || got.Anomalies != 3 {
		t.Errorf("got %+v", got)
	}
	if got.TrafficPoints != 2 {
		t.Errorf("TrafficPoints = %d, want 2", got.TrafficPoints)
	}
	entries := got.Distribution.Entries()
	if len(entries) != 2 || entries[0].Label != "DDoS" || entries[1].Label != "Port Scan" {
		t.Errorf("distribution = %v", entries)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, rec.Timestamp)
	}
}

func TestRecordError(t *testing.T) {
	store := setupStore(t)
	ctx := t.Context()

	rec, err := store.Record(ctx, scan.ErrorResult("Script error: boom"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Succeeded() || got.Message != "Script error: boom" {
		t.Errorf("got %+v", got)
	}
	if got.Distribution.Len() != 0 {
		t.Errorf("distribution = %v, want empty", got.Distribution.Entries())
	}
}

func TestRecordNil(t *testing.T) {
	store := setupStore(t)
	if _, err := store.Record(t.Context(), nil); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	store := setupStore(t)
	if _, err := store.GetByID(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	store := setupStore(t)
	store.now = clock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	ctx := t.Context()

	for _, res := range []*scan.Result{success(0), success(5), scan.ErrorResult("x"), success(2)} {
		if _, err := store.Record(ctx, res); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := store.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
	if all[0].Anomalies != 2 {
		t.Errorf("newest first: got anomalies %d, want 2", all[0].Anomalies)
	}

	failed, _ := store.List(ctx, Filter{Status: scan.StatusError})
	if len(failed) != 1 || failed[0].Message != "x" {
		t.Errorf("failed = %+v", failed)
	}

	busy, _ := store.List(ctx, Filter{MinAnomalies: 2})
	if len(busy) != 2 {
		t.Errorf("expected 2 records with >=2 anomalies, got %d", len(busy))
	}

	since := time.Date(2026, 1, 1, 12, 3, 0, 0, time.UTC)
	recent, _ := store.List(ctx, Filter{Since: &since})
	if len(recent) != 2 {
		t.Errorf("expected 2 records since 12:03, got %d", len(recent))
	}

	page, _ := store.List(ctx, Filter{Limit: 2, Offset: 1})
	if len(page) != 2 || page[0].Status != scan.StatusError {
		t.Errorf("page = %+v", page)
	}

	skipped, _ := store.List(ctx, Filter{Offset: 3})
	if len(skipped) != 1 || skipped[0].Anomalies != 0 {
		t.Errorf("offset only = %+v", skipped)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	store.now = clock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	ctx := t.Context()

	for range 3 {
		store.Record(ctx, success(1))
	}

	n, err := store.DeleteBefore(ctx, time.Date(2026, 1, 1, 12, 3, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	left, _ := store.List(ctx, Filter{})
	if len(left) != 1 {
		t.Errorf("expected 1 record left, got %d", len(left))
	}
}

func TestHookRecords(t *testing.T) {
	store := setupStore(t)
	store.Hook(t.Context(), success(4))
	store.Hook(t.Context(), nil)

	all, _ := store.List(t.Context(), Filter{})
	if len(all) != 1 || all[0].Anomalies != 4 {
		t.Errorf("records = %+v", all)
	}
}

func setupRouter(store *Store) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return r
}

func TestListEndpoint(t *testing.T) {
	store := setupStore(t)
	r := setupRouter(store)

	req := httptest.NewRequest("GET", "/api/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("empty list body = %q", body)
	}

	store.Record(t.Context(), success(1))
	store.Record(t.Context(), scan.ErrorResult("bad"))

	req = httptest.NewRequest("GET", "/api/history?status=success&limit=10", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var records []Record
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(records) != 1 || records[0].Anomalies != 1 {
		t.Errorf("records = %+v", records)
	}
}

func TestGetEndpoint(t *testing.T) {
	store := setupStore(t)
	r := setupRouter(store)
	rec, _ := store.Record(t.Context(), success(7))

	req := httptest.NewRequest("GET", "/api/history/"+rec.ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got Record
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.ID != rec.ID || got.Anomalies != 7 {
		t.Errorf("got %+v", got)
	}

	req = httptest.NewRequest("GET", "/api/history/nope", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter(map[string][]string{
		"status":        {"error"},
		"min_anomalies": {"3"},
		"since":         {"2026-01-01T00:00:00Z"},
		"limit":         {"5"},
		"offset":        {"bogus"},
	})
	if f.Status != "error" || f.MinAnomalies != 3 || f.Limit != 5 || f.Offset != 0 {
		t.Errorf("filter = %+v", f)
	}
	if f.Since == nil || f.Since.Year() != 2026 {
		t.Errorf("since = %v", f.Since)
	}
}
