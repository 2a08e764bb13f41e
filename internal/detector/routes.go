package detector

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Hook observes every scan outcome served by GET /scan, successful or not.
type Hook func(ctx context.Context, res *scan.Result)

// RegisterRoutes mounts GET /scan on the given router.
func RegisterRoutes(r chi.Router, det *Detector, hooks ...Hook) {
	r.Get("/scan", handleScan(det, hooks))
}

func handleScan(det *Detector, hooks []Hook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The pipeline runs to completion even if the caller hangs up.
		ctx := context.WithoutCancel(r.Context())

		res, status := det.outcome(ctx)
		for _, hook := range hooks {
			hook(ctx, res)
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
