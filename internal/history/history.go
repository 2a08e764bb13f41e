// Package history keeps a record of every scan the backend served.
package history

import (
	"time"

	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Record is one stored scan outcome.
type Record struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Status        string             `json:"status"`
	Anomalies     int                `json:"anomalies"`
	Message       string             `json:"message,omitempty"`
	Distribution  *scan.Distribution `json:"anomaly_distribution,omitempty"`
	TrafficPoints int                `json:"traffic_points"`
}

// Succeeded reports whether the scan succeeded.
func (r *Record) Succeeded() bool { return r.Status == scan.StatusSuccess }
