// Package scan holds the scan result model shared by the /scan backend and
// the dashboard, and the HTTP client the dashboard uses to request scans.
package scan

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Status values reported by the backend.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the payload of a single scan. Error payloads carry only Status
// and Message.
type Result struct {
	Status       string         `json:"status"`
	Anomalies    int            `json:"anomalies"`
	Message      string         `json:"message,omitempty"`
	TrafficData  []TrafficPoint `json:"traffic_data,omitempty"`
	Distribution *Distribution  `json:"anomaly_distribution,omitempty"`
}

// TrafficPoint is one sample of the packets-over-time series.
type TrafficPoint struct {
	Time  string `json:"time"`
	Count int    `json:"count"`
}

// Succeeded reports whether the backend reported a successful scan.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// ErrorResult builds a backend failure payload.
func ErrorResult(message string) *Result {
	return &Result{Status: StatusError, Message: message}
}

// Entry is one category of the anomaly distribution.
type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Distribution maps category labels to anomaly counts. Unlike a Go map it
// remembers the order keys appeared in the JSON document, which is the
// order pie slices are drawn in.
type Distribution struct {
	m *orderedmap.OrderedMap[string, int]
}

// NewDistribution builds a distribution from entries, in order. A repeated
// label keeps its first position and takes the last count.
func NewDistribution(entries ...Entry) *Distribution {
	d := &Distribution{m: orderedmap.New[string, int]()}
	for _, e := range entries {
		d.m.Set(e.Label, e.Count)
	}
	return d
}

// Set adds or updates a category.
func (d *Distribution) Set(label string, count int) {
	if d.m == nil {
		d.m = orderedmap.New[string, int]()
	}
	d.m.Set(label, count)
}

// Len returns the number of categories. A nil distribution is empty.
func (d *Distribution) Len() int {
	if d == nil || d.m == nil {
		return 0
	}
	return d.m.Len()
}

// Entries returns the categories in key order.
func (d *Distribution) Entries() []Entry {
	if d.Len() == 0 {
		return nil
	}
	out := make([]Entry, 0, d.m.Len())
	for pair := d.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Entry{Label: pair.Key, Count: pair.Value})
	}
	return out
}

// Total sums all counts.
func (d *Distribution) Total() int {
	total := 0
	for _, e := range d.Entries() {
		total += e.Count
	}
	return total
}

func (d *Distribution) MarshalJSON() ([]byte, error) {
	if d.Len() == 0 {
		return []byte("{}"), nil
	}
	return d.m.MarshalJSON()
}

func (d *Distribution) UnmarshalJSON(data []byte) error {
	d.m = orderedmap.New[string, int]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return d.m.UnmarshalJSON(data)
}

var (
	_ json.Marshaler   = (*Distribution)(nil)
	_ json.Unmarshaler = (*Distribution)(nil)
)
