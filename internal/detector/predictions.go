package detector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Categories of the anomaly distribution.
const (
	CategoryNone     = "No Anomalies"
	CategoryDDoS     = "DDoS"
	CategoryPortScan = "Port Scan"
)

type predictions struct {
	anomalies int
	traffic   []scan.TrafficPoint
}

// parsePredictions sums the anomaly column and counts rows per minute of
// the time column. A missing time column yields no traffic.
func parsePredictions(r io.Reader, anomalyColumn, timeColumn string) (*predictions, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("predictions file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading predictions header: %w", err)
	}

	anomalyIdx, timeIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == anomalyColumn:
			anomalyIdx = i
		case timeColumn != "" && name == timeColumn:
			timeIdx = i
		}
	}
	if anomalyIdx < 0 {
		return nil, fmt.Errorf("column %q not found in predictions", anomalyColumn)
	}

	var (
		total   float64
		buckets = make(map[string]int)
		order   []string
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading predictions: %w", err)
		}

		if anomalyIdx < len(record) {
			total += cellValue(record[anomalyIdx])
		}
		if timeIdx >= 0 && timeIdx < len(record) {
			if minute, ok := minuteOf(record[timeIdx]); ok {
				if _, seen := buckets[minute]; !seen {
					order = append(order, minute)
				}
				buckets[minute]++
			}
		}
	}

	p := &predictions{anomalies: int(total)}
	for _, m := range order {
		p.traffic = append(p.traffic, scan.TrafficPoint{Time: m, Count: buckets[m]})
	}
	return p, nil
}

// cellValue reads a numeric or boolean cell; anything else counts as 0.
func cellValue(s string) float64 {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && b {
		return 1
	}
	return 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.TimeOnly,
	"15:04",
}

// minuteOf returns the HH:MM of a timestamp cell. Epoch seconds, as
// written by packet captures, are read in UTC.
func minuteOf(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && secs >= 0 {
		sec, frac := math.Modf(secs)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC().Format("15:04"), true
	}
	return "", false
}

// SampleTraffic is the series shown when the predictions carry no
// timestamps.
func SampleTraffic() []scan.TrafficPoint {
	return []scan.TrafficPoint{
		{Time: "00:01", Count: 5},
		{Time: "00:02", Count: 2},
		{Time: "00:03", Count: 8},
		{Time: "00:04", Count: 3},
		{Time: "00:05", Count: 7},
	}
}

// Distribute splits an anomaly count into categories: 60% DDoS, the rest
// port scans, with at least one DDoS for small non-zero counts. Zero
// anomalies yield a single zero "No Anomalies" entry.
func Distribute(anomalies int) *scan.Distribution {
	if anomalies <= 0 {
		return scan.NewDistribution(scan.Entry{Label: CategoryNone, Count: 0})
	}
	ddos := anomalies * 6 / 10
	if anomalies < 3 {
		ddos = max(1, ddos)
	}
	return scan.NewDistribution(
		scan.Entry{Label: CategoryDDoS, Count: ddos},
		scan.Entry{Label: CategoryPortScan, Count: anomalies - ddos},
	)
}
