package notifications

import (
	"time"

	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Severity indicates the importance of an alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CriticalAnomalies is the count from which an alert is critical.
const CriticalAnomalies = 10

// Alert is the JSON body posted to the webhook.
type Alert struct {
	ID           string             `json:"id"`
	Severity     Severity           `json:"severity"`
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	Anomalies    int                `json:"anomalies"`
	Distribution *scan.Distribution `json:"anomaly_distribution,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}
