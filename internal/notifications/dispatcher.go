// Package notifications posts an alert to a webhook when a scan finds
// enough anomalies.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/netsentry/internal/log"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Dispatcher delivers anomaly alerts to a webhook.
type Dispatcher struct {
	webhookURL   string
	minAnomalies int
	client       *http.Client
}

// NewDispatcher creates a Dispatcher. An empty webhookURL disables
// delivery; minAnomalies below 1 is treated as 1.
func NewDispatcher(webhookURL string, minAnomalies int) *Dispatcher {
	return &Dispatcher{
		webhookURL:   webhookURL,
		minAnomalies: max(1, minAnomalies),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether a webhook is configured.
func (d *Dispatcher) Enabled() bool { return d.webhookURL != "" }

// ShouldNotify reports whether res warrants an alert.
func (d *Dispatcher) ShouldNotify(res *scan.Result) bool {
	return d.Enabled() && res.Succeeded() && res.Anomalies >= d.minAnomalies
}

// Notify sends an alert for res if it crossed the threshold. It returns the
// alert sent, or nil when none was due.
func (d *Dispatcher) Notify(ctx context.Context, res *scan.Result) (*Alert, error) {
	if !d.ShouldNotify(res) {
		return nil, nil
	}

	alert := NewAlert(res)
	payload, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("marshalling alert: %w", err)
	}
	if err := d.SendWebhook(ctx, d.webhookURL, payload); err != nil {
		return nil, err
	}
	return alert, nil
}

// Hook notifies for every scan outcome, logging delivery failures.
func (d *Dispatcher) Hook(ctx context.Context, res *scan.Result) {
	alert, err := d.Notify(ctx, res)
	if err != nil {
		log.Warn("delivering anomaly alert", "error", err)
		return
	}
	if alert != nil {
		log.Info("anomaly alert sent", "id", alert.ID, "severity", alert.Severity)
	}
}

// NewAlert describes a successful scan result.
func NewAlert(res *scan.Result) *Alert {
	severity := SeverityWarning
	if res.Anomalies >= CriticalAnomalies {
		severity = SeverityCritical
	}

	msg := fmt.Sprintf("Scan detected %d anomalies", res.Anomalies)
	if entries := res.Distribution.Entries(); len(entries) > 0 {
		msg += ":"
		for i, e := range entries {
			if i > 0 {
				msg += ","
			}
			msg += fmt.Sprintf(" %s %d", e.Label, e.Count)
		}
	}

	return &Alert{
		ID:           uuid.New().String(),
		Severity:     severity,
		Title:        "Network anomalies detected",
		Message:      msg,
		Anomalies:    res.Anomalies,
		Distribution: res.Distribution,
		CreatedAt:    time.Now().UTC(),
	}
}

// SendWebhook POSTs payload to the given URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
