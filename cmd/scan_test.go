package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/dashboard"
	"github.com/ziadkadry99/netsentry/internal/detector"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

type noopTrigger struct{}

func (noopTrigger) SetEnabled(bool) {}
func (noopTrigger) SetLabel(string) {}

type noPrefs struct{}

func (noPrefs) Get(context.Context, string) (string, error) { return "", nil }
func (noPrefs) Set(context.Context, string, string) error   { return nil }

func successScanner() dashboard.ScannerFunc {
	return func(context.Context) (*scan.Result, error) {
		return &scan.Result{
			Status:       scan.StatusSuccess,
			Anomalies:    2,
			TrafficData:  detector.SampleTraffic(),
			Distribution: detector.Distribute(2),
		}, nil
	}
}

func runTerminalScan(t *testing.T, line, pie chart.Surface) *dashboard.Controller {
	t.Helper()
	view := dashboard.NewTerminal(io.Discard).View(noopTrigger{}, line, pie)
	ctrl := dashboard.NewController(view, successScanner(), noPrefs{},
		dashboard.WithChartSize(chart.Size{Width: 320, Height: 200}))
	ctrl.Initialize(t.Context())
	if err := ctrl.Scan(t.Context()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if ctrl.State() != dashboard.Scanned {
		t.Fatalf("state = %v, want scanned", ctrl.State())
	}
	return ctrl
}

func TestChartErrorsWritten(t *testing.T) {
	dir := t.TempDir()
	ctrl := runTerminalScan(t,
		chart.NewFileSurface(filepath.Join(dir, "traffic.png")),
		chart.NewFileSurface(filepath.Join(dir, "distribution.png")),
	)
	if err := chartErrors(ctrl); err != nil {
		t.Fatalf("chartErrors: %v", err)
	}
	for _, name := range []string{"traffic.png", "distribution.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestChartErrorsUnwritable(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the chart directory should be.
	blocker := filepath.Join(dir, "charts")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctrl := runTerminalScan(t,
		chart.NewFileSurface(filepath.Join(blocker, "traffic.png")),
		chart.NewFileSurface(filepath.Join(dir, "distribution.png")),
	)
	if err := chartErrors(ctrl); err == nil {
		t.Error("expected an error for the unwritable line chart")
	}
}
