package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIIndicatorPrintsLabelChanges(t *testing.T) {
	var buf bytes.Buffer
	ind := NewCIIndicator(&buf)

	ind.SetLabel("Scan Network")
	ind.SetLabel("Scan Network")
	ind.SetEnabled(false)
	ind.SetLabel("Scanning...")
	ind.SetEnabled(true)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"[scan] Scan Network", "[scan] Scanning..."}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSpinnerIndicatorPrintsFinalLabel(t *testing.T) {
	var buf bytes.Buffer
	ind := NewSpinnerIndicator(&buf)

	ind.SetEnabled(false)
	ind.SetLabel("Scanning...")
	ind.SetLabel("Scan Complete!")
	ind.SetEnabled(true)

	if !strings.Contains(buf.String(), "Scan Complete!\n") {
		t.Errorf("output %q does not end with the final label", buf.String())
	}
}

func TestSpinnerIndicatorEnableTwice(t *testing.T) {
	var buf bytes.Buffer
	ind := NewSpinnerIndicator(&buf)

	// Already enabled: nothing to stop.
	ind.SetEnabled(true)
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}
