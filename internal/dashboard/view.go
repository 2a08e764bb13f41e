package dashboard

import (
	"context"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// Trigger labels.
const (
	LabelIdle     = "Scan Network"
	LabelScanning = "Scanning..."
	LabelComplete = "Scan Complete!"
	LabelFailed   = "Scan Failed!"
)

// ScannedClass marks the root once a scan completed successfully.
const ScannedClass = "scanned"

// Button is the scan trigger.
type Button interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// TextRegion displays the scan result or error.
type TextRegion interface {
	SetText(text string)
}

// Element is anything that can be shown or hidden.
type Element interface {
	SetVisible(visible bool)
}

// ClassList holds the style-hook classes of the document root.
type ClassList interface {
	Add(class string)
	Remove(class string)
	Contains(class string) bool
}

// View is the set of page capabilities the controller drives. PieSurface
// may be nil when the page has no pie chart; every other handle is
// required.
type View struct {
	Trigger        Button
	Result         TextRegion
	CloseButton    Element
	ChartContainer Element
	Root           ClassList
	LineSurface    chart.Surface
	PieSurface     chart.Surface
}

// Scanner performs one scan request. Backend failures come back as a
// Result with a non-success status; transport and parse failures as errors.
type Scanner interface {
	Scan(ctx context.Context) (*scan.Result, error)
}

// ScannerFunc adapts a function to Scanner.
type ScannerFunc func(ctx context.Context) (*scan.Result, error)

func (f ScannerFunc) Scan(ctx context.Context) (*scan.Result, error) { return f(ctx) }

// Preferences is the durable key-value storage the theme is kept in.
type Preferences interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
