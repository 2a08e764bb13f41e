package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/log"
	"github.com/ziadkadry99/netsentry/internal/scan"
	"github.com/ziadkadry99/netsentry/internal/theme"
)

// State is the scan lifecycle of a dashboard.
type State int

const (
	Idle State = iota
	Scanning
	Scanned
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Scanned:
		return "scanned"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrScanInProgress is returned by Scan while the trigger is disabled.
var ErrScanInProgress = errors.New("scan already in progress")

// Option configures a Controller.
type Option func(*Controller)

// WithChartSize sets the size charts are rasterised at.
func WithChartSize(size chart.Size) Option {
	return func(c *Controller) { c.size = size }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback run after every operation that changed
// the view. It is called without the controller lock held.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller drives one dashboard: the scan trigger, the result text, the
// two charts and the theme. Only Scan blocks, and only while the scanner
// request is outstanding; Close and ToggleTheme may run meanwhile.
type Controller struct {
	mu sync.Mutex
	// themeMu keeps the toggle and its persistence in one order.
	themeMu  sync.Mutex
	view     View
	scanner  Scanner
	prefs    Preferences
	size     chart.Size
	logger   *slog.Logger
	onChange func()

	state State
	mode  theme.Mode
	// inFlight mirrors the disabled trigger.
	inFlight bool
	// generation is bumped by every Scan and Close; a response is applied
	// only if the generation it was issued under is still current.
	generation uint64
	line       *chart.Instance
	pie        *chart.Instance
}

// NewController creates a controller for view.
func NewController(view View, scanner Scanner, prefs Preferences, opts ...Option) *Controller {
	c := &Controller{
		view:    view,
		scanner: scanner,
		prefs:   prefs,
		size:    chart.DefaultSize,
		logger:  log.Logger,
		mode:    theme.Light,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize applies the persisted theme. It never fails: unreadable
// preferences leave the light theme in place.
func (c *Controller) Initialize(ctx context.Context) {
	stored, err := c.prefs.Get(ctx, theme.StorageKey)
	if err != nil {
		c.logger.Warn("reading theme preference", "error", err)
	}

	c.mu.Lock()
	c.mode = theme.Parse(stored)
	if c.mode.IsDark() {
		c.view.Root.Add(theme.DarkClass)
	} else {
		c.view.Root.Remove(theme.DarkClass)
	}
	c.view.Trigger.SetLabel(LabelIdle)
	c.view.Trigger.SetEnabled(true)
	c.mu.Unlock()
	c.changed()
}

// ToggleTheme flips and persists the theme, then redraws any live chart
// with its existing data and the new text colour.
func (c *Controller) ToggleTheme(ctx context.Context) theme.Mode {
	c.themeMu.Lock()
	defer c.themeMu.Unlock()

	c.mu.Lock()
	c.mode = c.mode.Toggle()
	mode := c.mode
	if mode.IsDark() {
		c.view.Root.Add(theme.DarkClass)
	} else {
		c.view.Root.Remove(theme.DarkClass)
	}
	for _, inst := range []*chart.Instance{c.line, c.pie} {
		if inst == nil {
			continue
		}
		if err := inst.Redraw(mode); err != nil {
			c.logger.Warn("redrawing chart", "kind", inst.Kind(), "error", err)
		}
	}
	c.mu.Unlock()

	if err := c.prefs.Set(ctx, theme.StorageKey, string(mode)); err != nil {
		c.logger.Warn("persisting theme preference", "theme", mode, "error", err)
	}
	c.changed()
	return mode
}

// Scan runs one scan. While a scan is outstanding the trigger is disabled
// and further calls return ErrScanInProgress without contacting the
// scanner. Every other outcome, including scanner failures, is rendered
// into the view and nil is returned.
func (c *Controller) Scan(ctx context.Context) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrScanInProgress
	}
	c.inFlight = true
	c.generation++
	gen := c.generation
	c.state = Scanning
	c.view.Trigger.SetEnabled(false)
	c.view.Trigger.SetLabel(LabelScanning)
	c.view.Result.SetText("")
	c.view.ChartContainer.SetVisible(false)
	c.view.CloseButton.SetVisible(false)
	c.mu.Unlock()
	c.changed()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.view.Trigger.SetEnabled(true)
		c.mu.Unlock()
		c.changed()
	}()

	res, err := c.request(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding stale scan response", "generation", gen, "current", c.generation)
		return nil
	}

	if err == nil && res.Succeeded() {
		c.succeed(res)
		return nil
	}
	c.fail(res, err)
	return nil
}

// request calls the scanner, turning a panic into an error so the cleanup
// in Scan always runs with a defined outcome.
func (c *Controller) request(ctx context.Context) (res *scan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan aborted: %v", r)
		}
	}()
	return c.scanner.Scan(ctx)
}

func (c *Controller) succeed(res *scan.Result) {
	c.state = Scanned
	c.view.Root.Add(ScannedClass)
	c.view.Trigger.SetLabel(LabelComplete)
	c.view.Result.SetText(fmt.Sprintf("Anomalies Detected: %d", res.Anomalies))
	c.view.ChartContainer.SetVisible(true)
	c.view.CloseButton.SetVisible(true)

	c.updateLineChart(res.TrafficData)
	c.updatePieChart(res.Distribution.Entries())

	c.logger.Info("scan complete", "anomalies", res.Anomalies, "traffic_points", len(res.TrafficData))
}

func (c *Controller) fail(res *scan.Result, err error) {
	var msg string
	switch {
	case res != nil && res.Message != "":
		msg = res.Message
	case err != nil:
		msg = err.Error()
	case res != nil:
		msg = fmt.Sprintf("scan returned status %q", res.Status)
	default:
		msg = "scan returned no result"
	}

	c.state = Failed
	c.view.Trigger.SetLabel(LabelFailed)
	c.view.Result.SetText("Error: " + msg)

	c.logger.Warn("scan failed", "error", msg)
}

// Close dismisses the current result and releases both charts. It is safe
// to call at any time.
func (c *Controller) Close() {
	c.mu.Lock()
	c.generation++
	c.state = Idle
	c.view.ChartContainer.SetVisible(false)
	c.view.CloseButton.SetVisible(false)
	c.view.Result.SetText("")
	c.view.Trigger.SetLabel(LabelIdle)
	c.view.Root.Remove(ScannedClass)

	if c.line != nil {
		c.line.Destroy()
		c.line = nil
	}
	if c.pie != nil {
		c.pie.Destroy()
		c.pie = nil
	}
	c.mu.Unlock()
	c.changed()
}

// UpdateLineChart replaces the line chart with one built from points.
func (c *Controller) UpdateLineChart(points []scan.TrafficPoint) {
	c.mu.Lock()
	c.updateLineChart(points)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) updateLineChart(points []scan.TrafficPoint) {
	if c.line != nil {
		c.line.Destroy()
		c.line = nil
	}
	pts := make([]chart.Point, len(points))
	for i, p := range points {
		pts[i] = chart.Point{Label: p.Time, Value: float64(p.Count)}
	}
	c.line = chart.NewLine(c.view.LineSurface, pts, c.mode, c.size)
	if err := c.line.Err(); err != nil {
		c.logger.Warn("drawing line chart", "error", err)
	}
}

// UpdatePieChart replaces the pie chart with one built from entries. It
// does nothing when the view has no pie surface.
func (c *Controller) UpdatePieChart(entries []scan.Entry) {
	c.mu.Lock()
	c.updatePieChart(entries)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) updatePieChart(entries []scan.Entry) {
	if c.view.PieSurface == nil {
		c.logger.Debug("pie chart surface not found, skipping")
		return
	}
	if c.pie != nil {
		c.pie.Destroy()
		c.pie = nil
	}
	slices := make([]chart.Slice, len(entries))
	for i, e := range entries {
		slices[i] = chart.Slice{Label: e.Label, Value: float64(e.Count)}
	}
	c.pie = chart.NewPie(c.view.PieSurface, slices, c.mode, c.size)
	if err := c.pie.Err(); err != nil {
		c.logger.Warn("drawing pie chart", "error", err)
	}
}

// State returns the scan lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Theme returns the current theme.
func (c *Controller) Theme() theme.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LineChart returns the live line chart, or nil.
func (c *Controller) LineChart() *chart.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

// PieChart returns the live pie chart, or nil.
func (c *Controller) PieChart() *chart.Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pie
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
