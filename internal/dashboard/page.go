package dashboard

import (
	"slices"
	"sync"

	"github.com/ziadkadry99/netsentry/internal/chart"
)

// Page is the server-side model of the dashboard page: the state of every
// element the controller drives. Browsers render it from PageState
// snapshots.
type Page struct {
	mu            sync.RWMutex
	label         string
	enabled       bool
	result        string
	closeVisible  bool
	chartsVisible bool
	classes       map[string]bool

	line *chart.MemorySurface
	pie  *chart.MemorySurface
}

// NewPage creates a page in its initial markup state.
func NewPage() *Page {
	return &Page{
		label:   LabelIdle,
		enabled: true,
		classes: make(map[string]bool),
		line:    chart.NewMemorySurface(chart.FormatSVG),
		pie:     chart.NewMemorySurface(chart.FormatSVG),
	}
}

// View returns the capability handles for a controller.
func (p *Page) View() View {
	return View{
		Trigger:        pageTrigger{p},
		Result:         pageResult{p},
		CloseButton:    pageToggle{p, &p.closeVisible},
		ChartContainer: pageToggle{p, &p.chartsVisible},
		Root:           pageClasses{p},
		LineSurface:    p.line,
		PieSurface:     p.pie,
	}
}

// Surface returns the chart surface of kind.
func (p *Page) Surface(kind chart.Kind) *chart.MemorySurface {
	if kind == chart.KindPie {
		return p.pie
	}
	return p.line
}

// TriggerState is the scan button as rendered.
type TriggerState struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// ChartState describes a live chart. Version changes whenever the image
// is repainted.
type ChartState struct {
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	TextColor string    `json:"text_color"`
	Version   int       `json:"version"`
}

// PageState is a snapshot of the page sent to browsers.
type PageState struct {
	Trigger       TriggerState `json:"trigger"`
	Result        string       `json:"result"`
	CloseVisible  bool         `json:"close_visible"`
	ChartsVisible bool         `json:"charts_visible"`
	RootClasses   []string     `json:"root_classes"`
	State         string       `json:"state"`
	Theme         string       `json:"theme"`
	LineChart     *ChartState  `json:"line_chart,omitempty"`
	PieChart      *ChartState  `json:"pie_chart,omitempty"`
}

// Snapshot captures the element state of the page.
func (p *Page) Snapshot() PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	classes := make([]string, 0, len(p.classes))
	for c := range p.classes {
		classes = append(classes, c)
	}
	slices.Sort(classes)

	return PageState{
		Trigger:       TriggerState{Label: p.label, Enabled: p.enabled},
		Result:        p.result,
		CloseVisible:  p.closeVisible,
		ChartsVisible: p.chartsVisible,
		RootClasses:   classes,
	}
}

func chartState(inst *chart.Instance, surface *chart.MemorySurface) *ChartState {
	if inst == nil {
		return nil
	}
	data := inst.Data()
	return &ChartState{
		Labels:    data.Labels,
		Values:    data.Values(),
		TextColor: inst.TextColor(),
		Version:   surface.Paints(),
	}
}

type pageTrigger struct{ p *Page }

func (t pageTrigger) SetEnabled(enabled bool) {
	t.p.mu.Lock()
	t.p.enabled = enabled
	t.p.mu.Unlock()
}

func (t pageTrigger) SetLabel(label string) {
	t.p.mu.Lock()
	t.p.label = label
	t.p.mu.Unlock()
}

type pageResult struct{ p *Page }

func (r pageResult) SetText(text string) {
	r.p.mu.Lock()
	r.p.result = text
	r.p.mu.Unlock()
}

type pageToggle struct {
	p     *Page
	field *bool
}

func (e pageToggle) SetVisible(visible bool) {
	e.p.mu.Lock()
	*e.field = visible
	e.p.mu.Unlock()
}

type pageClasses struct{ p *Page }

func (c pageClasses) Add(class string) {
	c.p.mu.Lock()
	c.p.classes[class] = true
	c.p.mu.Unlock()
}

func (c pageClasses) Remove(class string) {
	c.p.mu.Lock()
	delete(c.p.classes, class)
	c.p.mu.Unlock()
}

func (c pageClasses) Contains(class string) bool {
	c.p.mu.RLock()
	defer c.p.mu.RUnlock()
	return c.p.classes[class]
}
