package dashboard

import (
	"fmt"
	"io"
	"sync"

	"github.com/ziadkadry99/netsentry/internal/chart"
)

// Terminal is a View for the command line. Result text is printed to w,
// chart images go to the given surfaces and the root classes are kept in
// memory.
type Terminal struct {
	w io.Writer

	mu      sync.Mutex
	classes map[string]bool
	visible map[string]bool
}

// NewTerminal creates a terminal page writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{
		w:       w,
		classes: make(map[string]bool),
		visible: make(map[string]bool),
	}
}

// View returns the capability handles for a controller. pie may be nil.
func (t *Terminal) View(trigger Button, line, pie chart.Surface) View {
	return View{
		Trigger:        trigger,
		Result:         terminalText{t},
		CloseButton:    terminalElement{t, "close"},
		ChartContainer: terminalElement{t, "charts"},
		Root:           terminalClasses{t},
		LineSurface:    line,
		PieSurface:     pie,
	}
}

// ChartsVisible reports whether the chart container is shown.
func (t *Terminal) ChartsVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible["charts"]
}

type terminalText struct{ t *Terminal }

func (r terminalText) SetText(text string) {
	if text == "" {
		return
	}
	r.t.mu.Lock()
	defer r.t.mu.Unlock()
	fmt.Fprintln(r.t.w, text)
}

type terminalElement struct {
	t    *Terminal
	name string
}

func (e terminalElement) SetVisible(visible bool) {
	e.t.mu.Lock()
	e.t.visible[e.name] = visible
	e.t.mu.Unlock()
}

type terminalClasses struct{ t *Terminal }

func (c terminalClasses) Add(class string) {
	c.t.mu.Lock()
	c.t.classes[class] = true
	c.t.mu.Unlock()
}

func (c terminalClasses) Remove(class string) {
	c.t.mu.Lock()
	delete(c.t.classes, class)
	c.t.mu.Unlock()
}

func (c terminalClasses) Contains(class string) bool {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	return c.t.classes[class]
}
