// Package chart renders the dashboard's line and pie charts onto drawing
// surfaces. An Instance keeps the dataset it was built from so it can be
// redrawn for another theme without the data being fetched again.
package chart

import (
	"errors"
	"slices"
	"sync"

	"github.com/ziadkadry99/netsentry/internal/theme"
)

// Kind identifies the chart type of an instance.
type Kind string

const (
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

// ErrDestroyed is returned when redrawing an instance that was destroyed.
var ErrDestroyed = errors.New("chart instance destroyed")

// Size is the pixel size charts are rasterised at.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the chart container of the dashboard page.
var DefaultSize = Size{Width: 640, Height: 360}

func (s Size) orDefault() Size {
	if s.Width <= 0 || s.Height <= 0 {
		return DefaultSize
	}
	return s
}

// Dataset is one series of values with its styling.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Values          []float64 `json:"values"`
	BorderColor     string    `json:"border_color,omitempty"`
	BackgroundColor string    `json:"background_color,omitempty"`
	// SliceColors holds one colour per value for pie charts.
	SliceColors []string `json:"slice_colors,omitempty"`
}

// Data is the dataset a chart instance was created from. Labels[i]
// describes Datasets[n].Values[i].
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Values returns the first dataset's values, or nil.
func (d Data) Values() []float64 {
	if len(d.Datasets) == 0 {
		return nil
	}
	return d.Datasets[0].Values
}

func (d Data) clone() Data {
	out := Data{Labels: slices.Clone(d.Labels)}
	if out.Labels == nil {
		out.Labels = []string{}
	}
	for _, ds := range d.Datasets {
		ds.Values = slices.Clone(ds.Values)
		if ds.Values == nil {
			ds.Values = []float64{}
		}
		ds.SliceColors = slices.Clone(ds.SliceColors)
		out.Datasets = append(out.Datasets, ds)
	}
	return out
}

// Instance is a chart drawn on a surface. It is owned by a single caller;
// the mutex only protects readers such as HTTP handlers serving snapshots.
type Instance struct {
	mu        sync.RWMutex
	kind      Kind
	surface   Surface
	size      Size
	data      Data
	mode      theme.Mode
	destroyed bool
	err       error
}

func newInstance(kind Kind, surface Surface, data Data, mode theme.Mode, size Size) *Instance {
	inst := &Instance{
		kind:    kind,
		surface: surface,
		size:    size.orDefault(),
		data:    data.clone(),
	}
	inst.draw(mode)
	return inst
}

// Kind returns the chart type.
func (i *Instance) Kind() Kind { return i.kind }

// Data returns a copy of the instance's dataset.
func (i *Instance) Data() Data {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.data.clone()
}

// Theme returns the mode the instance was last drawn for.
func (i *Instance) Theme() theme.Mode {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.mode
}

// TextColor returns the axis and legend colour currently in use.
func (i *Instance) TextColor() string { return i.Theme().TextColor() }

// Err returns the last rasterisation error, if any. The dataset is kept
// even when drawing fails.
func (i *Instance) Err() error {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.err
}

// Destroyed reports whether Destroy has been called.
func (i *Instance) Destroyed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.destroyed
}

// Redraw repaints the instance with its existing data for mode.
func (i *Instance) Redraw(mode theme.Mode) error {
	if i.Destroyed() {
		return ErrDestroyed
	}
	return i.draw(mode)
}

// Destroy clears the surface and releases the instance. Calling it more
// than once is harmless.
func (i *Instance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.destroyed = true
	if i.surface != nil {
		i.surface.Clear()
	}
}

func (i *Instance) draw(mode theme.Mode) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mode = mode
	i.err = nil
	if i.surface == nil {
		return nil
	}

	var (
		img []byte
		err error
	)
	switch i.kind {
	case KindLine:
		if len(i.data.Labels) == 0 {
			// go-chart refuses series without points.
			i.surface.Clear()
			return nil
		}
		img, err = renderLine(i.data, mode, i.size, i.surface.Format())
	case KindPie:
		img, err = renderPie(i.data, mode, i.size, i.surface.Format())
	}
	if err != nil {
		i.err = err
		return err
	}
	if err := i.surface.Paint(img); err != nil {
		i.err = err
		return err
	}
	return nil
}
