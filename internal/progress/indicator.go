// Package progress shows the scan trigger in a terminal: a spinner while a
// scan is outstanding, or plain log lines when running under CI.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Indicator is a scan trigger rendered on a terminal. It satisfies the
// dashboard's Button interface.
type Indicator interface {
	SetEnabled(enabled bool)
	SetLabel(label string)
}

// NewIndicator returns a SpinnerIndicator if running in an interactive
// terminal, or a CIIndicator if the CI environment variable is set.
func NewIndicator() Indicator {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIIndicator{w: os.Stderr}
	}
	return NewSpinnerIndicator(os.Stderr)
}

// SpinnerIndicator spins while the trigger is disabled and prints the
// final label once it is enabled again.
type SpinnerIndicator struct {
	w io.Writer

	mu      sync.Mutex
	label   string
	enabled bool
	bar     *progressbar.ProgressBar
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinnerIndicator creates an enabled indicator writing to w.
func NewSpinnerIndicator(w io.Writer) *SpinnerIndicator {
	return &SpinnerIndicator{w: w, enabled: true}
}

func (s *SpinnerIndicator) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	if s.bar != nil {
		s.bar.Describe(label)
	}
}

func (s *SpinnerIndicator) SetEnabled(enabled bool) {
	s.mu.Lock()
	if enabled == s.enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled

	if !enabled {
		s.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(s.w),
			progressbar.OptionSetDescription(s.label),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.spin(s.bar, s.stop, s.done)
		s.mu.Unlock()
		return
	}

	bar, stop, done := s.bar, s.stop, s.done
	s.bar, s.stop, s.done = nil, nil, nil
	label := s.label
	s.mu.Unlock()

	close(stop)
	<-done
	_ = bar.Finish()
	fmt.Fprintln(s.w, label)
}

func (s *SpinnerIndicator) spin(bar *progressbar.ProgressBar, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

// CIIndicator prints every label change as a line, suitable for CI logs.
type CIIndicator struct {
	w     io.Writer
	mu    sync.Mutex
	label string
}

// NewCIIndicator creates a CIIndicator writing to w.
func NewCIIndicator(w io.Writer) *CIIndicator {
	return &CIIndicator{w: w}
}

func (c *CIIndicator) SetLabel(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if label == c.label {
		return
	}
	c.label = label
	fmt.Fprintf(c.w, "[scan] %s\n", label)
}

func (c *CIIndicator) SetEnabled(bool) {}
