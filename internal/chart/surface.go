package chart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ziadkadry99/netsentry/internal/log"
)

// Format is the image encoding a surface expects.
type Format int

const (
	FormatSVG Format = iota
	FormatPNG
)

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Ext returns the file extension, with the dot.
func (f Format) Ext() string {
	if f == FormatPNG {
		return ".png"
	}
	return ".svg"
}

// Surface is a drawing target for a chart instance.
type Surface interface {
	Format() Format
	Paint(img []byte) error
	Clear()
}

// MemorySurface keeps the last painted image in memory. The web dashboard
// serves charts from it.
type MemorySurface struct {
	mu     sync.RWMutex
	format Format
	img    []byte
	paints int
}

// NewMemorySurface creates an empty surface for format.
func NewMemorySurface(format Format) *MemorySurface {
	return &MemorySurface{format: format}
}

func (s *MemorySurface) Format() Format { return s.format }

func (s *MemorySurface) Paint(img []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = slices.Clone(img)
	s.paints++
	return nil
}

func (s *MemorySurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = nil
}

// Bytes returns a copy of the current image, or nil when cleared.
func (s *MemorySurface) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.img)
}

// Empty reports whether nothing is painted.
func (s *MemorySurface) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.img) == 0
}

// Paints counts how many times the surface was painted.
func (s *MemorySurface) Paints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paints
}

// FileSurface writes each painted image to a file. The format follows the
// file extension: .svg for SVG, anything else for PNG.
type FileSurface struct {
	path   string
	format Format
}

// NewFileSurface creates a surface backed by path.
func NewFileSurface(path string) *FileSurface {
	format := FormatPNG
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		format = FormatSVG
	}
	return &FileSurface{path: path, format: format}
}

// Path returns the backing file path.
func (s *FileSurface) Path() string { return s.path }

func (s *FileSurface) Format() Format { return s.format }

func (s *FileSurface) Paint(img []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating chart directory: %w", err)
	}
	if err := os.WriteFile(s.path, img, 0o644); err != nil {
		return fmt.Errorf("writing chart %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSurface) Clear() {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Debug("clearing chart file", "path", s.path, "error", err)
	}
}
