package chart

import "github.com/ziadkadry99/netsentry/internal/theme"

// Line chart styling.
const (
	LineDatasetLabel = "Packets Over Time"
	LineBorderColor  = "#0000ff"
	LineFillColor    = "rgba(0, 0, 255, 0.1)"
)

// Point is one x label and its y value.
type Point struct {
	Label string
	Value float64
}

// LineData builds the dataset for a line chart. Label i and value i come
// from points[i] for every input length, including zero.
func LineData(points []Point) Data {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value
	}
	return Data{
		Labels: labels,
		Datasets: []Dataset{{
			Label:           LineDatasetLabel,
			Values:          values,
			BorderColor:     LineBorderColor,
			BackgroundColor: LineFillColor,
		}},
	}
}

// NewLine creates a line chart instance on surface. The caller must have
// destroyed any previous line instance on the same surface.
func NewLine(surface Surface, points []Point, mode theme.Mode, size Size) *Instance {
	return newInstance(KindLine, surface, LineData(points), mode, size)
}
