package chart

import "github.com/ziadkadry99/netsentry/internal/theme"

// Pie chart styling.
const (
	NoAnomaliesLabel = "No Anomalies"
	NoAnomaliesColor = "#28a745"
)

// Palette is cycled through for pie slices. It may be shorter than the
// number of slices, in which case colours repeat.
var Palette = []string{"#ff6384", "#36a2eb", "#cc65fe", "#ffce56"}

// Slice is one category of a pie chart.
type Slice struct {
	Label string
	Value float64
}

// PieData builds the dataset for a pie chart. When every value is zero,
// including when there are no slices at all, the chart collapses into a
// single green "No Anomalies" slice: a clean scan, not missing data.
// Otherwise every slice is kept in order, zero-valued ones included.
func PieData(slices []Slice) Data {
	if allZero(slices) {
		return Data{
			Labels: []string{NoAnomaliesLabel},
			Datasets: []Dataset{{
				Values:      []float64{1},
				SliceColors: []string{NoAnomaliesColor},
			}},
		}
	}

	labels := make([]string, len(slices))
	values := make([]float64, len(slices))
	colors := make([]string, len(slices))
	for i, s := range slices {
		labels[i] = s.Label
		values[i] = s.Value
		colors[i] = Palette[i%len(Palette)]
	}
	return Data{
		Labels:   labels,
		Datasets: []Dataset{{Values: values, SliceColors: colors}},
	}
}

func allZero(slices []Slice) bool {
	for _, s := range slices {
		if s.Value != 0 {
			return false
		}
	}
	return true
}

// NewPie creates a pie chart instance on surface. The caller must have
// destroyed any previous pie instance on the same surface.
func NewPie(surface Surface, slices []Slice, mode theme.Mode, size Size) *Instance {
	return newInstance(KindPie, surface, PieData(slices), mode, size)
}
