package chart

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ziadkadry99/netsentry/internal/theme"
)

func rendererFor(f Format) gochart.RendererProvider {
	if f == FormatPNG {
		return gochart.PNG
	}
	return gochart.SVG
}

func renderLine(data Data, mode theme.Mode, size Size, format Format) ([]byte, error) {
	text := parseColor(mode.TextColor())
	bg := parseColor(mode.BackgroundColor())
	grid := parseColor(mode.GridColor())

	ds := data.Datasets[0]
	n := len(data.Labels)
	xs := make([]float64, n)
	ticks := make([]gochart.Tick, n)
	minY, maxY := 0.0, 0.0
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: data.Labels[i]}
		minY = math.Min(minY, ds.Values[i])
		maxY = math.Max(maxY, ds.Values[i])
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	// go-chart needs at least two x values, and takes the x range from the
	// ticks: a single point is drawn as a flat segment to an unlabelled tick.
	ys := ds.Values
	if n == 1 {
		xs = append(xs, xs[0]+1)
		ys = []float64{ys[0], ys[0]}
		ticks = append(ticks, gochart.Tick{Value: xs[1]})
	}

	axisStyle := gochart.Style{FontColor: text, StrokeColor: grid, StrokeWidth: 1}
	ch := gochart.Chart{
		Width:  size.Width,
		Height: size.Height,
		Background: gochart.Style{
			FillColor: bg,
			Padding:   gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: gochart.Style{FillColor: bg},
		XAxis: gochart.XAxis{
			Style: axisStyle,
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Style: axisStyle,
			Range: &gochart.ContinuousRange{Min: minY, Max: maxY * 1.1},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    ds.Label,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: parseColor(ds.BorderColor),
					StrokeWidth: 2,
					FillColor:   parseColor(ds.BackgroundColor),
					DotColor:    parseColor(ds.BorderColor),
					DotWidth:    3,
				},
			},
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch, gochart.Style{
		FontColor:   text,
		FillColor:   bg,
		StrokeColor: grid,
	})}

	var buf bytes.Buffer
	if err := ch.Render(rendererFor(format), &buf); err != nil {
		return nil, fmt.Errorf("rendering line chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPie(data Data, mode theme.Mode, size Size, format Format) ([]byte, error) {
	text := parseColor(mode.TextColor())
	bg := parseColor(mode.BackgroundColor())

	ds := data.Datasets[0]
	values := make([]gochart.Value, 0, len(data.Labels))
	var drawn []string
	for i, label := range data.Labels {
		fill := Palette[i%len(Palette)]
		if i < len(ds.SliceColors) {
			fill = ds.SliceColors[i]
		}
		if ds.Values[i] > 0 {
			drawn = append(drawn, fill)
		}
		values = append(values, gochart.Value{
			Label: label,
			Value: ds.Values[i],
			Style: gochart.Style{
				FillColor:   parseColor(fill),
				FontColor:   text,
				StrokeColor: bg,
				StrokeWidth: 1,
			},
		})
	}

	pie := gochart.PieChart{
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{FillColor: bg},
		Canvas:     gochart.Style{FillColor: bg},
		SliceStyle: gochart.Style{FontColor: text},
		Values:     values,
	}
	// A lone non-zero slice is drawn as a circle styled from SliceStyle
	// only, so its colour has to be set there.
	if len(drawn) == 1 {
		pie.SliceStyle.FillColor = parseColor(drawn[0])
	}

	var buf bytes.Buffer
	if err := pie.Render(rendererFor(format), &buf); err != nil {
		return nil, fmt.Errorf("rendering pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// parseColor accepts "#rrggbb" and "rgba(r, g, b, a)". Unknown input is
// rendered black.
func parseColor(s string) drawing.Color {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if strings.HasPrefix(s, "rgba(") {
		var (
			r, g, b int
			a       float64
		)
		if _, err := fmt.Sscanf(s, "rgba(%d,%d,%d,%f)", &r, &g, &b, &a); err == nil {
			return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(math.Round(a * 255))}
		}
		return drawing.Color{A: 255}
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return drawing.Color{A: 255}
	}
	return drawing.ColorFromHex(s)
}
