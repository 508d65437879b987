package chart

import (
	"github.com/gourab8389/excel-analytics-server/internal/excel"
)

// Config is the user's chart selection applied on top of a point series.
type Config struct {
	XAxis   string         `json:"xAxis"`
	YAxis   string         `json:"yAxis"`
	Kind    Kind           `json:"chartType"`
	Title   string         `json:"title,omitempty"`
	Styling map[string]any `json:"styling,omitempty"`
}

// Descriptor is a renderer-agnostic chart configuration. It never fails to
// build: an empty series yields an empty but well-formed descriptor.
type Descriptor struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds point labels and the single value series.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one styled value series.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     []string  `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// Options carries plugin and scale configuration.
type Options struct {
	Responsive bool           `json:"responsive"`
	Plugins    Plugins        `json:"plugins"`
	Scales     map[string]any `json:"scales"`
}

// Plugins controls the title block, legend, and optional 3D rendering hint.
type Plugins struct {
	Title   Title  `json:"title"`
	Legend  Legend `json:"legend"`
	ThreeJS *Depth `json:"threejs,omitempty"`
}

// Title is shown only when a title string was supplied.
type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Legend is always displayed.
type Legend struct {
	Display bool `json:"display"`
}

// Depth is the rendering hint merged into options for 3D kinds.
type Depth struct {
	Enabled bool `json:"enabled"`
	Depth   int  `json:"depth"`
}

const depthDefault = 20

// Fill and border palettes. Color assignment is deterministic and cyclic,
// keyed by point index modulo palette size.
var (
	fillPalette = []string{
		"rgba(255, 99, 132, 0.5)",
		"rgba(54, 162, 235, 0.5)",
		"rgba(255, 205, 86, 0.5)",
		"rgba(75, 192, 192, 0.5)",
		"rgba(153, 102, 255, 0.5)",
		"rgba(255, 159, 64, 0.5)",
	}
	borderPalette = []string{
		"rgba(255, 99, 132, 1)",
		"rgba(54, 162, 235, 1)",
		"rgba(255, 205, 86, 1)",
		"rgba(75, 192, 192, 1)",
		"rgba(153, 102, 255, 1)",
		"rgba(255, 159, 64, 1)",
	}
)

// Build assembles a Descriptor from a prepared series and the user's
// selection. Pure function of its inputs.
func Build(points []excel.Point, cfg Config) Descriptor {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Y
	}

	d := Descriptor{
		Type: cfg.Kind.RenderType(),
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           cfg.YAxis,
				Data:            values,
				BackgroundColor: cycle(fillPalette, len(points)),
				BorderColor:     cycle(borderPalette, len(points)),
				BorderWidth:     1,
			}},
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Title:  Title{Display: cfg.Title != "", Text: cfg.Title},
				Legend: Legend{Display: true},
			},
			Scales: scales(cfg.Kind),
		},
	}

	if cfg.Kind.Is3D() {
		d.Options.Plugins.ThreeJS = &Depth{Enabled: true, Depth: depthDefault}
	}

	return d
}

func cycle(palette []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// scales is empty for pie charts; every other kind forces a zero-based
// linear y-axis.
func scales(kind Kind) map[string]any {
	if kind == KindPie {
		return map[string]any{}
	}
	return map[string]any{
		"y": map[string]any{"beginAtZero": true},
	}
}
