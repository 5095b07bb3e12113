package chart

import (
	"fmt"

	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/sheet"
)

const (
	barWidth = 0.8
	barDepth = 0.8
)

// Closed-box triangulation over the 8 corners of a bar, two triangles per side.
var (
	boxI = []int{0, 0, 0, 1, 1, 2, 2, 3, 4, 4, 5, 6}
	boxJ = []int{1, 3, 4, 2, 5, 3, 6, 0, 5, 7, 6, 7}
	boxK = []int{2, 1, 5, 3, 6, 2, 7, 4, 6, 6, 7, 3}
)

// Mesh is a Plotly mesh3d trace drawing one bar.
type Mesh struct {
	Type       string    `json:"type" msgpack:"type"`
	X          []float64 `json:"x" msgpack:"x"`
	Y          []float64 `json:"y" msgpack:"y"`
	Z          []float64 `json:"z" msgpack:"z"`
	I          []int     `json:"i" msgpack:"i"`
	J          []int     `json:"j" msgpack:"j"`
	K          []int     `json:"k" msgpack:"k"`
	Opacity    float64   `json:"opacity" msgpack:"opacity"`
	Color      string    `json:"color" msgpack:"color"`
	Name       string    `json:"name" msgpack:"name"`
	HoverText  string    `json:"hovertext" msgpack:"hovertext"`
	HoverInfo  string    `json:"hoverinfo" msgpack:"hoverinfo"`
	ShowLegend bool      `json:"showlegend" msgpack:"showlegend"`
}

// Bar3D is a set of box meshes, one per (label, value) pair.
type Bar3D struct {
	Traces []Mesh   `json:"traces" msgpack:"traces"`
	Layout Layout3D `json:"layout" msgpack:"layout"`
}

func (*Bar3D) Type() model.ChartType { return model.ChartBar3D }
func (*Bar3D) chart()                {}

// NewBar3D aggregates by GroupBy only when it names a column other than
// XAxis. Bars sharing a label share a colour and a legend entry.
func NewBar3D(rows []sheet.Row, r Recipe) *Bar3D {
	grouped := r.GroupBy != "" && r.GroupBy != r.XAxis

	var points []Point
	if grouped {
		points = Group(rows, r.GroupBy, r.YAxis, r.Aggregation)
	} else {
		points = rowPoints(rows, r.XAxis, r.YAxis)
	}

	ordinal := make(map[string]int)
	var categories []string
	for _, p := range points {
		if _, ok := ordinal[p.Label]; !ok {
			ordinal[p.Label] = len(categories)
			categories = append(categories, p.Label)
		}
	}

	traces := make([]Mesh, 0, len(points))
	seen := make(map[string]bool, len(categories))
	for _, p := range points {
		idx := ordinal[p.Label]
		m := box(float64(idx), p.Value)
		m.Color = color(idx, "1")
		m.Name = p.Label
		m.ShowLegend = !seen[p.Label]
		seen[p.Label] = true
		if grouped {
			m.HoverText = fmt.Sprintf("%s: %s<br>%s (%s): %.2f", r.GroupBy, p.Label, r.YAxis, r.Aggregation, p.Value)
		} else {
			m.HoverText = fmt.Sprintf("%s: %s<br>%s: %s", r.XAxis, p.Label, r.YAxis, formatNumber(p.Value))
		}
		traces = append(traces, m)
	}

	yTitle := r.YAxis
	if grouped {
		yTitle = fmt.Sprintf("%s (%s)", r.YAxis, r.Aggregation)
	}
	layout := newLayout3D(r, yTitle, true)
	layout.Scene.XAxis.TickVals = make([]int, len(categories))
	for i := range categories {
		layout.Scene.XAxis.TickVals[i] = i
	}
	layout.Scene.XAxis.TickText = categories

	return &Bar3D{Traces: traces, Layout: layout}
}

// box builds the mesh of a bar of height h centred on x.
func box(x, h float64) Mesh {
	x0, x1 := x-barWidth/2, x+barWidth/2
	z0, z1 := -barDepth/2, barDepth/2
	return Mesh{
		Type:      "mesh3d",
		X:         []float64{x0, x1, x1, x0, x0, x1, x1, x0},
		Y:         []float64{0, 0, h, h, 0, 0, h, h},
		Z:         []float64{z0, z0, z0, z0, z1, z1, z1, z1},
		I:         boxI,
		J:         boxJ,
		K:         boxK,
		Opacity:   1,
		HoverInfo: "text",
	}
}
