package chart

import (
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/sheet"
)

// ScatterTrace is a Plotly scatter3d trace.
type ScatterTrace struct {
	Type      string    `json:"type" msgpack:"type"`
	Mode      string    `json:"mode" msgpack:"mode"`
	X         []any     `json:"x" msgpack:"x"`
	Y         []float64 `json:"y" msgpack:"y"`
	Z         []float64 `json:"z" msgpack:"z"`
	Marker    Marker    `json:"marker" msgpack:"marker"`
	Text      []string  `json:"text" msgpack:"text"`
	HoverInfo string    `json:"hoverinfo" msgpack:"hoverinfo"`
	Name      string    `json:"name" msgpack:"name"`
}

type Marker struct {
	Size       int       `json:"size" msgpack:"size"`
	Color      []float64 `json:"color" msgpack:"color"`
	Colorscale string    `json:"colorscale" msgpack:"colorscale"`
	Opacity    float64   `json:"opacity" msgpack:"opacity"`
	ColorBar   ColorBar  `json:"colorbar" msgpack:"colorbar"`
}

type ColorBar struct {
	Title string `json:"title" msgpack:"title"`
}

type Scatter3D struct {
	Traces []ScatterTrace `json:"traces" msgpack:"traces"`
	Layout Layout3D       `json:"layout" msgpack:"layout"`
}

func (*Scatter3D) Type() model.ChartType { return model.ChartScatter3D }
func (*Scatter3D) chart()                {}

// NewScatter3D plots one marker per row, coloured by its y value.
func NewScatter3D(rows []sheet.Row, r Recipe) *Scatter3D {
	t := ScatterTrace{
		Type:      "scatter3d",
		Mode:      "markers",
		X:         make([]any, len(rows)),
		Y:         make([]float64, len(rows)),
		Z:         make([]float64, len(rows)),
		Text:      make([]string, len(rows)),
		HoverInfo: "text",
		Name:      "3D Scatter",
	}
	for i, row := range rows {
		t.X[i] = numberOrString(row[r.XAxis])
		t.Y[i] = ParseNumber(row[r.YAxis])
		if r.ZAxis != "" {
			t.Z[i] = ParseLooseNumber(row[r.ZAxis])
		}

		text := r.XAxis + ": " + row[r.XAxis] + "<br>" + r.YAxis + ": " + row[r.YAxis]
		if r.ZAxis != "" {
			text += "<br>" + r.ZAxis + ": " + row[r.ZAxis]
		}
		t.Text[i] = text
	}
	t.Marker = Marker{
		Size:       8,
		Color:      t.Y,
		Colorscale: colorscaleViridis,
		Opacity:    0.8,
		ColorBar:   ColorBar{Title: r.YAxis},
	}

	return &Scatter3D{Traces: []ScatterTrace{t}, Layout: newLayout3D(r, r.YAxis, false)}
}
