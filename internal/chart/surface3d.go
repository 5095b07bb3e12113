package chart

import (
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/sheet"
)

// SurfaceTrace is a Plotly surface trace. Z is indexed [y][x].
type SurfaceTrace struct {
	Type       string      `json:"type" msgpack:"type"`
	X          []string    `json:"x" msgpack:"x"`
	Y          []float64   `json:"y" msgpack:"y"`
	Z          [][]float64 `json:"z" msgpack:"z"`
	Colorscale string      `json:"colorscale" msgpack:"colorscale"`
	Name       string      `json:"name" msgpack:"name"`
}

type Surface3D struct {
	Traces []SurfaceTrace `json:"traces" msgpack:"traces"`
	Layout Layout3D       `json:"layout" msgpack:"layout"`
}

func (*Surface3D) Type() model.ChartType { return model.ChartSurface3D }
func (*Surface3D) chart()                {}

// NewSurface3D lays a grid over the distinct x values and distinct coerced y
// values. A cell takes the z of the first row with exactly that (x, y) and
// is 0 when no row matches; there is no interpolation.
func NewSurface3D(rows []sheet.Row, r Recipe) *Surface3D {
	type cell struct {
		x string
		y float64
	}

	xIndex := make(map[string]int)
	yIndex := make(map[float64]int)
	var xs []string
	var ys []float64
	first := make(map[cell]float64)

	for _, row := range rows {
		x := row[r.XAxis]
		y := ParseNumber(row[r.YAxis])
		if _, ok := xIndex[x]; !ok {
			xIndex[x] = len(xs)
			xs = append(xs, x)
		}
		if _, ok := yIndex[y]; !ok {
			yIndex[y] = len(ys)
			ys = append(ys, y)
		}
		c := cell{x, y}
		if _, ok := first[c]; !ok {
			var z float64
			if r.ZAxis != "" {
				z = ParseNumber(row[r.ZAxis])
			}
			first[c] = z
		}
	}

	z := make([][]float64, len(ys))
	for yi, y := range ys {
		z[yi] = make([]float64, len(xs))
		for xi, x := range xs {
			z[yi][xi] = first[cell{x, y}]
		}
	}

	t := SurfaceTrace{
		Type:       "surface",
		X:          nonNil(xs),
		Y:          ys,
		Z:          z,
		Colorscale: colorscaleViridis,
		Name:       "3D Surface",
	}
	if t.Y == nil {
		t.Y = []float64{}
	}
	return &Surface3D{Traces: []SurfaceTrace{t}, Layout: newLayout3D(r, r.YAxis, true)}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
