// Package chart turns decoded spreadsheet rows and a saved recipe into
// chart-ready structures: Chart.js style series for 2D charts and Plotly
// traces for 3D ones.
package chart

import (
	"fmt"

	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/sheet"
)

// Chart is one of *Series2D, *Bar3D, *Scatter3D or *Surface3D.
type Chart interface {
	Type() model.ChartType
	chart()
}

// Envelope is the wire form of a built chart.
type Envelope struct {
	ChartType model.ChartType `json:"chartType" msgpack:"chartType"`
	Title     string          `json:"title" msgpack:"title"`
	Recipe    Recipe          `json:"recipe" msgpack:"recipe"`
	Data      Chart           `json:"data" msgpack:"data"`
}

// Build dispatches to the constructor for chartType.
func Build(rows []sheet.Row, r Recipe, chartType model.ChartType) (Chart, error) {
	if !chartType.Valid() {
		return nil, fmt.Errorf("chart: unknown chart type %q", chartType)
	}
	if !chartType.Is3D() {
		return New2D(chartType, rows, r), nil
	}

	switch chartType {
	case model.ChartBar3D:
		return NewBar3D(rows, r), nil
	case model.ChartScatter3D:
		return NewScatter3D(rows, r), nil
	default:
		return NewSurface3D(rows, r), nil
	}
}

// Wrap builds the chart and packs it with its recipe.
func Wrap(rows []sheet.Row, r Recipe, chartType model.ChartType) (*Envelope, error) {
	c, err := Build(rows, r, chartType)
	if err != nil {
		return nil, err
	}
	return &Envelope{ChartType: chartType, Title: r.Title, Recipe: r, Data: c}, nil
}
