package chart

import (
	"github.com/sakif/sageexcel/internal/model"
	"github.com/sakif/sageexcel/internal/sheet"
)

// Series2D is the Chart.js data object for bar, line, pie, doughnut, radar
// and scatter charts.
type Series2D struct {
	kind     model.ChartType
	Labels   []string  `json:"labels" msgpack:"labels"`
	Datasets []Dataset `json:"datasets" msgpack:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label" msgpack:"label"`
	Data            []float64 `json:"data" msgpack:"data"`
	BackgroundColor []string  `json:"backgroundColor" msgpack:"backgroundColor"`
	BorderColor     []string  `json:"borderColor" msgpack:"borderColor"`
	BorderWidth     int       `json:"borderWidth" msgpack:"borderWidth"`
}

func (s *Series2D) Type() model.ChartType { return s.kind }
func (*Series2D) chart()                  {}

// New2D aggregates by GroupBy when both GroupBy and YAxis are set; otherwise
// each row contributes one (x, y) point.
func New2D(kind model.ChartType, rows []sheet.Row, r Recipe) *Series2D {
	var points []Point
	if r.GroupBy != "" && r.YAxis != "" {
		points = Group(rows, r.GroupBy, r.YAxis, r.Aggregation)
	} else {
		points = rowPoints(rows, r.XAxis, r.YAxis)
	}

	ds := Dataset{
		Label:           r.YAxis + " vs " + r.XAxis,
		Data:            make([]float64, len(points)),
		BackgroundColor: make([]string, len(points)),
		BorderColor:     make([]string, len(points)),
		BorderWidth:     1,
	}
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
		ds.Data[i] = p.Value
		ds.BackgroundColor[i] = color(i, "0.6")
		ds.BorderColor[i] = color(i, "1")
	}

	return &Series2D{kind: kind, Labels: labels, Datasets: []Dataset{ds}}
}
