// Package summary asks a language model to describe the data behind a chart.
package summary

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyResponse is returned when the provider answers with no text.
var ErrEmptyResponse = errors.New("summary: provider returned no text")

// Request is the chart and the rows it was drawn from.
type Request struct {
	ChartTitle string              `json:"chartTitle"`
	ChartType  string              `json:"chartType"`
	Headers    []string            `json:"headers"`
	Rows       []map[string]string `json:"data"`
	// TotalRows is the row count before any truncation; zero means len(Rows).
	TotalRows int `json:"totalRows,omitempty"`
}

// Result holds the provider's answer split into lines.
type Result struct {
	Lines    []string      `json:"summary"`
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Summarizer produces a short analysis of chart data.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (*Result, error)
}
