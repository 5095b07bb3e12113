package model

import "time"

// ChartType is the closed set of chart kinds an analysis can be saved as.
type ChartType string

const (
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartPie       ChartType = "pie"
	ChartDoughnut  ChartType = "doughnut"
	ChartRadar     ChartType = "radar"
	ChartScatter   ChartType = "scatter"
	ChartBar3D     ChartType = "bar3d"
	ChartScatter3D ChartType = "scatter3d"
	ChartSurface3D ChartType = "surface3d"
)

// ChartTypes lists every valid ChartType in display order.
var ChartTypes = []ChartType{
	ChartBar, ChartLine, ChartPie, ChartDoughnut, ChartRadar, ChartScatter,
	ChartBar3D, ChartScatter3D, ChartSurface3D,
}

// Valid reports whether t is one of the known chart kinds.
func (t ChartType) Valid() bool {
	for _, ct := range ChartTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// Is3D reports whether t is rendered as 3D geometry rather than a 2D series.
func (t ChartType) Is3D() bool {
	return t == ChartBar3D || t == ChartScatter3D || t == ChartSurface3D
}

// Analysis is a saved chart recipe. Only the configuration is persisted;
// the chart itself is re-derived from the source file on every view.
//
// SelectedFields is positional: [x, y, z, groupBy].
type Analysis struct {
	ID             string         `json:"_id"`
	UserID         string         `json:"userId"`
	FileID         string         `json:"fileId"`
	ChartTitle     string         `json:"chartTitle"`
	ChartType      ChartType      `json:"chartType"`
	SelectedFields []string       `json:"selectedFields"`
	ChartOptions   map[string]any `json:"chartOptions"`
	Filters        map[string]any `json:"filters"`
	Summary        []string       `json:"summary"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// DashboardFile and DashboardAnalysis are the trimmed shapes returned by the
// dashboard summary.
type DashboardFile struct {
	ID       string    `json:"_id"`
	Filename string    `json:"filename"`
	Date     time.Time `json:"date"`
}

type DashboardAnalysis struct {
	ID         string    `json:"_id"`
	ChartTitle string    `json:"chartTitle"`
	CreatedAt  time.Time `json:"createdAt"`
}
