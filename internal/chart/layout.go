package chart

// Layout3D is the subset of a Plotly layout the 3D charts set.
type Layout3D struct {
	Title      string `json:"title" msgpack:"title"`
	Scene      Scene  `json:"scene" msgpack:"scene"`
	ShowLegend bool   `json:"showlegend" msgpack:"showlegend"`
}

type Scene struct {
	XAxis Axis `json:"xaxis" msgpack:"xaxis"`
	YAxis Axis `json:"yaxis" msgpack:"yaxis"`
	ZAxis Axis `json:"zaxis" msgpack:"zaxis"`
}

type Axis struct {
	Title    string   `json:"title" msgpack:"title"`
	TickVals []int    `json:"tickvals,omitempty" msgpack:"tickvals,omitempty"`
	TickText []string `json:"ticktext,omitempty" msgpack:"ticktext,omitempty"`
}

func newLayout3D(r Recipe, yTitle string, legend bool) Layout3D {
	zTitle := r.ZAxis
	if zTitle == "" {
		zTitle = "Z"
	}
	return Layout3D{
		Title: r.Title,
		Scene: Scene{
			XAxis: Axis{Title: r.XAxis},
			YAxis: Axis{Title: yTitle},
			ZAxis: Axis{Title: zTitle},
		},
		ShowLegend: legend,
	}
}
