package chart

import (
	"strings"

	"github.com/sakif/sageexcel/internal/model"
)

// Recipe names the columns a chart is drawn from.
type Recipe struct {
	Title       string      `json:"title" msgpack:"title"`
	XAxis       string      `json:"xAxis" msgpack:"xAxis"`
	YAxis       string      `json:"yAxis" msgpack:"yAxis"`
	ZAxis       string      `json:"zAxis,omitempty" msgpack:"zAxis,omitempty"`
	GroupBy     string      `json:"groupBy,omitempty" msgpack:"groupBy,omitempty"`
	Aggregation Aggregation `json:"aggregation" msgpack:"aggregation"`
}

// ResolveRecipe fills the axes from chart options, falling back to the
// positional slots of selectedFields: x, y, z, groupBy.
func ResolveRecipe(title string, selectedFields []string, options map[string]any) Recipe {
	slot := func(i int) string {
		if i < len(selectedFields) {
			return selectedFields[i]
		}
		return ""
	}
	pick := func(key string, i int) string {
		if v := option(options, key); v != "" {
			return v
		}
		return slot(i)
	}

	r := Recipe{
		Title:       title,
		XAxis:       pick("xAxis", 0),
		YAxis:       pick("yAxis", 1),
		ZAxis:       pick("zAxis", 2),
		GroupBy:     pick("groupBy", 3),
		Aggregation: ParseAggregation(option(options, "aggregation")),
	}
	if t := option(options, "title"); t != "" {
		r.Title = t
	}
	return r
}

// RecipeFor resolves the recipe stored on an analysis.
func RecipeFor(a *model.Analysis) Recipe {
	return ResolveRecipe(a.ChartTitle, a.SelectedFields, a.ChartOptions)
}

func option(options map[string]any, key string) string {
	s, _ := options[key].(string)
	return strings.TrimSpace(s)
}
