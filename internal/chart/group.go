package chart

import "github.com/sakif/sageexcel/internal/sheet"

// Aggregation reduces the values of one group to a single number.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
)

// ParseAggregation maps unknown or empty names to AggSum.
func ParseAggregation(s string) Aggregation {
	switch a := Aggregation(s); a {
	case AggSum, AggAvg, AggCount:
		return a
	default:
		return AggSum
	}
}

// Point is one labelled value of a series.
type Point struct {
	Label string  `json:"label" msgpack:"label"`
	Value float64 `json:"value" msgpack:"value"`
}

// Group partitions rows by groupCol and reduces the coerced valueCol of each
// partition with agg. Groups come out in order of first occurrence.
func Group(rows []sheet.Row, groupCol, valueCol string, agg Aggregation) []Point {
	type bucket struct {
		sum   float64
		count int
	}

	var order []string
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		key := row[groupCol]
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += ParseNumber(row[valueCol])
		b.count++
	}

	points := make([]Point, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		var v float64
		switch agg {
		case AggAvg:
			v = b.sum / float64(b.count)
		case AggCount:
			v = float64(b.count)
		default:
			v = b.sum
		}
		points = append(points, Point{Label: key, Value: v})
	}
	return points
}

// rowPoints pairs each row's x cell with its coerced y cell, in row order.
func rowPoints(rows []sheet.Row, xCol, yCol string) []Point {
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, Point{Label: row[xCol], Value: ParseNumber(row[yCol])})
	}
	return points
}
