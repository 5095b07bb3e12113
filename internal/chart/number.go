package chart

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces a cell to a float. Anything that is not a finite
// decimal number counts as 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseLooseNumber is ParseNumber with a second attempt after dropping every
// character other than digits and dots, so "$1,200" reads as 1200.
func ParseLooseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}

	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	return ParseNumber(stripped)
}

// numberOrString returns the cell as a float64 when it parses, otherwise the
// raw string. Plotly treats the former as a numeric axis value and the latter
// as a category.
func numberOrString(s string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
