package chart

import "fmt"

type rgb struct{ r, g, b int }

var palette = [...]rgb{
	{255, 99, 132},
	{54, 162, 235},
	{255, 206, 86},
	{75, 192, 192},
	{153, 102, 255},
	{255, 159, 64},
	{199, 199, 199},
	{83, 102, 255},
	{255, 140, 184},
	{100, 255, 218},
}

// color returns palette entry i (mod palette size) as a CSS rgba() string.
func color(i int, alpha string) string {
	c := palette[i%len(palette)]
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.r, c.g, c.b, alpha)
}

const colorscaleViridis = "Viridis"
