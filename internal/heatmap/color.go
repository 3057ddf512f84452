package heatmap

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/jengzang/resourcemap-backend-go/internal/stats"
)

// ColorFor maps a [0,1] influence value to a hue between red (0) and green (120)
func ColorFor(value float64) string {
	hue := stats.Clamp(value, 0, 1) * 120
	return fmt.Sprintf("hsl(%s, 100%%, 50%%)", strconv.FormatFloat(hue, 'f', -1, 64))
}

// RGBAFor returns the same color as ColorFor as an opaque RGBA value
func RGBAFor(value float64) color.RGBA {
	hue := stats.Clamp(value, 0, 1) * 120
	r, g, b := hslToRGB(hue, 1, 0.5)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// hslToRGB converts hue (degrees), saturation and lightness (0-1) to 8-bit RGB
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	hp := math.Mod(h, 360) / 60
	x := c * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	m := l - c/2
	return to8(r + m), to8(g + m), to8(b + m)
}

func to8(v float64) uint8 {
	return uint8(math.Round(stats.Clamp(v, 0, 1) * 255))
}
