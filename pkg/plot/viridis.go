package plot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"
)

// anchor colors of the viridis colormap, evenly spaced over [0, 1]
var viridisAnchors = []color.NRGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x48, G: 0x28, B: 0x78, A: 0xff},
	{R: 0x3e, G: 0x4a, B: 0x89, A: 0xff},
	{R: 0x31, G: 0x68, B: 0x8e, A: 0xff},
	{R: 0x26, G: 0x82, B: 0x8e, A: 0xff},
	{R: 0x1f, G: 0x9e, B: 0x89, A: 0xff},
	{R: 0x35, G: 0xb7, B: 0x79, A: 0xff},
	{R: 0x6e, G: 0xce, B: 0x58, A: 0xff},
	{R: 0xb5, G: 0xde, B: 0x2b, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Colormap maps t in [0, 1] to a viridis color. Values outside the range
// are clamped.
func Colormap(t float64) color.NRGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := t * float64(len(viridisAnchors)-1)
	lo := int(pos)
	if lo >= len(viridisAnchors)-1 {
		return viridisAnchors[len(viridisAnchors)-1]
	}
	frac := pos - float64(lo)

	a, b := viridisAnchors[lo], viridisAnchors[lo+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + frac*(float64(y)-float64(x))))
	}

	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}

type viridisPalette struct {
	colors []color.Color
}

func (p viridisPalette) Colors() []color.Color {
	return p.colors
}

// Viridis returns a viridis palette with n colors.
func Viridis(n int) palette.Palette {
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = Colormap(float64(i) / float64(n-1))
	}
	return viridisPalette{colors: colors}
}

// MapColors maps grid values to viridis colors in row-major order,
// normalized over the finite value range. NaN samples map to the low end
// of the scale.
func MapColors(data *mat.Dense) ([]color.NRGBA, error) {
	rows, cols := data.Dims()

	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := data.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if min > max {
		return nil, fmt.Errorf("no finite values")
	}

	span := max - min
	if span == 0 {
		span = 1
	}

	out := make([]color.NRGBA, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, Colormap((data.At(i, j)-min)/span))
		}
	}

	return out, nil
}
