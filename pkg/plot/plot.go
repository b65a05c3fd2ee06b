// Package plot renders image channels as heatmap images with the viridis
// colormap.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"

	"briclab/afm/pkg/scan"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// channelGrid adapts channel data to the plotter grid interface. The x
// index runs along plot columns. NaN samples are drawn at the low end of
// the color scale.
type channelGrid struct {
	x, y []float64
	data *mat.Dense
	min  float64
}

func newChannelGrid(ch *scan.Channel) channelGrid {
	data := ch.Data()
	rows, cols := data.Dims()

	min := math.Inf(1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := data.At(i, j); !math.IsNaN(v) {
				min = math.Min(min, v)
			}
		}
	}

	return channelGrid{x: ch.X(), y: ch.Y(), data: data, min: min}
}

func (g channelGrid) Dims() (c, r int) { return len(g.x), len(g.y) }

func (g channelGrid) Z(c, r int) float64 {
	v := g.data.At(c, r)
	if math.IsNaN(v) {
		return g.min
	}
	return v
}

func (g channelGrid) X(c int) float64 { return g.x[c] }

func (g channelGrid) Y(r int) float64 { return g.y[r] }

// Heatmap builds a heatmap plot of the channel.
func Heatmap(ch *scan.Channel) (*plot.Plot, error) {
	grid := newChannelGrid(ch)
	if math.IsInf(grid.min, 1) {
		return nil, fmt.Errorf("no finite values")
	}

	p := plot.New()
	p.Title.Text = ch.Label()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewHeatMap(grid, Viridis(256)))

	return p, nil
}

// WritePNG renders the channel heatmap as PNG to w.
func WritePNG(ch *scan.Channel, w io.Writer) error {
	p, err := Heatmap(ch)
	if err != nil {
		return fmt.Errorf("building heatmap: %s", err)
	}

	wt, err := p.WriterTo(14*vg.Centimeter, 12*vg.Centimeter, "png")
	if err != nil {
		return fmt.Errorf("rendering: %s", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing: %s", err)
	}

	return nil
}

// SavePNG renders the channel heatmap as PNG to a file.
func SavePNG(ch *scan.Channel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %s", path, err)
	}

	if err := WritePNG(ch, f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %s", path, err)
	}

	return nil
}
