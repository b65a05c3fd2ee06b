package pipeline

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"briclab/afm/pkg/config"
	"briclab/afm/pkg/mesh"
	"briclab/afm/pkg/plot"
	"briclab/afm/pkg/scan"
)

func (p *Pipeline) writeOutputs(img *scan.Image, ch *scan.Channel, srcPath string) error {
	out := p.cfg.Output

	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %s", out.Dir, err)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))

	if out.HasFormat(config.FormatCSV) {
		path := filepath.Join(out.Dir, base+".csv")
		if err := writeCSV(ch, path); err != nil {
			return fmt.Errorf("csv: %s", err)
		}
	}

	if out.HasFormat(config.FormatPNG) {
		path := filepath.Join(out.Dir, base+".png")
		if err := plot.SavePNG(ch, path); err != nil {
			return fmt.Errorf("png: %s", err)
		}
	}

	if out.HasFormat(config.FormatSTL) || out.HasFormat(config.FormatPLY) {
		m, err := BuildMesh(img, ch, out)
		if err != nil {
			return fmt.Errorf("meshing: %s", err)
		}

		if out.HasFormat(config.FormatSTL) {
			if err := writeMesh(m.WriteSTL, filepath.Join(out.Dir, base+".stl")); err != nil {
				return fmt.Errorf("stl: %s", err)
			}
		}
		if out.HasFormat(config.FormatPLY) {
			if err := writeMesh(m.WritePLY, filepath.Join(out.Dir, base+".ply")); err != nil {
				return fmt.Errorf("ply: %s", err)
			}
		}
	}

	return nil
}

// writeCSV writes the channel as a grid with the y index in the first
// row and the x index in the first column.
func writeCSV(ch *scan.Channel, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %s", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	x, y := ch.X(), ch.Y()
	data := ch.Data()

	head := make([]string, len(y)+1)
	head[0] = "x\\y"
	for j, v := range y {
		head[j+1] = formatFloat(v)
	}
	if err := w.Write(head); err != nil {
		return fmt.Errorf("writing header: %s", err)
	}

	row := make([]string, len(y)+1)
	for i := range x {
		row[0] = formatFloat(x[i])
		for j := range y {
			row[j+1] = formatFloat(data.At(i, j))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %s", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing: %s", err)
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// BuildMesh meshes a channel, scaled per the output config, with
// optional vertex colors from another channel of the same image.
func BuildMesh(img *scan.Image, ch *scan.Channel, out config.Output) (*mesh.Mesh, error) {
	s := out.MeshScale

	x := ch.X()
	for i := range x {
		x[i] *= s
	}
	y := ch.Y()
	for j := range y {
		y[j] *= s
	}

	data := ch.Data()
	data.Apply(func(i, j int, v float64) float64 { return v * s * out.ZScale }, data)

	var colors []color.NRGBA
	if out.ColorChannel != "" {
		cdata, ok := img.CopyChannelData(out.ColorChannel)
		if !ok {
			return nil, fmt.Errorf("no channel labeled %q", out.ColorChannel)
		}

		var err error
		colors, err = plot.MapColors(cdata)
		if err != nil {
			return nil, fmt.Errorf("mapping colors: %s", err)
		}
	}

	return mesh.New(x, y, data, colors)
}

func writeMesh(write func(w io.Writer) error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %s", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %s", path, err)
	}

	return nil
}
