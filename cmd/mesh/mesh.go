package mesh

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"briclab/afm/cmd/shared"
	"briclab/afm/pkg/config"
	"briclab/afm/pkg/log"
	meshpkg "briclab/afm/pkg/mesh"
	"briclab/afm/pkg/pipeline"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "mesh",
		Usage:     "Export a channel as a 3D surface mesh (STL or PLY)",
		ArgsUsage: "file.ibw",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			img, ch, err := shared.LoadChannel(cmd)
			if err != nil {
				return err
			}

			out := shared.OutputPath(cmd, ".stl")

			var write func(m *meshpkg.Mesh, w io.Writer) error
			switch strings.ToLower(filepath.Ext(out)) {
			case ".stl":
				write = (*meshpkg.Mesh).WriteSTL
			case ".ply":
				write = (*meshpkg.Mesh).WritePLY
			default:
				return fmt.Errorf("unsupported mesh format %q, use .stl or .ply", filepath.Ext(out))
			}

			cfg := config.Output{
				MeshScale:    cmd.Float(shared.ScaleFlag),
				ZScale:       cmd.Float(shared.ZScaleFlag),
				ColorChannel: cmd.String(shared.ColorFlag),
			}
			if errors := cfg.Validate(); len(errors) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errors {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			m, err := pipeline.BuildMesh(img, ch, cfg)
			if err != nil {
				return fmt.Errorf("meshing: %s", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %s", out, err)
			}

			if err := write(m, f); err != nil {
				f.Close()
				return fmt.Errorf("writing mesh: %s", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %s", out, err)
			}

			log.InfoMsg("Wrote %s (%d vertices, %d faces)\n", out, len(m.Vertices), len(m.Faces))

			return nil
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetMeshFlags()...)
	flags = append(flags, &cli.StringFlag{
		Name:    shared.OutFlag,
		Aliases: []string{"o"},
		Usage:   "Output file path, the extension picks the format",
	})

	return flags
}
