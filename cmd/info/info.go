package info

import (
	"context"
	"fmt"
	"os"
	"strings"

	"briclab/afm/pkg/ibw"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show wave file metadata",
		ArgsUsage: "file.ibw",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return fmt.Errorf("missing file argument")
			}

			fi, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat: %s", err)
			}

			desc, err := ibw.Describe(path)
			if err != nil {
				return fmt.Errorf("reading header: %s", err)
			}

			img, err := ibw.Load(path)
			if err != nil {
				return fmt.Errorf("loading %s: %s", path, err)
			}

			rows, cols := img.Shape()
			x, y := img.X(), img.Y()

			fmt.Printf("File:     %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
			fmt.Printf("Wave:     %s (%s)\n", desc.Name, desc.Type)
			fmt.Printf("Shape:    %d x %d\n", rows, cols)
			fmt.Printf("X range:  %g .. %g\n", x[0], x[len(x)-1])
			fmt.Printf("Y range:  %g .. %g\n", y[0], y[len(y)-1])
			fmt.Printf("Channels: %s\n", strings.Join(img.Labels(), ", "))

			return nil
		},
		Flags: []cli.Flag{},
	}
}
