package plot

import (
	"context"
	"fmt"

	"briclab/afm/cmd/shared"
	"briclab/afm/pkg/log"
	"briclab/afm/pkg/plot"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "Render a channel as a PNG heatmap",
		ArgsUsage: "file.ibw",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, ch, err := shared.LoadChannel(cmd)
			if err != nil {
				return err
			}

			out := shared.OutputPath(cmd, ".png")
			if err := plot.SavePNG(ch, out); err != nil {
				return fmt.Errorf("rendering: %s", err)
			}
			log.InfoMsg("Wrote %s\n", out)

			return nil
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, &cli.StringFlag{
		Name:    shared.OutFlag,
		Aliases: []string{"o"},
		Usage:   "Output file path, defaults to the input name with a new extension",
	})

	return flags
}
