package stats

import (
	"context"
	"fmt"

	"briclab/afm/cmd/shared"
	"briclab/afm/pkg/stats"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Compute roughness statistics for a channel",
		ArgsUsage: "file.ibw",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, ch, err := shared.LoadChannel(cmd)
			if err != nil {
				return err
			}

			ignoreNaN := cmd.Bool(shared.IgnoreNaNFlag)

			ra, err := stats.RoughnessAvg(ch, ignoreNaN)
			if err != nil {
				return fmt.Errorf("computing Ra: %s", err)
			}
			rq, err := stats.RoughnessRMS(ch, ignoreNaN)
			if err != nil {
				return fmt.Errorf("computing Rq: %s", err)
			}

			fmt.Printf("RMS: %g\n", stats.RMS(ch.Data()))
			fmt.Printf("Ra:  %g\n", ra)
			fmt.Printf("Rq:  %g\n", rq)

			if cmd.Bool(shared.HistFlag) || cmd.Int(shared.FitFlag) > 0 {
				if err := printHistogram(ch, int(cmd.Int(shared.FitFlag))); err != nil {
					return err
				}
			}

			return nil
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetStatsFlags()...)

	return flags
}
