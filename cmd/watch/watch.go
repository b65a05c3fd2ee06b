package watch

import (
	"context"
	"fmt"

	"briclab/afm/cmd/shared"
	"briclab/afm/pkg/config"
	"briclab/afm/pkg/log"
	"briclab/afm/pkg/pipeline"

	"github.com/urfave/cli/v3"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory and process new wave files as they appear",
		ArgsUsage: "directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.LoadRecipe(cmd.String(shared.RecipeFlag))
			if err != nil {
				return fmt.Errorf("loading recipe: %s", err)
			}

			if errors := cfg.Validate(); len(errors) > 0 {
				log.ErrorMsg("Recipe validation errors:\n")
				for _, err := range errors {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			dir := cmd.Args().First()
			if dir == "" {
				return fmt.Errorf("missing directory argument")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			return pipeline.New(cfg).Watch(ctx, dir, int(cmd.Int(shared.WorkersFlag)))
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetRecipeFlags()...)
	flags = append(flags, &cli.IntFlag{
		Name:    shared.WorkersFlag,
		Aliases: []string{"w"},
		Usage:   "How many files to process concurrently",
		Value:   2,
	})

	return flags
}
