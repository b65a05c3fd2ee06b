package process

import (
	"context"
	"fmt"
	"os"

	"briclab/afm/cmd/shared"
	"briclab/afm/pkg/config"
	"briclab/afm/pkg/log"
	"briclab/afm/pkg/pipeline"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// GetCommand ...
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Run a processing recipe against wave files",
		ArgsUsage: "file.ibw [file.ibw ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadRecipe(cmd)
			if err != nil {
				return err
			}

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("missing file arguments")
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			shared.SetupSignalHandling(cancel)

			p := pipeline.New(cfg)
			p.Progress = term.IsTerminal(int(os.Stderr.Fd()))

			return p.ProcessAll(ctx, paths)
		},
		Flags: getFlags(),
	}
}

// loadRecipe reads and validates the recipe named by the recipe flag.
func loadRecipe(cmd *cli.Command) (*config.Recipe, error) {
	cfg, err := config.LoadRecipe(cmd.String(shared.RecipeFlag))
	if err != nil {
		return nil, fmt.Errorf("loading recipe: %s", err)
	}

	if errors := cfg.Validate(); len(errors) > 0 {
		log.ErrorMsg("Recipe validation errors:\n")
		for _, err := range errors {
			log.ErrorMsg(" - %s\n", err)
		}
		return nil, fmt.Errorf("exiting")
	}

	return cfg, nil
}

func getFlags() []cli.Flag {
	return shared.GetRecipeFlags()
}
