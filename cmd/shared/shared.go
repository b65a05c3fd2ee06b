package shared

import (
	"fmt"
	"path/filepath"
	"strings"

	"briclab/afm/pkg/ibw"
	"briclab/afm/pkg/scan"

	"github.com/urfave/cli/v3"
)

// ChannelFlag selects the image channel to analyze
const ChannelFlag = "channel"

// OpsFlag lists processing operations applied before the command runs
const OpsFlag = "ops"

// OutFlag sets the output file path
const OutFlag = "out"

// ScaleFlag scales the xy plane of exported meshes
const ScaleFlag = "scale"

// ZScaleFlag scales heights of exported meshes on top of ScaleFlag
const ZScaleFlag = "z-scale"

// ColorFlag selects the channel used for mesh vertex colors
const ColorFlag = "color"

// HistFlag enables the height histogram
const HistFlag = "hist"

// FitFlag sets how many Gaussian peaks to fit to the histogram
const FitFlag = "fit"

// IgnoreNaNFlag drops NaN cells from roughness statistics
const IgnoreNaNFlag = "ignore-nan"

// RecipeFlag points at the TOML processing recipe
const RecipeFlag = "recipe"

// WorkersFlag limits how many files are processed concurrently
const WorkersFlag = "workers"

const categoryProcessing = "Processing"
const categoryOutput = "Output"

// GetCommonFlags returns the flags shared by all analysis commands.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ChannelFlag,
			Aliases:  []string{"c"},
			Usage:    "Channel label to analyze",
			Category: categoryProcessing,
			Value:    "HeightTrace",
		},
		&cli.StringFlag{
			Name:     OpsFlag,
			Usage:    "Operations to apply first, e.g. 'plane_level,min_to_zero,conformal:300:1e9'",
			Category: categoryProcessing,
		},
	}
}

// GetMeshFlags returns the flags controlling mesh export.
func GetMeshFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:     ScaleFlag,
			Usage:    "Scale factor applied to all coordinates, e.g. 1e9 for nm output",
			Category: categoryOutput,
			Value:    1,
		},
		&cli.FloatFlag{
			Name:     ZScaleFlag,
			Usage:    "Extra scale factor applied to heights only",
			Category: categoryOutput,
			Value:    1,
		},
		&cli.StringFlag{
			Name:     ColorFlag,
			Usage:    "Channel label used for vertex colors",
			Category: categoryOutput,
		},
	}
}

// GetStatsFlags returns the flags of the stats command.
func GetStatsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     HistFlag,
			Usage:    "Print a height histogram",
			Category: categoryProcessing,
		},
		&cli.IntFlag{
			Name:     FitFlag,
			Usage:    "Fit this many Gaussian peaks to the histogram",
			Category: categoryProcessing,
		},
		&cli.BoolFlag{
			Name:     IgnoreNaNFlag,
			Usage:    "Drop NaN cells instead of propagating them",
			Category: categoryProcessing,
		},
	}
}

// GetRecipeFlags returns the flags of the recipe driven commands.
func GetRecipeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     RecipeFlag,
			Aliases:  []string{"r"},
			Usage:    "Path to the TOML processing recipe",
			Category: categoryProcessing,
			Required: true,
		},
	}
}

// LoadChannel loads the wave file given as the command argument,
// selects the channel from the channel flag and applies the operation
// pipeline from the ops flag.
func LoadChannel(cmd *cli.Command) (*scan.Image, *scan.Channel, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, nil, fmt.Errorf("missing file argument")
	}

	img, err := ibw.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %s", path, err)
	}

	ch, err := img.Channel(cmd.String(ChannelFlag))
	if err != nil {
		return nil, nil, fmt.Errorf("selecting channel: %s", err)
	}

	operations, err := ParseOps(cmd.String(OpsFlag))
	if err != nil {
		return nil, nil, err
	}

	for _, op := range operations {
		if err := ch.Apply(op); err != nil {
			return nil, nil, fmt.Errorf("applying %s: %s", op.Name(), err)
		}
	}

	return img, ch, nil
}

// OutputPath returns the out flag, or the input file name with its
// extension replaced by ext when the flag is unset.
func OutputPath(cmd *cli.Command, ext string) string {
	if out := cmd.String(OutFlag); out != "" {
		return out
	}

	path := filepath.Base(cmd.Args().First())
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
