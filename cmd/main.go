package main

import (
	"context"
	"os"

	"briclab/afm/cmd/info"
	"briclab/afm/cmd/mesh"
	"briclab/afm/cmd/plot"
	"briclab/afm/cmd/process"
	"briclab/afm/cmd/stats"
	"briclab/afm/cmd/version"
	"briclab/afm/cmd/watch"
	"briclab/afm/pkg/log"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bric-afm",
		Usage: "analysis toolkit for MFP-3D atomic force microscopy scans",
		Commands: []*cli.Command{
			info.GetCommand(),
			stats.GetCommand(),
			plot.GetCommand(),
			mesh.GetCommand(),
			process.GetCommand(),
			watch.GetCommand(),
			version.GetCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
