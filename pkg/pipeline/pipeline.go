// Package pipeline runs processing recipes against image files: load the
// wave, apply the configured operations to the selected channel, write
// the outputs.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"briclab/afm/pkg/config"
	"briclab/afm/pkg/ibw"
	"briclab/afm/pkg/log"
	"briclab/afm/pkg/ops"
	"briclab/afm/pkg/scan"

	"github.com/schollz/progressbar/v3"
)

// Pipeline applies a recipe to image files.
type Pipeline struct {
	cfg *config.Recipe

	// Progress enables progress bars on stderr for long operations.
	Progress bool
}

// New creates a pipeline for the given recipe. The recipe should be
// validated first.
func New(cfg *config.Recipe) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// ProcessFile loads an .ibw file, applies the recipe operations to its
// configured channel and writes the outputs.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) error {
	img, err := ibw.Load(path)
	if err != nil {
		return fmt.Errorf("loading image: %s", err)
	}

	ch, err := img.Channel(p.cfg.Channel)
	if err != nil {
		return fmt.Errorf("selecting channel: %s", err)
	}

	for _, spec := range p.cfg.Operations {
		if err := ctx.Err(); err != nil {
			return err
		}

		op, err := spec.Operation()
		if err != nil {
			return fmt.Errorf("building operation: %s", err)
		}

		if err := ch.Apply(p.withProgress(op)); err != nil {
			return fmt.Errorf("processing: %s", err)
		}
	}

	if err := p.writeOutputs(img, ch, path); err != nil {
		return fmt.Errorf("writing outputs: %s", err)
	}

	return nil
}

// ProcessAll processes the files one by one. It keeps going on errors
// and reports how many files failed.
func (p *Pipeline) ProcessAll(ctx context.Context, paths []string) error {
	var bar *progressbar.ProgressBar
	if p.Progress && len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("processing"),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	failed := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := p.ProcessFile(ctx, path); err != nil {
			log.ErrorMsg("%s: %s\n", path, err)
			failed++
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}

	return nil
}

// withProgress attaches a progress bar to operations that report
// progress, currently only conformal layers.
func (p *Pipeline) withProgress(op scan.Operation) scan.Operation {
	if !p.Progress {
		return op
	}

	c, ok := op.(ops.Conformal)
	if !ok {
		return op
	}

	var bar *progressbar.ProgressBar
	c.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(c.Name()),
				progressbar.OptionSetWriter(os.Stderr),
			)
		}
		_ = bar.Set(done)
	}

	return c
}
