// Package config holds the processing recipe, a TOML description of the
// channel to analyze, the operations to apply and the outputs to write.
package config

import (
	"fmt"

	"briclab/afm/pkg/ops"
	"briclab/afm/pkg/scan"

	"github.com/BurntSushi/toml"
)

// Operation names accepted in recipes.
const (
	OpMinToZero  = "min_to_zero"
	OpPlaneLevel = "plane_level"
	OpConformal  = "conformal"
)

// Output formats accepted in recipes.
const (
	FormatCSV = "csv"
	FormatPNG = "png"
	FormatSTL = "stl"
	FormatPLY = "ply"
)

// Recipe describes how to process an image file.
type Recipe struct {
	Channel    string   `toml:"channel"`
	Operations []OpSpec `toml:"operation"`
	Output     Output   `toml:"output"`
}

// OpSpec names a single operation and its parameters.
type OpSpec struct {
	Name      string  `toml:"name"`
	Thickness float64 `toml:"thickness"`
	Scale     float64 `toml:"scale"`
}

// Output describes which artifacts to write and where.
type Output struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`

	// mesh export only
	MeshScale    float64 `toml:"mesh_scale"`
	ZScale       float64 `toml:"z_scale"`
	ColorChannel string  `toml:"color_channel"`
}

// LoadRecipe reads a recipe from a TOML file and fills in defaults.
func LoadRecipe(path string) (*Recipe, error) {
	var r Recipe
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %s", path, err)
	}

	r.ApplyDefaults()
	return &r, nil
}

// ApplyDefaults fills in unset optional fields.
func (r *Recipe) ApplyDefaults() {
	if r.Output.Dir == "" {
		r.Output.Dir = "."
	}
	if len(r.Output.Formats) == 0 {
		r.Output.Formats = []string{FormatCSV}
	}
	if r.Output.MeshScale == 0 {
		r.Output.MeshScale = 1
	}
	if r.Output.ZScale == 0 {
		r.Output.ZScale = 1
	}

	for idx := range r.Operations {
		if r.Operations[idx].Name == OpConformal && r.Operations[idx].Scale == 0 {
			r.Operations[idx].Scale = 1
		}
	}
}

// Validate ...
func (r *Recipe) Validate() []error {
	var errors []error

	if r.Channel == "" {
		errors = append(errors, fmt.Errorf("'channel' is required"))
	}

	for _, op := range r.Operations {
		if err := op.validate(); err != nil {
			errors = append(errors, err)
		}
	}

	errors = append(errors, r.Output.Validate()...)

	return errors
}

func (op OpSpec) validate() error {
	switch op.Name {
	case OpMinToZero, OpPlaneLevel:
		return nil
	case OpConformal:
		if op.Thickness < 0 {
			return fmt.Errorf("conformal 'thickness' can not be negative")
		}
		if op.Scale <= 0 {
			return fmt.Errorf("conformal 'scale' must be greater than 0")
		}
		return nil
	default:
		return fmt.Errorf("unknown operation %q", op.Name)
	}
}

// Operation builds the runnable operation for this spec.
func (op OpSpec) Operation() (scan.Operation, error) {
	switch op.Name {
	case OpMinToZero:
		return ops.MinToZero{}, nil
	case OpPlaneLevel:
		return ops.PlaneLevel{}, nil
	case OpConformal:
		return ops.Conformal{Thickness: op.Thickness, Scale: op.Scale}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q", op.Name)
	}
}

// Validate ...
func (o Output) Validate() []error {
	var errors []error

	for _, f := range o.Formats {
		switch f {
		case FormatCSV, FormatPNG, FormatSTL, FormatPLY:
		default:
			errors = append(errors, fmt.Errorf("unknown output format %q", f))
		}
	}

	if o.MeshScale <= 0 {
		errors = append(errors, fmt.Errorf("'mesh_scale' must be greater than 0"))
	}
	if o.ZScale <= 0 {
		errors = append(errors, fmt.Errorf("'z_scale' must be greater than 0"))
	}

	return errors
}

// HasFormat reports whether the output includes the given format.
func (o Output) HasFormat(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}
