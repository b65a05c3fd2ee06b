package info

import (
	"context"
	"testing"

	"briclab/afm/test/helpers"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd == nil {
		t.Fatal("GetCommand() returned nil")
	}

	if cmd.Name != "info" {
		t.Errorf("command name = %q; want %q", cmd.Name, "info")
	}

	if cmd.Action == nil {
		t.Error("command action should not be nil")
	}
}

func TestInfoCommand_Execute(t *testing.T) {
	t.Parallel()

	path := helpers.WriteIBW(t, t.TempDir(), "image.ibw", helpers.GradientWave(8, 0.5, 0.25))

	if err := GetCommand().Run(context.Background(), []string{"info", path}); err != nil {
		t.Errorf("Run() = %s", err)
	}
}

func TestInfoCommand_MissingArgument(t *testing.T) {
	t.Parallel()

	if err := GetCommand().Run(context.Background(), []string{"info"}); err == nil {
		t.Error("Run() without argument: want error, got nil")
	}
}
