package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestGenerateWatchRejectsTargetArgs(t *testing.T) {
	cmd := &cli.Command{
		Name: "generate",
		Flags: append(commonFlags(),
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}},
		),
		Action: generateAction,
	}
	err := cmd.Run(context.Background(), []string{"generate", "--watch", "geom"})
	if err == nil {
		t.Fatal("watch mode must not silently ignore named targets")
	}
	if !strings.Contains(err.Error(), "--watch") {
		t.Fatalf("unexpected error: %v", err)
	}
}
