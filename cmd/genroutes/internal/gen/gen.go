package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/flags"
	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/status"
)

type Cmd struct {
	flags.Project `embed:""`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}

	result, err := g.ToDir(ctx)
	if err != nil {
		return err
	}

	status.Success(os.Stdout, "Generated %d routes (%d files) in %s", len(result.Routes), len(result.Files), g.Config().OutputDir)
	for _, p := range result.Removed {
		fmt.Printf("  removed %s\n", p)
	}
	return nil
}
