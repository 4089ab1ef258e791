package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/flags"
	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/status"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

type Cmd struct {
	flags.Project `embed:""`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	g, err := c.Generator(logger)
	if err != nil {
		return err
	}

	routes, err := g.Check(ctx)
	if err != nil {
		status.Failure(os.Stderr, "%v", err)
		return err
	}

	status.Success(os.Stdout, "Resolved %d routes in %s", len(routes), g.Config().RoutesDir)
	return Print(os.Stdout, routes)
}

// Print writes one line per final route: its identifier, its URL and its
// parameters.
func Print(w io.Writer, routes []ir.FinalRoute) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range routes {
		params := ""
		for i, name := range r.ParamNames() {
			if i > 0 {
				params += ", "
			}
			params += name
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", status.Name(r.Identifier()), r.URL(), params)
	}
	return tw.Flush()
}
