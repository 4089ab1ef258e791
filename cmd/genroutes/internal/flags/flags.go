// Package flags holds the command-line options shared by the generating
// commands and turns them into a route generator.
package flags

import (
	"log/slog"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen"
)

// Project selects the routes directory and the generated output. Flags
// override values from the config file.
type Project struct {
	Config      string `help:"YAML config file." short:"c" env:"GENROUTES_CONFIG" placeholder:"FILE"`
	RoutesDir   string `help:"SvelteKit routes directory (default: src/routes)." env:"GENROUTES_ROUTES_DIR" placeholder:"DIR"`
	ParamsDir   string `help:"Param matchers directory (default: src/params)." env:"GENROUTES_PARAMS_DIR" placeholder:"DIR"`
	OutDir      string `help:"Output directory (default: src)." env:"GENROUTES_OUT_DIR" placeholder:"DIR"`
	ModuleName  string `help:"Name of the generated module (default: $routes)." env:"GENROUTES_MODULE_NAME" placeholder:"NAME"`
	LineEnding  string `help:"Line ending of generated files: lf or crlf." env:"GENROUTES_LINE_ENDING" placeholder:"lf|crlf"`
	EmitHelpers bool   `help:"Write the runtime helpers next to the route modules." env:"GENROUTES_EMIT_HELPERS"`
	NoRoot      bool   `help:"Do not generate the root page unless it exists." env:"GENROUTES_NO_ROOT"`
}

// Generator returns a generator configured from the config file, if any,
// and the flags.
func (p *Project) Generator(logger *slog.Logger) (*routegen.Generator, error) {
	cfg := &routegen.Config{}
	if p.Config != "" {
		loaded, err := routegen.LoadConfig(p.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	g := routegen.FromConfig(cfg).Logger(logger)
	if p.RoutesDir != "" {
		g.RoutesDir(p.RoutesDir)
	}
	if p.ParamsDir != "" {
		g.ParamsDir(p.ParamsDir)
	}
	if p.OutDir != "" {
		g.OutputDir(p.OutDir)
	}
	if p.ModuleName != "" {
		g.ModuleName(p.ModuleName)
	}
	if p.LineEnding != "" {
		g.LineEnding(p.LineEnding)
	}
	if p.EmitHelpers {
		g.WithHelpers()
	}
	if p.NoRoot {
		g.WithoutRootRoute()
	}
	return g, nil
}
