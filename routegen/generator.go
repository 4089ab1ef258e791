// Package routegen generates typed route functions for a SvelteKit project.
//
// It scans the routes directory, flattens every page, endpoint method and
// form action into a final route and writes a JavaScript module per route
// plus an ambient TypeScript declaration describing all of them.
//
// Example:
//
//	routegen.New().
//	    RoutesDir("./src/routes").
//	    QueryParam(ir.VariantPage, "search", ir.QueryParam{Name: "query", Type: "string"}).
//	    ToDir(ctx)
package routegen

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/fehnomenal/sveltekit-gen-routes/internal/runner"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/provider"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/sink"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

// Generator provides a fluent API for route generation.
// Create with New() or FromConfig() and configure with method chaining.
type Generator struct {
	cfg       Config
	logger    *slog.Logger
	extractor provider.Extractor
}

// New creates a Generator with the default configuration.
func New() *Generator {
	return &Generator{}
}

// FromConfig creates a Generator starting from cfg. Later calls do not
// modify cfg.
func FromConfig(cfg *Config) *Generator {
	g := &Generator{cfg: *cfg}
	g.cfg.Routes = ir.RoutesConfig{
		Pages:   maps.Clone(cfg.Routes.Pages),
		Servers: maps.Clone(cfg.Routes.Servers),
		Actions: maps.Clone(cfg.Routes.Actions),
	}
	return g
}

// ModuleName sets the import specifier of the generated index module.
func (g *Generator) ModuleName(name string) *Generator {
	g.cfg.ModuleName = name
	return g
}

// RoutesDir sets the SvelteKit routes directory.
func (g *Generator) RoutesDir(dir string) *Generator {
	g.cfg.RoutesDir = dir
	return g
}

// ParamsDir sets the param matchers directory.
func (g *Generator) ParamsDir(dir string) *Generator {
	g.cfg.ParamsDir = dir
	return g
}

// OutputDir sets the directory generated files are written to.
func (g *Generator) OutputDir(dir string) *Generator {
	g.cfg.OutputDir = dir
	return g
}

// WithoutRootRoute stops generating the root page when the routes directory
// does not define it.
func (g *Generator) WithoutRootRoute() *Generator {
	forceRoot := false
	g.cfg.ForceRootRoute = &forceRoot
	return g
}

// HelpersModule sets the import specifier of the runtime helpers.
func (g *Generator) HelpersModule(specifier string) *Generator {
	g.cfg.HelpersModule = specifier
	return g
}

// TypesModule sets the import specifier of the shared route types.
func (g *Generator) TypesModule(specifier string) *Generator {
	g.cfg.TypesModule = specifier
	return g
}

// LineEnding sets the line terminator: "lf" or "crlf".
func (g *Generator) LineEnding(le string) *Generator {
	g.cfg.LineEnding = le
	return g
}

// WithHelpers writes the runtime helpers next to the route modules.
func (g *Generator) WithHelpers() *Generator {
	g.cfg.EmitHelpers = true
	return g
}

// QueryParam declares an explicit query parameter for the final route with
// the given composite key, e.g. "search" for a page or "api_GET" for the GET
// handler of an endpoint.
func (g *Generator) QueryParam(variant ir.Variant, key string, p ir.QueryParam) *Generator {
	group := g.routeGroup(variant)
	override := (*group)[key]
	override.ExplicitQueryParams = append(slices.Clone(override.ExplicitQueryParams), p)
	if *group == nil {
		*group = make(map[string]ir.RouteOverride)
	}
	(*group)[key] = override
	return g
}

func (g *Generator) routeGroup(variant ir.Variant) *map[string]ir.RouteOverride {
	switch variant {
	case ir.VariantPage:
		return &g.cfg.Routes.Pages
	case ir.VariantServer:
		return &g.cfg.Routes.Servers
	case ir.VariantAction:
		return &g.cfg.Routes.Actions
	default:
		panic(fmt.Errorf("%w: %q", ir.ErrUnknownVariant, string(variant)))
	}
}

// Logger sets the logger for generation passes. Default: slog.Default().
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.logger = l
	return g
}

// Extractor overrides how exported names are read from route sources.
func (g *Generator) Extractor(e provider.Extractor) *Generator {
	g.extractor = e
	return g
}

// Config returns the configuration with defaults applied.
func (g *Generator) Config() Config {
	return *applyConfigDefaults(&g.cfg)
}

// Session validates the configuration and returns a session writing to s.
func (g *Generator) Session(s sink.OutputSink) (*Session, error) {
	cfg := applyConfigDefaults(&g.cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if info, err := os.Stat(cfg.RoutesDir); err != nil {
		return nil, fmt.Errorf("routes dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("routes dir: %s is not a directory", cfg.RoutesDir)
	}
	tsConfig, err := cfg.typeScriptConfig()
	if err != nil {
		return nil, err
	}

	r, err := runner.New(runner.Options{
		Routes:         os.DirFS(cfg.RoutesDir),
		ForceRootRoute: *cfg.ForceRootRoute,
		Extractor:      g.extractor,
		Config:         tsConfig,
		Sink:           s,
		Logger:         g.logger,
	})
	if err != nil {
		return nil, err
	}
	return &Session{runner: r, cfg: *cfg}, nil
}

// ToDir generates all files into the output directory.
// This is a terminal operation that writes files to disk.
func (g *Generator) ToDir(ctx context.Context) (*typescript.GenerateResult, error) {
	cfg := g.Config()
	s, err := g.Session(sink.NewFilesystemSink(cfg.OutputDir))
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Generate returns the generated files in memory without writing to disk.
// Use ToDir() to write files to disk instead.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	mem := sink.NewMemorySink()
	s, err := g.Session(mem)
	if err != nil {
		return nil, err
	}
	result, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{GenerateResult: result, Contents: mem.Files()}, nil
}

// Check resolves the routes and returns the final routes without writing.
func (g *Generator) Check(ctx context.Context) ([]ir.FinalRoute, error) {
	s, err := g.Session(sink.NewMemorySink())
	if err != nil {
		return nil, err
	}
	return s.Check(ctx)
}

// Result is the outcome of an in-memory generation.
type Result struct {
	*typescript.GenerateResult

	// Contents maps generated file paths to their content.
	Contents map[string][]byte
}

// Session keeps the resolved routes between generation passes, so file
// changes can be applied one at a time.
type Session struct {
	runner *runner.Runner
	cfg    Config
}

// Config returns the validated configuration of the session.
func (s *Session) Config() Config {
	return s.cfg
}

// Run resolves every route and writes all files.
func (s *Session) Run(ctx context.Context) (*typescript.GenerateResult, error) {
	return s.runner.Run(ctx)
}

// Changed applies a change of the file at relPath, relative to the routes
// directory, and regenerates if any route was affected. The result is nil
// when nothing changed.
func (s *Session) Changed(ctx context.Context, relPath string, removed bool) (*typescript.GenerateResult, error) {
	op := runner.OpWrite
	if removed {
		op = runner.OpRemove
	}
	return s.runner.Handle(ctx, runner.Event{Path: relPath, Op: op})
}

// Check resolves every route and returns the final routes without writing.
func (s *Session) Check(ctx context.Context) ([]ir.FinalRoute, error) {
	return s.runner.Check(ctx)
}
