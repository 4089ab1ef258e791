// Package runner drives route generation for one routes directory.
//
// A Runner owns the resolved routes. Run scans the whole directory and
// writes every generated file; Handle applies a single file change and
// regenerates. Files whose content did not change are left alone by sinks
// that compare before writing, so regenerating after every change is cheap
// for the consumers watching the output.
package runner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/provider"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/sink"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

// Options configures the runner.
type Options struct {
	// Routes is the routes directory.
	Routes fs.FS

	// ForceRootRoute adds the root page even if the directory lacks one.
	ForceRootRoute bool

	// Extractor reads exported names from route sources. Optional.
	Extractor provider.Extractor

	// Config configures the generated files.
	Config typescript.GeneratorConfig

	// Sink receives generated files.
	Sink sink.OutputSink

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Op is the kind of a file change.
type Op uint8

const (
	// OpWrite means the file was created or modified.
	OpWrite Op = iota

	// OpRemove means the file was deleted or renamed away.
	OpRemove
)

func (o Op) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "write"
}

// Event is a change of one file in the routes directory.
type Event struct {
	// Path is slash-separated and relative to the routes directory.
	Path string
	Op   Op
}

// Runner resolves routes and writes the generated files.
type Runner struct {
	resolver *provider.Resolver
	gen      typescript.RouteGenerator
	cfg      typescript.GeneratorConfig
	sink     sink.OutputSink
	logger   *slog.Logger

	// mu serializes generation passes.
	mu sync.Mutex
}

// New returns a runner for opts.
func New(opts Options) (*Runner, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	resolver, err := provider.NewResolver(opts.Routes, provider.ResolverOptions{
		Extractor:      opts.Extractor,
		ForceRootRoute: opts.ForceRootRoute,
	})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		resolver: resolver,
		cfg:      opts.Config,
		sink:     opts.Sink,
		logger:   logger,
	}, nil
}

// Run resolves every route and writes all generated files.
func (r *Runner) Run(ctx context.Context) (*typescript.GenerateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes, err := r.resolver.ResolveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve routes: %w", err)
	}
	return r.generate(ctx, routes)
}

// Handle applies a single file change. It returns a nil result and no error
// when the change does not affect any route.
func (r *Runner) Handle(ctx context.Context, ev Event) (*typescript.GenerateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		changed bool
		err     error
	)
	switch ev.Op {
	case OpRemove:
		changed, err = r.resolver.Remove(ctx, ev.Path)
	default:
		changed, err = r.resolver.Update(ctx, ev.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", ev.Op, ev.Path, err)
	}
	if !changed {
		r.logger.Debug("ignoring change", slog.String("path", ev.Path), slog.String("op", ev.Op.String()))
		return nil, nil
	}

	r.logger.Debug("route file changed", slog.String("path", ev.Path), slog.String("op", ev.Op.String()))
	return r.generate(ctx, r.resolver.Routes())
}

// Check resolves every route and returns the final routes without writing.
func (r *Runner) Check(ctx context.Context) ([]ir.FinalRoute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes, err := r.resolver.ResolveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve routes: %w", err)
	}
	return ir.Flatten(routes, r.cfg.Routes), nil
}

func (r *Runner) generate(ctx context.Context, routes []ir.Route) (*typescript.GenerateResult, error) {
	result, err := r.gen.Generate(ctx, routes, typescript.GenerateOptions{
		Sink:   r.sink,
		Config: r.cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	for _, p := range result.Removed {
		r.logger.Info("removed stale route module", slog.String("path", p))
	}
	r.logger.Info("generated routes",
		slog.String("module", r.cfg.ModuleName),
		slog.Int("routes", len(result.Routes)),
		slog.Int("files", len(result.Files)),
	)
	return result, nil
}
