// Package typescript emits the JavaScript route modules and the ambient
// TypeScript declarations for a set of route descriptors.
package typescript

import (
	"context"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/sink"
)

// GenerateOptions configures generation behavior.
type GenerateOptions struct {
	// Sink receives generated output files.
	Sink sink.OutputSink

	// Config contains the generator configuration.
	Config GeneratorConfig
}

// GeneratorConfig configures the generated files.
type GeneratorConfig struct {
	// ModuleName is the import specifier of the index module, e.g. "$routes".
	// It also names the generated files: "<ModuleName>.js", "<ModuleName>.d.ts"
	// and the "<ModuleName>/" directory of route modules.
	ModuleName string

	// HelpersModule is the import specifier of the runtime helpers.
	HelpersModule string

	// TypesModule is the import specifier of the shared route types.
	TypesModule string

	// MatchersDir is the param matchers directory relative to the sink root.
	MatchersDir string

	// LineEnding is "lf" or "crlf".
	LineEnding string

	// EmitHelpers writes the runtime helper and type modules next to the
	// route modules. Route modules then import "./_helpers.js" instead of
	// HelpersModule and the declaration file takes its types from
	// "<ModuleName>/_types.d.ts" instead of TypesModule.
	EmitHelpers bool

	// Routes holds the per-route explicit query params.
	Routes ir.RoutesConfig
}

// GenerateResult contains generation output metadata.
type GenerateResult struct {
	// Files lists all files handed to the sink, in write order.
	Files []OutputFile

	// Routes lists the generated final routes.
	Routes []ir.FinalRoute

	// Removed lists stale route modules deleted from the sink.
	Removed []string
}

// OutputFile describes a generated file.
type OutputFile struct {
	// Path is the relative path of the generated file.
	Path string

	// Size is the number of bytes written.
	Size int64
}

// Base names of the emitted runtime files. Route keys never start with an
// underscore except for ir.RootKey, so these cannot clash with a route module.
const (
	helpersBase = "_helpers"
	typesBase   = "_types"
)

// RouteGenerator writes the index module, one module per route key and the
// declaration file.
type RouteGenerator struct{}

// IndexPath returns the path of the index module.
func (c GeneratorConfig) IndexPath() string {
	return c.ModuleName + ".js"
}

// DeclarationPath returns the path of the ambient declaration file.
func (c GeneratorConfig) DeclarationPath() string {
	return c.ModuleName + ".d.ts"
}

// ModulePath returns the path of the module of a route key.
func (c GeneratorConfig) ModulePath(key string) string {
	return path.Join(c.ModuleName, key+".js")
}

// Generate writes every file for routes to opts.Sink. When the sink can list
// and remove files, route modules of keys that no longer exist are deleted.
func (g *RouteGenerator) Generate(ctx context.Context, routes []ir.Route, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	cfg := opts.Config
	if cfg.ModuleName == "" {
		return nil, fmt.Errorf("module name is required")
	}

	helpersModule := cfg.HelpersModule
	if cfg.EmitHelpers {
		helpersModule = "./" + helpersBase + ".js"
	}

	result := &GenerateResult{
		Routes: ir.Flatten(routes, cfg.Routes),
	}
	le := LineTerminator(cfg.LineEnding)

	write := func(p string, lines []string) error {
		content := []byte(JoinLines(lines, le))
		if err := opts.Sink.WriteFile(ctx, p, content); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		result.Files = append(result.Files, OutputFile{Path: p, Size: int64(len(content))})
		return nil
	}

	// Descriptors without any final route get no module.
	keys, finalByKey := ir.GroupByRouteKey(result.Routes)
	slices.Sort(keys)

	byKey := make(map[string][]ir.Route, len(keys))
	for _, r := range routes {
		if _, ok := finalByKey[r.Key]; ok {
			byKey[r.Key] = append(byKey[r.Key], r)
		}
	}

	for _, key := range keys {
		lines := RouteModule(byKey[key], cfg.Routes, ModuleOptions{HelpersModule: helpersModule})
		if err := write(cfg.ModulePath(key), lines); err != nil {
			return nil, err
		}
	}

	if err := write(cfg.IndexPath(), IndexModule(routes, cfg.Routes, cfg.ModuleName)); err != nil {
		return nil, err
	}

	declOpts := DeclarationOptions{
		ModuleName:      cfg.ModuleName,
		DeclarationPath: cfg.DeclarationPath(),
		MatchersDir:     cfg.MatchersDir,
		TypesModule:     cfg.TypesModule,
	}
	if cfg.EmitHelpers {
		declOpts.TypesImport = "./" + path.Join(cfg.ModuleName, typesBase)
	}
	decl, err := DeclarationFile(routes, cfg.Routes, declOpts)
	if err != nil {
		return nil, err
	}
	if err := write(cfg.DeclarationPath(), decl); err != nil {
		return nil, err
	}

	if cfg.EmitHelpers {
		helpers := map[string][]string{
			path.Join(cfg.ModuleName, helpersBase+".js"):   HelpersModule(),
			path.Join(cfg.ModuleName, helpersBase+".d.ts"): HelpersDeclaration("./" + typesBase),
			path.Join(cfg.ModuleName, typesBase+".d.ts"):   TypesDeclaration(),
		}
		for _, p := range slices.Sorted(maps.Keys(helpers)) {
			if err := write(p, helpers[p]); err != nil {
				return nil, err
			}
		}
	}

	removed, err := pruneModules(ctx, opts.Sink, cfg, finalByKey)
	if err != nil {
		return nil, err
	}
	result.Removed = removed

	return result, nil
}

// pruneModules removes route modules of keys without final routes. The
// emitted helpers module is kept.
func pruneModules(ctx context.Context, out sink.OutputSink, cfg GeneratorConfig, byKey map[string][]ir.FinalRoute) ([]string, error) {
	lister, ok := out.(sink.Lister)
	if !ok {
		return nil, nil
	}
	remover, ok := out.(sink.Remover)
	if !ok {
		return nil, nil
	}

	files, err := lister.List(ctx, cfg.ModuleName)
	if err != nil {
		return nil, fmt.Errorf("list route modules: %w", err)
	}

	var removed []string
	for _, p := range files {
		key, ok := strings.CutSuffix(path.Base(p), ".js")
		if !ok || (cfg.EmitHelpers && key == helpersBase) {
			continue
		}
		if _, exists := byKey[key]; exists {
			continue
		}
		if err := remover.RemoveFile(ctx, p); err != nil {
			return removed, fmt.Errorf("remove stale module %s: %w", p, err)
		}
		removed = append(removed, p)
	}
	return removed, nil
}
