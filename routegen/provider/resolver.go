package provider

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fehnomenal/sveltekit-gen-routes/internal/discover"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/ir"
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Extractor reads exported names from endpoints and page server scripts.
	// If nil, a TreeSitterExtractor with the default cache size is used.
	Extractor Extractor

	// ForceRootRoute adds the root page "/" even when the routes directory
	// does not define it.
	ForceRootRoute bool
}

// Resolver owns the route descriptors of one routes directory. Descriptors
// are identified by variant and route id; a page defined by both a component
// and a script yields a single descriptor.
//
// All methods are safe for concurrent use.
type Resolver struct {
	fsys      fs.FS
	extractor Extractor
	forceRoot bool

	mu     sync.Mutex
	routes []ir.Route
}

// NewResolver returns a resolver reading route files from fsys, the routes
// directory.
func NewResolver(fsys fs.FS, opts ResolverOptions) (*Resolver, error) {
	if fsys == nil {
		return nil, fmt.Errorf("routes filesystem is required")
	}
	extractor := opts.Extractor
	if extractor == nil {
		e, err := NewTreeSitterExtractor(DefaultCacheSize)
		if err != nil {
			return nil, err
		}
		extractor = e
	}
	return &Resolver{
		fsys:      fsys,
		extractor: extractor,
		forceRoot: opts.ForceRootRoute,
	}, nil
}

// ResolveAll scans the whole routes directory and replaces the known routes.
// On error the previous routes are kept.
func (r *Resolver) ResolveAll(ctx context.Context) ([]ir.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.resolveAll(ctx); err != nil {
		return nil, err
	}
	return cloneRoutes(r.routes), nil
}

func (r *Resolver) resolveAll(ctx context.Context) error {
	files, err := discover.Find(r.fsys)
	if err != nil {
		return err
	}

	var routes []ir.Route
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if routes, err = r.resolve(ctx, routes, f); err != nil {
			return err
		}
	}
	if r.forceRoot {
		root := discover.File{Path: "+page.svelte", Type: discover.FileTypePageComponent}
		if routes, err = r.resolve(ctx, routes, root); err != nil {
			return err
		}
	}

	r.routes = routes
	return nil
}

// Update resolves the route file at relPath, relative to the routes
// directory, after it was created or changed. It reports false for files
// that do not define routes.
func (r *Resolver) Update(ctx context.Context, relPath string) (bool, error) {
	f := discover.File{Path: filepath.ToSlash(relPath)}
	if f.Type = discover.Classify(f.Path); f.Type == discover.FileTypeNone {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	routes, err := r.resolve(ctx, r.routes, f)
	if err != nil {
		return false, err
	}
	r.routes = routes
	return true, nil
}

// Remove drops the routes defined by the deleted file at relPath and reports
// whether the routes changed.
//
// Removing a page component or page script rescans the whole directory
// since the page may still be defined by the other file.
func (r *Resolver) Remove(ctx context.Context, relPath string) (bool, error) {
	f := discover.File{Path: filepath.ToSlash(relPath)}
	if f.Type = discover.Classify(f.Path); f.Type == discover.FileTypeNone {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f.Type == discover.FileTypePageComponent || f.Type == discover.FileTypePageScript {
		if err := r.resolveAll(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	variant, _ := f.Type.Variant()
	i := indexOf(r.routes, variant, f.RouteID())
	if i < 0 {
		return false, nil
	}
	r.routes = slices.Delete(r.routes, i, i+1)
	return true, nil
}

// Routes returns a copy of the known routes in resolution order.
func (r *Resolver) Routes() []ir.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneRoutes(r.routes)
}

// resolve creates or updates the descriptor of f in routes. Exported names
// are read before routes is touched, so a file that fails to parse leaves
// routes unchanged.
func (r *Resolver) resolve(ctx context.Context, routes []ir.Route, f discover.File) ([]ir.Route, error) {
	variant, ok := f.Type.Variant()
	if !ok {
		return routes, nil
	}
	id := f.RouteID()

	var names []string
	if f.Type.HasSource() {
		src, err := fs.ReadFile(r.fsys, f.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		if variant == ir.VariantServer {
			names, err = r.extractor.MethodNames(ctx, src)
		} else {
			names, err = r.extractor.ActionNames(ctx, src)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
	}

	i := indexOf(routes, variant, id)
	if i < 0 {
		route, err := ir.NewRoute(variant, id)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
		i = len(routes) - 1
	}

	switch variant {
	case ir.VariantServer:
		routes[i].Methods = names
	case ir.VariantAction:
		routes[i].Names = names
	}
	return routes, nil
}

func indexOf(routes []ir.Route, variant ir.Variant, id string) int {
	return slices.IndexFunc(routes, func(r ir.Route) bool {
		return r.Variant == variant && r.ID == id
	})
}

func cloneRoutes(routes []ir.Route) []ir.Route {
	out := make([]ir.Route, len(routes))
	for i, r := range routes {
		out[i] = r.Clone()
	}
	return out
}
