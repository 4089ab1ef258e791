package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/flags"
	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/status"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/sink"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

type Cmd struct {
	flags.Project `embed:""`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := c.Generator(logger)
	if err != nil {
		return err
	}
	cfg := g.Config()
	session, err := g.Session(sink.NewFilesystemSink(cfg.OutputDir))
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	l := &Loop{
		Session:   session,
		RoutesDir: cfg.RoutesDir,
		Watcher:   w,
		Logger:    logger,
	}
	if err := l.Start(ctx); err != nil {
		return err
	}
	status.Success(os.Stdout, "Watching %s", cfg.RoutesDir)

	return l.Serve(ctx, w.Events, w.Errors)
}

// Watcher is the part of *fsnotify.Watcher the loop needs.
type Watcher interface {
	Add(name string) error
}

// Session is the part of *routegen.Session the loop needs.
type Session interface {
	Run(ctx context.Context) (*typescript.GenerateResult, error)
	Changed(ctx context.Context, relPath string, removed bool) (*typescript.GenerateResult, error)
}

var _ Session = (*routegen.Session)(nil)

// Loop regenerates routes as files in the routes directory change.
// Generation errors are logged and watching continues.
type Loop struct {
	Session   Session
	RoutesDir string
	Watcher   Watcher
	Logger    *slog.Logger

	// dirs are the watched directories.
	dirs map[string]bool
}

// Start watches every directory below RoutesDir and runs a full generation.
func (l *Loop) Start(ctx context.Context) error {
	l.RoutesDir = filepath.Clean(l.RoutesDir)
	l.dirs = make(map[string]bool)
	if err := l.addTree(l.RoutesDir, nil); err != nil {
		return err
	}
	_, err := l.Session.Run(ctx)
	return err
}

// Serve handles events until ctx is done or events is closed.
func (l *Loop) Serve(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.Logger.Error("watch error", slog.Any("error", err))
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(ctx, ev)
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev fsnotify.Event) {
	rel, err := filepath.Rel(l.RoutesDir, ev.Name)
	if err != nil || rel == "." {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		if l.dirs[ev.Name] {
			// A removed directory takes its route files with it.
			l.forgetTree(ev.Name)
			l.report(l.Session.Run(ctx))
			return
		}
		l.report(l.Session.Changed(ctx, rel, true))

	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			// Files may have been created before the directory was watched.
			var created []string
			if err := l.addTree(ev.Name, &created); err != nil {
				l.Logger.Error("watch directory", slog.String("path", ev.Name), slog.Any("error", err))
			}
			for _, f := range created {
				l.changed(ctx, f)
			}
			return
		}
		l.changed(ctx, ev.Name)

	case ev.Has(fsnotify.Write):
		l.changed(ctx, ev.Name)
	}
}

func (l *Loop) changed(ctx context.Context, name string) {
	rel, err := filepath.Rel(l.RoutesDir, name)
	if err != nil {
		return
	}
	l.report(l.Session.Changed(ctx, filepath.ToSlash(rel), false))
}

func (l *Loop) report(_ *typescript.GenerateResult, err error) {
	if err != nil {
		l.Logger.Error("generation failed", slog.Any("error", err))
	}
}

// addTree watches root and every directory below it. Regular files found on
// the way are appended to files when it is not nil.
func (l *Loop) addTree(root string, files *[]string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if files != nil {
				*files = append(*files, p)
			}
			return nil
		}
		if err := l.Watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		l.dirs[p] = true
		return nil
	})
}

func (l *Loop) forgetTree(root string) {
	prefix := root + string(filepath.Separator)
	for d := range l.dirs {
		if d == root || strings.HasPrefix(d, prefix) {
			delete(l.dirs, d)
		}
	}
}
