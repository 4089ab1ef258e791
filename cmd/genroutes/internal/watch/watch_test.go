package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

type call struct {
	path    string
	removed bool
}

type fakeSession struct {
	runs    int
	changes []call
	err     error
}

func (s *fakeSession) Run(context.Context) (*typescript.GenerateResult, error) {
	s.runs++
	return &typescript.GenerateResult{}, nil
}

func (s *fakeSession) Changed(_ context.Context, relPath string, removed bool) (*typescript.GenerateResult, error) {
	s.changes = append(s.changes, call{relPath, removed})
	return nil, s.err
}

type fakeWatcher struct {
	added []string
}

func (w *fakeWatcher) Add(name string) error {
	w.added = append(w.added, name)
	return nil
}

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func writeFile(t *testing.T, p string) {
	t.Helper()
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func newLoop(t *testing.T) (*Loop, *fakeSession, *fakeWatcher, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	mkdirs(t, root, "about", "api/v1")

	session := &fakeSession{}
	watcher := &fakeWatcher{}
	logs := &bytes.Buffer{}
	l := &Loop{
		Session:   session,
		RoutesDir: root,
		Watcher:   watcher,
		Logger:    slog.New(slog.NewTextHandler(logs, nil)),
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return l, session, watcher, logs
}

// serve feeds events to the loop and waits until all were handled.
func serve(t *testing.T, l *Loop, events ...fsnotify.Event) {
	t.Helper()
	ch := make(chan fsnotify.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	if err := l.Serve(context.Background(), ch, nil); err != nil {
		t.Fatalf("Serve: %v", err)
	}
}

func TestStartWatchesEveryDirectory(t *testing.T) {
	l, session, watcher, _ := newLoop(t)

	var rel []string
	for _, d := range watcher.added {
		r, _ := filepath.Rel(l.RoutesDir, d)
		rel = append(rel, filepath.ToSlash(r))
	}
	slices.Sort(rel)
	if got := strings.Join(rel, " "); got != ". about api api/v1" {
		t.Errorf("watched %q", got)
	}
	if session.runs != 1 {
		t.Errorf("got %d runs, want 1", session.runs)
	}
}

func TestServe(t *testing.T) {
	l, session, watcher, _ := newLoop(t)
	root := l.RoutesDir

	// A new directory with a file created before it was watched.
	mkdirs(t, root, "blog/[slug]")
	writeFile(t, filepath.Join(root, "blog", "[slug]", "+page.svelte"))
	writeFile(t, filepath.Join(root, "about", "+page.svelte"))

	serve(t, l,
		fsnotify.Event{Name: filepath.Join(root, "about", "+page.svelte"), Op: fsnotify.Create},
		fsnotify.Event{Name: filepath.Join(root, "about", "+page.svelte"), Op: fsnotify.Write},
		fsnotify.Event{Name: filepath.Join(root, "blog"), Op: fsnotify.Create},
		fsnotify.Event{Name: filepath.Join(root, "api", "+server.ts"), Op: fsnotify.Remove},
		fsnotify.Event{Name: filepath.Join(root, "about", "old.svelte"), Op: fsnotify.Rename},
		fsnotify.Event{Name: filepath.Join(root, "vanished"), Op: fsnotify.Create},
		fsnotify.Event{Name: filepath.Join(root, "api", "+server.ts"), Op: fsnotify.Chmod},
	)

	want := []call{
		{"about/+page.svelte", false},
		{"about/+page.svelte", false},
		{"blog/[slug]/+page.svelte", false},
		{"api/+server.ts", true},
		{"about/old.svelte", true},
	}
	if !slices.Equal(session.changes, want) {
		t.Errorf("changes = %v, want %v", session.changes, want)
	}
	if !l.dirs[filepath.Join(root, "blog", "[slug]")] {
		t.Error("new subdirectory is not watched")
	}
	if len(watcher.added) != 6 {
		t.Errorf("got %d watched dirs, want 6", len(watcher.added))
	}
}

func TestServeRemovedDirectory(t *testing.T) {
	l, session, _, _ := newLoop(t)
	api := filepath.Join(l.RoutesDir, "api")
	if err := os.RemoveAll(api); err != nil {
		t.Fatal(err)
	}

	serve(t, l, fsnotify.Event{Name: api, Op: fsnotify.Remove})

	if session.runs != 2 {
		t.Errorf("got %d runs, want a full run after the directory removal", session.runs)
	}
	if l.dirs[api] || l.dirs[filepath.Join(api, "v1")] {
		t.Error("removed directories are still tracked")
	}
	if len(session.changes) != 0 {
		t.Errorf("unexpected changes %v", session.changes)
	}
}

func TestServeLogsErrors(t *testing.T) {
	l, session, _, logs := newLoop(t)
	session.err = errors.New("boom")
	writeFile(t, filepath.Join(l.RoutesDir, "+server.ts"))

	serve(t, l, fsnotify.Event{Name: filepath.Join(l.RoutesDir, "+server.ts"), Op: fsnotify.Write})

	if !strings.Contains(logs.String(), "generation failed") || !strings.Contains(logs.String(), "boom") {
		t.Errorf("error not logged:\n%s", logs.String())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	l, _, _, _ := newLoop(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Serve(ctx, make(chan fsnotify.Event), make(chan error)); err != nil {
		t.Errorf("Serve: %v", err)
	}
}
