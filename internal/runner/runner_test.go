package runner

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fehnomenal/sveltekit-gen-routes/internal/routetest"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/sink"
	"github.com/fehnomenal/sveltekit-gen-routes/routegen/typescript"
)

const fixture = `
-- about/+page.svelte --
-- api/[...path]/+server.ts --
export const GET = () => new Response();
-- posts/[id=int]/+page.server.ts --
export const actions = { default: async () => {} };
`

type harness struct {
	runner *Runner
	fsys   fstest.MapFS
	mem    *sink.MemorySink
	logs   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fsys: routetest.Parse(t, fixture),
		mem:  sink.NewMemorySink(),
		logs: &bytes.Buffer{},
	}
	r, err := New(Options{
		Routes:         h.fsys,
		ForceRootRoute: true,
		Config: typescript.GeneratorConfig{
			ModuleName:    "$routes",
			HelpersModule: typescript.DefaultHelpersModule,
			TypesModule:   typescript.DefaultTypesModule,
			MatchersDir:   "params",
			LineEnding:    "lf",
		},
		Sink:   h.mem,
		Logger: slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.runner = r
	return h
}

func TestRun(t *testing.T) {
	h := newHarness(t)

	result, err := h.runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// about, root page, api GET, posts default action.
	if got := len(result.Routes); got != 4 {
		t.Errorf("got %d final routes, want 4", got)
	}
	for _, p := range []string{"$routes.js", "$routes.d.ts", "$routes/about.js", "$routes/_ROOT.js", "$routes/api_path.js", "$routes/posts_id_int.js"} {
		if h.mem.Get(p) == nil {
			t.Errorf("missing generated file %s", p)
		}
	}
	if !strings.Contains(h.logs.String(), "generated routes") {
		t.Errorf("expected a generation log line, got:\n%s", h.logs.String())
	}
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if _, err := h.runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	tests := []struct {
		name      string
		setup     func()
		ev        Event
		wantNil   bool
		wantFile  string
		wantGone  string
		wantInMod string
	}{
		{
			name:    "unrelated file",
			setup:   func() { h.fsys["about/Card.svelte"] = &fstest.MapFile{} },
			ev:      Event{Path: "about/Card.svelte"},
			wantNil: true,
		},
		{
			name:      "new endpoint",
			setup:     func() { h.fsys["health/+server.js"] = &fstest.MapFile{Data: []byte("export const HEAD = () => {};\n")} },
			ev:        Event{Path: "health/+server.js"},
			wantFile:  "$routes/health.js",
			wantInMod: "SERVER_health_HEAD",
		},
		{
			name:     "removed endpoint",
			setup:    func() { delete(h.fsys, "api/[...path]/+server.ts") },
			ev:       Event{Path: "api/[...path]/+server.ts", Op: OpRemove},
			wantGone: "$routes/api_path.js",
		},
		{
			name:    "removing an unknown endpoint",
			setup:   func() {},
			ev:      Event{Path: "nope/+server.ts", Op: OpRemove},
			wantNil: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			result, err := h.runner.Handle(ctx, tt.ev)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if tt.wantNil {
				if result != nil {
					t.Errorf("expected no regeneration, got %+v", result)
				}
				return
			}
			if result == nil {
				t.Fatal("expected a regeneration")
			}
			if tt.wantFile != "" && h.mem.Get(tt.wantFile) == nil {
				t.Errorf("missing %s", tt.wantFile)
			}
			if tt.wantGone != "" && h.mem.Get(tt.wantGone) != nil {
				t.Errorf("%s was not removed", tt.wantGone)
			}
			if tt.wantInMod != "" && !strings.Contains(string(h.mem.Get("$routes.js")), tt.wantInMod) {
				t.Errorf("index module lacks %s", tt.wantInMod)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if _, err := h.runner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	h.fsys["bad/+page.server.ts"] = &fstest.MapFile{Data: []byte("const a = {};\nexport const actions = { ...a };\n")}

	_, err := h.runner.Handle(ctx, Event{Path: "bad/+page.server.ts"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "write bad/+page.server.ts") {
		t.Errorf("error lacks context: %v", err)
	}
}

func TestCheck(t *testing.T) {
	h := newHarness(t)

	routes, err := h.runner.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	var ids []string
	for _, r := range routes {
		ids = append(ids, r.Identifier())
	}
	slices.Sort(ids)
	want := "ACTION_posts_id_int_default PAGE__ROOT PAGE_about SERVER_api_path_GET"
	if got := strings.Join(ids, " "); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(h.mem.Files()) != 0 {
		t.Errorf("Check wrote files: %v", h.mem.Files())
	}
}

func TestNewRequiresSink(t *testing.T) {
	if _, err := New(Options{Routes: fstest.MapFS{}}); err == nil {
		t.Error("expected an error without a sink")
	}
}
