// Command genroutes generates typed SvelteKit route helpers from a routes
// directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/check"
	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/gen"
	"github.com/fehnomenal/sveltekit-gen-routes/cmd/genroutes/internal/watch"
)

type CLI struct {
	LogLevel string `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"GENROUTES_LOG_LEVEL"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" default:"withargs" help:"Generate the route module."`
	Watch   watch.Cmd  `cmd:"" help:"Regenerate the route module when route files change."`
	Check   check.Cmd  `cmd:"" help:"Resolve routes and list them without writing files."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cli := &CLI{}
	k := kong.Parse(cli,
		kong.Name("genroutes"),
		kong.Description("Typed route helpers for SvelteKit projects."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.LogLevel)
	slog.SetDefault(logger)

	k.Bind(logger)
	k.BindTo(context.Background(), (*context.Context)(nil))
	k.FatalIfErrorf(k.Run())
}
