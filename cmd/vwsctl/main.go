package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/five82/vws/internal/app"
	"github.com/five82/vws/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (default ~/.config/vws/config.toml)")
	envFile := flag.String("env", "", "load environment variables from this file (default ./.env if present)")
	jsonOut := flag.Bool("json", false, "print results as JSON")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	theme := flag.String("theme", "", "color theme: "+strings.Join(ui.ThemeNames(), ", "))
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), app.Usage())
		fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath:  *configPath,
		EnvFile:     *envFile,
		JSON:        *jsonOut,
		LogLevel:    *logLevel,
		Theme:       *theme,
		Interactive: isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd()),
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}

	if err := app.Run(ctx, opts, flag.Args()); err != nil {
		fmt.Fprint(os.Stderr, app.RenderError(*theme, err))
		if app.IsUsage(err) {
			return 2
		}
		return 1
	}
	return 0
}
