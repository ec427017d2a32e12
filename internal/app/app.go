package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/five82/vws/internal/config"
	"github.com/five82/vws/internal/ui"
	"github.com/five82/vws/vws"
)

// ErrUsage marks errors caused by bad command line input.
var ErrUsage = errors.New("usage")

// Options configure a vwsctl invocation.
type Options struct {
	ConfigPath string
	EnvFile    string // empty loads ./.env when present
	JSON       bool
	LogLevel   string // overrides the config file
	Theme      string // overrides the config file

	// Interactive enables the animated wait view.
	Interactive bool

	Stdout io.Writer
	Stderr io.Writer
}

// runner carries what every subcommand needs.
type runner struct {
	cfg      config.Config
	opts     Options
	logger   *slog.Logger
	renderer ui.Renderer
}

// Run executes the subcommand named by args[0].
func Run(ctx context.Context, opts Options, args []string) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if err := loadEnv(opts.EnvFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Theme != "" {
		if !slices.Contains(ui.ThemeNames(), opts.Theme) {
			return fmt.Errorf("%w: unknown theme %q (available: %s)", ErrUsage, opts.Theme, strings.Join(ui.ThemeNames(), ", "))
		}
		cfg.Theme = opts.Theme
	}

	logger, err := newLogger(opts.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: missing command\n%s", ErrUsage, Usage())
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], Usage())
	}

	r := &runner{
		cfg:      cfg,
		opts:     opts,
		logger:   logger,
		renderer: ui.NewRenderer(cfg.Theme),
	}
	return cmd.run(ctx, r, args[1:])
}

// Usage lists the available subcommands.
func Usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: vwsctl [flags] <command> [args]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-15s %s\n", name, commands[name].summary)
	}
	return b.String()
}

func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrUsage, level)
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "vwsctl",
		ReportTimestamp: lvl <= log.DebugLevel,
	})
	return slog.New(handler), nil
}

func (r *runner) managementClient() (*vws.Client, error) {
	if err := r.cfg.RequireServerKeys(); err != nil {
		return nil, err
	}
	cfg := r.cfg.ManagementConfig()
	cfg.Logger = r.logger
	return vws.NewClient(cfg)
}

func (r *runner) cloudRecoClient() (*vws.CloudRecoClient, error) {
	if err := r.cfg.RequireClientKeys(); err != nil {
		return nil, err
	}
	cfg := r.cfg.CloudRecoConfig()
	cfg.Logger = r.logger
	return vws.NewCloudRecoClient(cfg)
}

// emit writes value as JSON in -json mode and text otherwise.
func (r *runner) emit(value any, text string) error {
	if r.opts.JSON {
		enc := json.NewEncoder(r.opts.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	_, err := io.WriteString(r.opts.Stdout, text)
	return err
}

// RenderError formats err for the terminal.
func RenderError(themeName string, err error) string {
	return ui.NewRenderer(themeName).Error(err)
}
