package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/five82/vws/internal/state"
	"github.com/five82/vws/internal/ui"
	"github.com/five82/vws/vws"
)

type command struct {
	summary string
	run     func(ctx context.Context, r *runner, args []string) error
}

var commands = map[string]command{
	"add":            {"upload a new target", runAdd},
	"get":            {"show a target record", runGet},
	"update":         {"change target fields", runUpdate},
	"delete":         {"delete a target", runDelete},
	"list":           {"list target ids", runList},
	"summary":        {"show the database summary report", runSummary},
	"target-summary": {"show a target summary report", runTargetSummary},
	"duplicates":     {"list likely duplicates of a target", runDuplicates},
	"wait":           {"wait until a target finishes processing", runWait},
	"query":          {"match an image against the cloud database", runQuery},
	"vumark":         {"generate a VuMark instance", runVuMark},
}

func newFlagSet(r *runner, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.opts.Stderr)
	return fs
}

// parse parses args and returns exactly want positional arguments.
func parse(fs *flag.FlagSet, args []string, want ...string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	rest := fs.Args()
	if len(rest) != len(want) {
		return nil, fmt.Errorf("%w: %s expects %s", ErrUsage, fs.Name(), strings.Join(want, " "))
	}
	return rest, nil
}

func openImage(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: -image is required", ErrUsage)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

func metadataFlag(inline, file string) ([]byte, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("%w: -metadata and -metadata-file are exclusive", ErrUsage)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		return data, nil
	case inline != "":
		return []byte(inline), nil
	}
	return nil, nil
}

func runAdd(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "add")
	name := fs.String("name", "", "target name")
	width := fs.Float64("width", 1, "target width in scene units")
	imagePath := fs.String("image", "", "path to a JPEG or PNG image")
	inactive := fs.Bool("inactive", false, "upload the target inactive")
	meta := fs.String("metadata", "", "application metadata")
	metaFile := fs.String("metadata-file", "", "read application metadata from a file")
	wait := fs.Bool("wait", false, "wait for processing to finish")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	metadata, err := metadataFlag(*meta, *metaFile)
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	img, err := openImage(*imagePath)
	if err != nil {
		return err
	}
	defer func() { _ = img.Close() }()

	id, err := client.AddTarget(ctx, vws.AddTargetRequest{
		Name:                *name,
		Width:               *width,
		Image:               img,
		Active:              !*inactive,
		ApplicationMetadata: metadata,
	})
	if err != nil {
		return err
	}
	r.logger.Info("target created", "target_id", id, "name", *name)

	if !*wait {
		return r.emit(map[string]string{"target_id": id}, r.renderer.Created(id))
	}
	if !r.opts.JSON {
		if err := r.emit(nil, r.renderer.Created(id)); err != nil {
			return err
		}
	}
	return r.waitFor(ctx, client, id, r.cfg.WaitOptions())
}

func runGet(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "get")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	rec, err := client.GetTargetRecord(ctx, rest[0])
	if err != nil {
		return err
	}
	return r.emit(rec, r.renderer.Record(rec))
}

func runUpdate(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "update")
	name := fs.String("name", "", "new target name")
	width := fs.Float64("width", 0, "new target width")
	imagePath := fs.String("image", "", "path to a replacement image")
	active := fs.Bool("active", true, "set the active flag")
	meta := fs.String("metadata", "", "replacement application metadata")
	metaFile := fs.String("metadata-file", "", "read replacement metadata from a file")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var req vws.UpdateTargetRequest
	if set["name"] {
		req.Name = name
	}
	if set["width"] {
		req.Width = width
	}
	if set["active"] {
		req.Active = active
	}
	if req.ApplicationMetadata, err = metadataFlag(*meta, *metaFile); err != nil {
		return err
	}

	client, err := r.managementClient()
	if err != nil {
		return err
	}
	if set["image"] {
		img, err := openImage(*imagePath)
		if err != nil {
			return err
		}
		defer func() { _ = img.Close() }()
		req.Image = img
	}

	if err := client.UpdateTarget(ctx, rest[0], req); err != nil {
		return err
	}
	return r.emit(map[string]string{"target_id": rest[0]}, r.renderer.Done("updated "+rest[0]))
}

func runDelete(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "delete")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	if err := client.DeleteTarget(ctx, rest[0]); err != nil {
		return err
	}
	return r.emit(map[string]string{"target_id": rest[0]}, r.renderer.Done("deleted "+rest[0]))
}

func runList(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "list")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	ids, err := client.ListTargets(ctx)
	if err != nil {
		return err
	}
	return r.emit(ids, r.renderer.IDs("targets", ids))
}

func runSummary(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "summary")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	report, err := client.GetDatabaseSummaryReport(ctx)
	if err != nil {
		return err
	}
	return r.emit(report, r.renderer.DatabaseSummary(report))
}

func runTargetSummary(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "target-summary")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	report, err := client.GetTargetSummaryReport(ctx, rest[0])
	if err != nil {
		return err
	}
	return r.emit(report, r.renderer.TargetSummary(report))
}

func runDuplicates(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "duplicates")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	ids, err := client.GetDuplicateTargets(ctx, rest[0])
	if err != nil {
		return err
	}
	return r.emit(ids, r.renderer.IDs("duplicates of "+rest[0], ids))
}

func runWait(ctx context.Context, r *runner, args []string) error {
	defaults := r.cfg.WaitOptions()
	fs := newFlagSet(r, "wait")
	interval := fs.Duration("interval", defaults.PollInterval, "pause between polls")
	timeout := fs.Duration("timeout", defaults.Timeout, "give up after this long")
	maxAttempts := fs.Int("max-attempts", defaults.MaxAttempts, "give up after this many polls")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}
	return r.waitFor(ctx, client, rest[0], vws.WaitOptions{
		PollInterval: *interval,
		Timeout:      *timeout,
		MaxAttempts:  *maxAttempts,
	})
}

// runWaitView is swapped out in tests, which have no terminal.
var runWaitView = ui.RunWait

// waitFor blocks until targetID leaves processing. Interactive sessions get
// the animated view; everything else gets a log line per poll.
func (r *runner) waitFor(ctx context.Context, client *vws.Client, targetID string, opts vws.WaitOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !r.opts.Interactive || r.opts.JSON {
		opts.OnPoll = func(attempt int, status vws.TargetStatus) {
			r.logger.Info("polled target", "target_id", targetID, "attempt", attempt, "status", string(status))
		}
	}

	store := &state.Store{}
	done := StartWait(ctx, store, client, targetID, opts)

	if r.opts.Interactive && !r.opts.JSON {
		stopped, err := runWaitView(ui.WaitOptions{
			Store:     store,
			ThemeName: r.cfg.Theme,
			Cancel:    cancel,
		})
		if err != nil {
			cancel()
			<-done
			return fmt.Errorf("wait view: %w", err)
		}
		if stopped {
			cancel()
			<-done
			r.logger.Info("stopped waiting", "target_id", targetID, "polls", store.Snapshot().Attempts())
			return nil
		}
	}

	res := <-done
	if res.err != nil {
		return res.err
	}
	return r.emit(res.record, r.renderer.Record(res.record))
}

func runQuery(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "query")
	imagePath := fs.String("image", "", "path to the query image")
	maxResults := fs.Int("max", vws.DefaultMaxNumResults, "maximum number of matches (1-50)")
	include := fs.String("include", string(vws.IncludeTop), "target data to include: top, none or all")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	client, err := r.cloudRecoClient()
	if err != nil {
		return err
	}
	img, err := openImage(*imagePath)
	if err != nil {
		return err
	}
	defer func() { _ = img.Close() }()

	results, err := client.Query(ctx, img, vws.QueryOptions{
		MaxNumResults:     *maxResults,
		IncludeTargetData: vws.IncludeTargetData(*include),
	})
	if err != nil {
		return err
	}
	return r.emit(results, r.renderer.Matches(results))
}

var vumarkFormats = map[string]vws.VuMarkFormat{
	"png": vws.VuMarkPNG,
	"svg": vws.VuMarkSVG,
	"pdf": vws.VuMarkPDF,
}

func runVuMark(ctx context.Context, r *runner, args []string) error {
	fs := newFlagSet(r, "vumark")
	instance := fs.String("instance", "", "instance id to encode")
	format := fs.String("format", "png", "output format: png, svg or pdf")
	out := fs.String("out", "", "output file, - for stdout (default <instance>.<format>)")
	rest, err := parse(fs, args, "<target-id>")
	if err != nil {
		return err
	}
	accept, ok := vumarkFormats[strings.ToLower(*format)]
	if !ok {
		return fmt.Errorf("%w: unknown format %q", ErrUsage, *format)
	}
	client, err := r.managementClient()
	if err != nil {
		return err
	}

	data, err := client.GenerateVuMarkInstance(ctx, rest[0], *instance, accept)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Clean(*instance + "." + strings.ToLower(*format))
	}
	if path == "-" {
		_, err := r.opts.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write instance: %w", err)
	}
	r.logger.Info("vumark instance written", "path", path, "bytes", len(data))
	return r.emit(map[string]any{"path": path, "bytes": len(data)}, r.renderer.Done("wrote "+path))
}

// IsUsage reports whether err came from bad command line input.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, flag.ErrHelp)
}
