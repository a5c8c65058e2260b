// Command oxylayout resolves the vertex input structs of WGSL shaders into packed
// vertex buffer layouts and prints them.
//
// Usage:
//
//	oxylayout [options] <file.wgsl>...
//
// Examples:
//
//	oxylayout mesh.wgsl                     # Print the layout of every vertex input struct
//	oxylayout -check mesh.wgsl              # Also check the layouts against the vertex entry point
//	oxylayout -backend wgpu mesh.wgsl       # Fail on formats WebGPU cannot express
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-layout/common"
	"github.com/Carmen-Shannon/oxy-layout/engine/catalog"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout"
	"github.com/Carmen-Shannon/oxy-layout/engine/layout/backend"
	"github.com/Carmen-Shannon/oxy-layout/engine/renderer/shader"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// options holds the parsed command line.
type options struct {
	entry   string
	check   bool
	verbose bool
	backend string
	workers int
	files   []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	color := term.IsTerminal(int(os.Stdout.Fd()))
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, color)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code: 0 on success, 1 when any
// shader or layout failed, 2 on usage errors.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, color bool) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	logger := zap.NewNop()
	if opts.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
			return 1
		}
		defer func() { _ = logger.Sync() }()
	}
	layout.SetLogger(logger)
	defer layout.SetLogger(nil)

	st := newStyles(color)
	catOpts := []catalog.CatalogBuilderOption{catalog.WithLogger(logger)}
	if opts.workers > 0 {
		catOpts = append(catOpts, catalog.WithWorkers(opts.workers))
	}
	cat := catalog.NewCatalog(catOpts...)
	failed := false

	shaders := make([]shader.Shader, 0, len(opts.files))
	for _, path := range opts.files {
		s, err := shader.NewShaderFromPath(path)
		if err != nil {
			fmt.Fprintln(stdout, st.err.Render(err.Error()))
			failed = true
			continue
		}
		for _, r := range s.Records() {
			if err := cat.Register(recordName(s, r), r); err != nil {
				fmt.Fprintln(stdout, st.err.Render(err.Error()))
				failed = true
			}
		}
		shaders = append(shaders, s)
	}

	// Per-record errors are reported below next to each record.
	if err := cat.Compile(ctx); err != nil {
		failed = true
		logger.Debug("compile finished with errors", zap.Error(err))
	}

	for _, s := range shaders {
		if !report(stdout, st, cat, s, opts) {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// parseFlags parses the command line in the style of nagac.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("oxylayout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.entry, "entry", "", "vertex entry point to check (default: first @vertex function)")
	fs.BoolVar(&opts.check, "check", false, "check the layouts against the vertex entry point inputs")
	fs.BoolVar(&opts.verbose, "v", false, "log resolver and catalog activity to stderr")
	fs.StringVar(&opts.backend, "backend", "", "also build each layout for a backend: wgpu, gputypes or vulkan")
	fs.IntVar(&opts.workers, "workers", 0, "resolver workers (default: one less than the CPU count)")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 {
		fmt.Fprintln(stderr, "Error: no input file specified")
		usage(fs)
		return options{}, flag.ErrHelp
	}
	switch opts.backend {
	case "", "wgpu", "gputypes", "vulkan":
	default:
		fmt.Fprintf(stderr, "Error: unknown backend %q\n", opts.backend)
		return options{}, flag.ErrHelp
	}
	return opts, nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: oxylayout [options] <file.wgsl>...\n\n")
	fmt.Fprintf(out, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(out, "\nExamples:\n")
	fmt.Fprintf(out, "  oxylayout mesh.wgsl                Print vertex layouts\n")
	fmt.Fprintf(out, "  oxylayout -check mesh.wgsl         Check layouts against the entry point\n")
	fmt.Fprintf(out, "  oxylayout -backend vulkan a.wgsl   Build Vulkan vertex input descriptions\n")
}

// recordName is the catalog name of a record: the shader key and the struct name.
func recordName(s shader.Shader, r shader.Record) string {
	return s.Key() + ":" + r.Name
}

// report prints every record of s and runs the optional backend build and interface
// check. It returns false when anything failed.
func report(w io.Writer, st styles, cat catalog.Catalog, s shader.Shader, opts options) bool {
	ok := true
	records := s.Records()
	if len(records) == 0 {
		fmt.Fprintln(w, st.dim.Render(s.Key()+": no vertex input structs"))
		return true
	}

	layouts := make([]layout.ResolvedLayout, 0, len(records))
	for _, r := range records {
		name := recordName(s, r)
		fmt.Fprintln(w, st.title.Render(name))

		l, found := cat.Layout(name)
		if !found {
			if err := cat.Err(name); err != nil {
				fmt.Fprintln(w, st.err.Render(err.Error()))
			}
			ok = false
			continue
		}
		layouts = append(layouts, l)
		fmt.Fprint(w, l.String())

		if opts.backend != "" {
			if err := buildFor(opts.backend, l); err != nil {
				fmt.Fprintln(w, st.err.Render(err.Error()))
				ok = false
			} else {
				fmt.Fprintln(w, st.ok.Render(opts.backend+": ok"))
			}
		}
	}

	if opts.check && len(layouts) == len(records) {
		entry := common.Coalesce(opts.entry, s.EntryPoint())
		if err := shader.CheckLayout(s.Source(), entry, layouts...); err != nil {
			fmt.Fprintln(w, st.err.Render(fmt.Sprintf("%s: %v", s.Key(), err)))
			ok = false
		} else {
			fmt.Fprintln(w, st.ok.Render(fmt.Sprintf("%s: %s inputs ok", s.Key(), entry)))
		}
	}
	return ok
}

// buildFor renders l with the named backend and discards the descriptor.
func buildFor(name string, l layout.ResolvedLayout) error {
	var err error
	switch name {
	case "wgpu":
		_, err = backend.NewWGPUBackend().Build(l)
	case "gputypes":
		_, err = backend.NewGPUTypesBackend().Build(l)
	case "vulkan":
		_, err = backend.NewVulkanBackend(0).Build(l)
	}
	return err
}
