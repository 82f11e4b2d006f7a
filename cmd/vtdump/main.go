// Command vtdump loads HCL scene files, resolves every buffer source they
// declare and prints a summary of each.
//
// Usage:
//
//	vtdump [-workers N] [-double] [-layout] [-v] file.hcl|dir...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/vtbuf"
	"github.com/gogpu/vtbuf/internal/ctxlog"
	"github.com/gogpu/vtbuf/internal/parallel"
	"github.com/gogpu/vtbuf/scenefile"
)

type options struct {
	workers int
	double  bool
	layout  bool
	verbose bool
	paths   []string
}

func main() {
	var opts options
	flag.IntVar(&opts.workers, "workers", 0, "resolver goroutines (0 = GOMAXPROCS)")
	flag.BoolVar(&opts.double, "double", false, "use double precision matrices")
	flag.BoolVar(&opts.layout, "layout", false, "print the interleaved vertex buffer layout")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file.hcl|dir...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.paths = flag.Args()
	if len(opts.paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, opts); err != nil {
		fmt.Fprintln(os.Stderr, "vtdump:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	vtbuf.SetLogger(logger)
	ctx = ctxlog.WithLogger(ctx, logger)

	if opts.double {
		if err := vtbuf.SetDoublePrecisionMatrices(true); err != nil {
			return err
		}
	}

	scene, err := scenefile.Load(ctx, opts.paths...)
	if err != nil {
		return err
	}

	pool := parallel.NewPool(opts.workers)
	defer pool.Close()

	res, err := pool.ResolveAll(ctx, scene.Sources())
	if err != nil {
		return err
	}

	for _, src := range scene.Sources() {
		fmt.Fprintln(stdout, src)
	}
	fmt.Fprintf(stdout, "\n%d resolved, %d invalid, matrices %s\n",
		res.Resolved, len(scene.Invalid()), vtbuf.DefaultMatrixType())

	if opts.layout {
		if err := printLayout(stdout, stderr, scene.Specs()); err != nil {
			return err
		}
	}

	if n := len(res.Failed); n > 0 {
		return fmt.Errorf("%d sources failed to resolve: %v", n, res.Failed)
	}
	return nil
}

// printLayout prints the vertex layout of every spec that has a vertex
// format. Others, such as double precision matrices, are noted on stderr.
func printLayout(w, stderr io.Writer, specs vtbuf.BufferSpecs) error {
	var vertex vtbuf.BufferSpecs
	for _, spec := range specs {
		if _, err := spec.TupleType.VertexAttributes(0, 0); err != nil {
			fmt.Fprintf(stderr, "vtdump: %s left out of layout: %v\n", spec.Name, err)
			continue
		}
		vertex = append(vertex, spec)
	}

	layout, err := vertex.VertexBufferLayout(gputypes.VertexStepModeVertex, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nlayout: stride %d, step %s\n", layout.ArrayStride, layout.StepMode)
	for _, a := range layout.Attributes {
		fmt.Fprintf(w, "  @location(%d) offset %d %s\n", a.ShaderLocation, a.Offset, a.Format)
	}
	return nil
}
