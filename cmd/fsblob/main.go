// Command fsblob builds, extracts and lists flat archive blobs.
//
// Usage:
//
//	fsblob [global flags] build -o OUT [-p SIZE] [-manifest FILE] [refs...]
//	fsblob [global flags] extract -i IN [-o DIR]
//	fsblob [global flags] list -i IN
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/meigma/fsblob"
	"github.com/meigma/fsblob/codec"
	"github.com/meigma/fsblob/internal/manifest"
)

const defaultLZARI = "tools/lzari/lzari"

// globalConfig holds flags shared by every subcommand.
type globalConfig struct {
	codec      string
	lzari      string
	strictExit bool
	verbose    bool
	logFile    string
}

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := dispatch(ctx, args, stdout, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

func dispatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var g globalConfig
	fs := flag.NewFlagSet("fsblob", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.codec, "codec", codec.NameExec, "codec: exec, zstd, lz4 or none")
	fs.StringVar(&g.lzari, "lzari", defaultLZARI, "path to the LZARI executable (exec codec)")
	fs.BoolVar(&g.strictExit, "strict-exit", false, "fail when the LZARI executable exits with an error")
	fs.BoolVar(&g.verbose, "v", false, "verbose logging")
	fs.StringVar(&g.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  fsblob [flags] build -o OUT [-p SIZE] [-manifest FILE] [files...]")
		fmt.Fprintln(stderr, "  fsblob [flags] extract -i IN [-o DIR]")
		fmt.Fprintln(stderr, "  fsblob [flags] list -i IN")
		fmt.Fprintln(stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	logger, closeLog := newLogger(g, stderr)
	defer closeLog()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "build":
		return runBuild(ctx, g, logger, rest, stderr)
	case "extract":
		return runExtract(ctx, g, logger, rest, stdout, stderr)
	case "list":
		return runList(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Invalid command: %s\n", cmd)
		fs.Usage()
		return errUsage
	}
}

// newLogger returns a text logger on stderr, or on a rotating file when
// -log-file is set.
func newLogger(g globalConfig, stderr io.Writer) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if g.logFile == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), func() {}
	}
	rotator := &lumberjack.Logger{
		Filename:   g.logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	return slog.New(slog.NewTextHandler(rotator, opts)), func() { _ = rotator.Close() }
}

func newCodec(g globalConfig, logger *slog.Logger) (codec.Codec, func(), error) {
	c, err := codec.New(codec.Config{
		Name:       g.codec,
		Executable: g.lzari,
		StrictExit: g.strictExit,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	if closer, ok := c.(io.Closer); ok {
		cleanup = func() { _ = closer.Close() }
	}
	return c, cleanup, nil
}

func runBuild(ctx context.Context, g globalConfig, logger *slog.Logger, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "output file")
	pad := fs.String("p", "", "size to pad to (decimal or 0x-prefixed hex)")
	manifestPath := fs.String("manifest", "", "YAML build manifest")
	match := fs.Bool("match", true, "reproduce the reference tool's output quirks (exec codec only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var refs []string
	outPath := *out
	minSize := 0
	if *manifestPath != "" {
		m, err := manifest.Load(*manifestPath)
		if err != nil {
			return err
		}
		refs = append(refs, m.Files...)
		if outPath == "" {
			outPath = m.Output
		}
		if minSize, err = m.PadSize(); err != nil {
			return err
		}
	}
	refs = append(refs, fs.Args()...)

	if *pad != "" {
		n, err := manifest.ParseSize(*pad)
		if err != nil {
			return err
		}
		minSize = n
	}
	if outPath == "" {
		fmt.Fprintln(stderr, "build: -o is required")
		return errUsage
	}
	if len(refs) == 0 {
		fmt.Fprintln(stderr, "build: no input files")
		return errUsage
	}

	c, cleanup, err := newCodec(g, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return fsblob.Build(ctx, refs, outPath, c,
		fsblob.BuildWithMinSize(minSize),
		fsblob.BuildWithReferenceQuirks(*match && g.codec == codec.NameExec),
		fsblob.BuildWithLogger(logger),
	)
}

func runExtract(ctx context.Context, g globalConfig, logger *slog.Logger, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("i", "", "input archive")
	outDir := fs.String("o", "fs", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fmt.Fprintln(stderr, "extract: -i is required")
		return errUsage
	}

	c, cleanup, err := newCodec(g, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := fsblob.Extract(ctx, *in, *outDir, c, fsblob.ExtractWithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "extracted %d files (%d bytes) to %s\n", stats.Files, stats.Bytes, *outDir)
	return nil
}

func runList(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("i", "", "input archive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fmt.Fprintln(stderr, "list: -i is required")
		return errUsage
	}

	l, err := fsblob.Inspect(*in)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OFFSET\tSIZE\tNAME\tDIGEST")
	for _, e := range l.Entries {
		fmt.Fprintf(tw, "0x%08x\t%d\t%s\t%s\n", e.Offset, e.PayloadSize, e.Name, e.Digest)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d entries, end 0x%x, %d trailing bytes (%s)\n",
		len(l.Entries), l.End, l.TrailingBytes(), l.Termination)
	return nil
}
