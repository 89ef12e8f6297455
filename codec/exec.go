package codec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	opEncode = "e"
	opDecode = "d"
)

// Exec runs an external compressor as `<exe> e|d <input> <output>`.
//
// Each call gets its own temporary directory holding the input and output
// files; the directory is removed before the call returns, whether or not the
// compressor succeeded. The exit status is ignored unless ExecWithStrictExit
// is set, so a failing compressor yields whatever its output file holds.
type Exec struct {
	path       string
	tempDir    string
	strictExit bool
	logger     *slog.Logger
}

// ExecOption configures an Exec codec.
type ExecOption func(*Exec)

// ExecWithStrictExit makes a non-zero exit status an ErrCodecFailed error.
func ExecWithStrictExit() ExecOption {
	return func(e *Exec) {
		e.strictExit = true
	}
}

// ExecWithTempDir sets the parent directory for per-call temporary files.
// Empty uses os.TempDir.
func ExecWithTempDir(dir string) ExecOption {
	return func(e *Exec) {
		e.tempDir = dir
	}
}

// ExecWithLogger sets the logger. A nil logger discards output.
func ExecWithLogger(logger *slog.Logger) ExecOption {
	return func(e *Exec) {
		e.logger = logger
	}
}

// NewExec returns a codec that invokes the executable at path.
func NewExec(path string, opts ...ExecOption) (*Exec, error) {
	if path == "" {
		return nil, errors.New("codec: executable path is required")
	}
	e := &Exec{path: path}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Path returns the compressor executable path.
func (e *Exec) Path() string {
	return e.path
}

// log returns the logger, falling back to a discard logger if nil.
func (e *Exec) log() *slog.Logger {
	if e.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.logger
}

// Encode implements Codec.
func (e *Exec) Encode(ctx context.Context, raw []byte) ([]byte, error) {
	return e.run(ctx, opEncode, raw)
}

// Decode implements Codec.
func (e *Exec) Decode(ctx context.Context, compressed []byte) ([]byte, error) {
	return e.run(ctx, opDecode, compressed)
}

func (e *Exec) run(ctx context.Context, op string, input []byte) (out []byte, err error) {
	dir, err := os.MkdirTemp(e.tempDir, "fsblob-codec-*")
	if err != nil {
		return nil, fmt.Errorf("create codec temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("remove codec temp dir: %w", rmErr)
		}
	}()

	inPath := filepath.Join(dir, "in.bin")
	outPath := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(inPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("write codec input: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.path, op, inPath, outPath)
	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("run %s %s: %w", e.path, op, runErr)
		}
		if e.strictExit {
			return nil, fmt.Errorf("%w: %s %s: %v", ErrCodecFailed, e.path, op, runErr)
		}
		e.log().Warn("compressor exited with failure, using its output anyway",
			"executable", e.path, "op", op, "exit_code", exitErr.ExitCode())
	}

	out, err = os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read codec output: %w", err)
	}
	return out, nil
}
