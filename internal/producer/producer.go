package producer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pfrederiksen/lolopal/internal/match"
)

// ErrProducerFailed is returned when the scraper exits nonzero.
var ErrProducerFailed = errors.New("producer failed")

// Producer runs the external scraper command.
type Producer struct {
	command    []string
	workDir    string
	outputPath string
	timeout    time.Duration
}

// Result describes a completed (or failed) producer run.
type Result struct {
	ExitCode   int           `json:"exit_code"`
	Duration   time.Duration `json:"duration"`
	OutputPath string        `json:"output_path"`
}

// New creates a Producer. command is the argv to execute, workDir is the
// repository directory the scraper writes into, and outputPath receives the
// combined stdout/stderr of the process for later diagnostic upload.
func New(command []string, workDir, outputPath string, timeout time.Duration) *Producer {
	return &Producer{
		command:    command,
		workDir:    workDir,
		outputPath: outputPath,
		timeout:    timeout,
	}
}

// Run executes the scraper as one blocking operation. The returned Result is
// non-nil whenever the process actually started, including on failure, so
// callers can bundle the output file. A nonzero exit wraps ErrProducerFailed.
func (p *Producer) Run(ctx context.Context) (*Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, err := os.Create(p.outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating producer output file: %w", err)
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, p.command[0], p.command[1:]...)
	cmd.Dir = p.workDir
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Duration:   time.Since(start),
		OutputPath: p.outputPath,
	}

	if runErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%w: killed after %s: %v", ErrProducerFailed, result.Duration.Round(time.Second), ctxErr)
		}
		return result, fmt.Errorf("%w: exit status %d", ErrProducerFailed, result.ExitCode)
	}

	// The process never started (bad command, missing interpreter).
	result.ExitCode = -1
	return result, fmt.Errorf("%w: starting %s: %v", ErrProducerFailed, p.command[0], runErr)
}

// VerifyOutputs checks that the scraper left a decodable snapshot behind and
// returns it along with any consistency warnings. A zero exit with a missing
// or corrupt snapshot is still a producer failure.
func VerifyOutputs(snapshotPath string) (*match.Snapshot, []string, error) {
	snap, err := match.Load(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: snapshot %s was not written", ErrProducerFailed, snapshotPath)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrProducerFailed, err)
	}
	return snap, snap.Validate(), nil
}
