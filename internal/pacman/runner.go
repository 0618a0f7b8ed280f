package pacman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/obentoo/qmaur/internal/common/logger"
)

var (
	ErrLaunch         = errors.New("failed to run pacman")
	ErrPacmanCommand  = errors.New("pacman command failed")
	ErrNonUTF8Output  = errors.New("pacman produced non-UTF-8 output")
	ErrEmptyPacmanBin = errors.New("pacman binary path is empty")
)

// CommandError describes a pacman invocation that exited non-zero
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("pacman %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return ErrPacmanCommand
}

// Runner executes pacman queries
type Runner struct {
	binary string
}

// NewRunner creates a Runner for the given pacman binary.
// An empty binary falls back to "pacman" on $PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "pacman"
	}
	return &Runner{binary: binary}
}

// Binary returns the pacman executable used by the Runner
func (r *Runner) Binary() string {
	return r.binary
}

// runCommand executes pacman and returns raw stdout.
// Launch failures wrap ErrLaunch; non-zero exits return *CommandError.
func (r *Runner) runCommand(ctx context.Context, args ...string) ([]byte, error) {
	if r.binary == "" {
		return nil, ErrEmptyPacmanBin
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	// Keep pacman's messages untranslated so stderr is predictable in logs
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	logger.Debug("running %s %s", r.binary, strings.Join(args, " "))
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &CommandError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdoutBuf.String(),
				Stderr:   stderrBuf.String(),
			}
		}
		return nil, errors.Join(ErrLaunch, err)
	}

	return stdoutBuf.Bytes(), nil
}

// ForeignPackages runs pacman -Qm and parses its output.
// Malformed lines are logged as warnings and skipped.
func (r *Runner) ForeignPackages(ctx context.Context) (Inventory, error) {
	stdout, err := r.runCommand(ctx, "-Qm")
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(stdout) {
		return nil, ErrNonUTF8Output
	}

	inv, skipped := ParseForeignOutput(string(stdout))
	for _, line := range skipped {
		logger.Warn("skipping malformed pacman line: %q", line)
	}
	logger.Debug("pacman reported %d foreign packages", len(inv))

	return inv, nil
}

// ParseForeignOutput parses "name version" lines into an Inventory.
// Lines that do not split into exactly two fields are returned as skipped.
// Blank lines are ignored. A repeated name keeps the last version seen.
func ParseForeignOutput(output string) (Inventory, []string) {
	inv := make(Inventory)
	var skipped []string

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			skipped = append(skipped, line)
			continue
		}

		inv[fields[0]] = LocalPackage{Name: fields[0], Version: fields[1]}
	}

	return inv, skipped
}

var _ Executor = (*Runner)(nil)
