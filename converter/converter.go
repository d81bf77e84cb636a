package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNoCommand is returned when there is nothing valid to execute
var ErrNoCommand = errors.New("No command to execute. Please check your inputs and settings.")

// NotFoundError reports a converter path that does not resolve to a file
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Converter not found at: %s\nPlease check the path in Settings.", e.Path)
}

// ToolFailureError reports a converter run that exited non-zero
type ToolFailureError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ToolFailureError) Error() string {
	return fmt.Sprintf("Conversion Failed!\n\nReturn Code: %d\n\nError:\n%s", e.ExitCode, e.Stderr)
}

// Result holds the output of a successful run
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Message formats the result for the user
func (r *Result) Message() string {
	msg := "Conversion Successful!"
	if r.Stdout != "" {
		msg += "\n\nOutput:\n" + r.Stdout
	}
	if r.Stderr != "" {
		msg += "\n\nWarnings:\n" + r.Stderr
	}
	return msg
}

// Executor runs an argument vector
type Executor interface {
	Run(ctx context.Context, argv []string) (*Result, error)
}

// Runner executes the converter as a child process
type Runner struct {
	logger *logrus.Logger
}

// New creates a Runner
func New(logger *logrus.Logger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{logger: logger}
}

// Run executes argv[0] with the remaining arguments, capturing stdout and stderr
func (r *Runner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}
	if info, err := os.Stat(argv[0]); err != nil || info.IsDir() {
		return nil, &NotFoundError{Path: argv[0]}
	}

	log := r.logger.WithFields(logrus.Fields{
		"converter": argv[0],
		"argc":      len(argv) - 1,
	})
	log.Info("Running converter")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.WithField("exit_code", exitErr.ExitCode()).Warn("Converter failed")
			return nil, &ToolFailureError{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return nil, fmt.Errorf("failed to start converter: %w", err)
	}

	log.WithField("elapsed", elapsed.Round(time.Millisecond).String()).Info("Converter finished")
	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// Discover looks for the converter next to the running executable, in bin/
// folders, and finally on PATH. It returns "" when nothing is found.
func Discover() string {
	names := []string{"ReplayConverter"}
	if runtime.GOOS == "windows" {
		names = []string{"ReplayConverter.exe"}
	}

	var searchPaths []string
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		searchPaths = append(searchPaths,
			exeDir,                            // Next to executable
			filepath.Join(exeDir, "bin"),       // Bundled
			filepath.Join(exeDir, "..", "bin"), // Parent/bin (for development)
		)
	}
	searchPaths = append(searchPaths, "bin")

	for _, dir := range searchPaths {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				if abs, err := filepath.Abs(candidate); err == nil {
					return abs
				}
				return candidate
			}
		}
	}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
