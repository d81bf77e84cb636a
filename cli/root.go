// Package cli wires the command line: the desktop window by default, plus
// terminal and headless commands sharing the same builder and settings.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"replayconverter-gui/config"
	"replayconverter-gui/converter"
	"replayconverter-gui/logging"
)

const appName = "replayconv"

// ExitError carries a specific process exit code
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

type globalOptions struct {
	debug        bool
	settingsPath string
}

// env holds the collaborators every command needs
type env struct {
	logger *logrus.Logger
	store  config.Store
	runner *converter.Runner
}

func (o *globalOptions) env(stderr io.Writer) (*env, error) {
	logger := logging.New(o.debug, stderr)
	store, err := config.NewFileStore(o.settingsPath, logger)
	if err != nil {
		return nil, err
	}
	return &env{
		logger: logger,
		store:  store,
		runner: converter.New(logger),
	}, nil
}

// NewRootCommand builds the command tree writing to stdout and stderr
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Build and run ReplayConverter command lines",
		Long:          "replayconv assembles command lines for LMI's ReplayConverter and runs them.\nWithout a subcommand it opens the desktop window.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "Settings file path (default is the user config directory)")

	root.AddCommand(
		newGUICommand(opts, stderr),
		newTUICommand(opts, stderr),
		newPreviewCommand(opts, stdout, stderr),
		newConvertCommand(opts, stdout, stderr),
		newSettingsCommand(opts, stdout, stderr),
	)
	return root
}

// Run executes the command line and returns the process exit code
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(stderr, exitErr.Message)
		}
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "%s: %v\n", appName, err)
	return 1
}
