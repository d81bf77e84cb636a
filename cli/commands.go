package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"replayconverter-gui/command"
	"replayconverter-gui/converter"
	"replayconverter-gui/tui"
	"replayconverter-gui/ui"
)

// exitInvalidCommand is returned when required values are missing. A
// converter that itself exits with 2 is indistinguishable from it; stderr
// tells the two apart ("No command to execute" vs "Conversion Failed!").
const exitInvalidCommand = 2

// toolExitCode maps a converter exit status onto the process exit code.
// Statuses of 0 or below (a converter killed by a signal reports -1) become 1.
func toolExitCode(status int) int {
	if status <= 0 {
		return 1
	}
	return status
}

func runGUI(opts *globalOptions, stderr io.Writer) error {
	e, err := opts.env(stderr)
	if err != nil {
		return err
	}
	app, err := ui.NewApp(e.store, e.runner, e.logger)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	e.logger.WithField("settings", e.store.Path()).Info("Starting Replay Converter UI")
	app.Run()
	return nil
}

func newGUICommand(opts *globalOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts, stderr)
		},
	}
}

func newTUICommand(opts *globalOptions, stderr io.Writer) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(stderr)
			if err != nil {
				return err
			}
			settings, err := e.store.Load()
			if err != nil {
				return err
			}

			closer, err := e.detachLogs(opts.debug, logFile)
			if err != nil {
				return err
			}
			defer closer.Close()

			return tui.Run(settings, e.runner, e.logger)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", filepath.Join(os.TempDir(), "replayconv-tui.log"), "Debug log destination while the terminal form is open")
	return cmd
}

// logrusSink lets bubbletea point a logrus logger at a file
type logrusSink struct {
	*logrus.Logger
}

func (logrusSink) SetPrefix(string) {}

// detachLogs moves logging off the terminal while the terminal form owns it.
// Debug logs go to path; otherwise they are dropped.
func (e *env) detachLogs(debug bool, path string) (io.Closer, error) {
	if !debug {
		e.logger.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := tea.LogToFileWith(path, "", logrusSink{e.logger})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// formFlags are the form values accepted by preview and convert
type formFlags struct {
	input  string
	output string
	format string
	all    bool
	frame  string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input recording or surface file")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output path; a supported extension also selects the format (default: input path without extension)")
	cmd.Flags().StringVar(&f.format, "format", string(command.DefaultFormat), "Output format: .gprec, .srf, .sur, .pcd, .pro or .csv")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Export all frames (default unless --frame is given)")
	cmd.Flags().StringVarP(&f.frame, "frame", "f", "", "Export a single frame index")
	cmd.MarkFlagsMutuallyExclusive("all", "frame")
}

// form converts the flags into a command.Form
func (f *formFlags) form(cmd *cobra.Command) (command.Form, error) {
	form := command.NewForm()
	form.InputPath = f.input

	format, ok := command.ParseFormat(f.format)
	if !ok {
		return form, fmt.Errorf("unsupported format %q", f.format)
	}
	form.Format = format

	if cmd.Flags().Changed("frame") {
		form.ExportAll = false
		form.FrameIndex = f.frame
	}

	switch {
	case f.output != "":
		base, typed, ok := command.SplitOutputName(f.output)
		form.OutputBase = base
		if ok && !cmd.Flags().Changed("format") {
			form.Format = typed
		}
	default:
		form.OutputBase = command.DefaultOutputBase(f.input)
	}
	return form, nil
}

func newPreviewCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	flags := &formFlags{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the converter command line without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(stderr)
			if err != nil {
				return err
			}
			settings, err := e.store.Load()
			if err != nil {
				return err
			}
			form, err := flags.form(cmd)
			if err != nil {
				return err
			}

			res := command.Build(form, settings)
			fmt.Fprintln(stdout, res.Report())
			if !res.Valid() {
				return &ExitError{Code: exitInvalidCommand}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConvertCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	flags := &formFlags{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Build the converter command line and run it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(stderr)
			if err != nil {
				return err
			}
			settings, err := e.store.Load()
			if err != nil {
				return err
			}
			form, err := flags.form(cmd)
			if err != nil {
				return err
			}

			res := command.Build(form, settings)
			if !res.Valid() {
				fmt.Fprintln(stderr, res.Report())
				return &ExitError{Code: exitInvalidCommand, Message: converter.ErrNoCommand.Error()}
			}

			fmt.Fprintf(stdout, "Executing command:\n\n%s\n\n", res.String())
			result, err := e.runner.Run(cmd.Context(), res.Exec)
			if err != nil {
				var failed *converter.ToolFailureError
				if errors.As(err, &failed) {
					return &ExitError{Code: toolExitCode(failed.ExitCode), Message: failed.Error()}
				}
				return &ExitError{Code: 1, Message: err.Error()}
			}
			fmt.Fprintln(stdout, result.Message())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newSettingsCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		converterPath string
		width         string
		height        string
		zoom          string
		swap          bool
		remove        bool
		discover      bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the persisted settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(stderr)
			if err != nil {
				return err
			}
			settings, err := e.store.Load()
			if err != nil {
				return err
			}

			changed := false
			fl := cmd.Flags()
			if discover && settings.ConverterPath == "" && !fl.Changed("converter") {
				if found := converter.Discover(); found != "" {
					settings.ConverterPath = found
					changed = true
				} else {
					fmt.Fprintln(stderr, "No ReplayConverter executable found")
				}
			}
			if fl.Changed("converter") {
				settings.ConverterPath = converterPath
				changed = true
			}
			if fl.Changed("pcd-width") {
				settings.PCDWidth = width
				changed = true
			}
			if fl.Changed("pcd-height") {
				settings.PCDHeight = height
				changed = true
			}
			if fl.Changed("pcd-zoom") {
				settings.PCDZoom = zoom
				changed = true
			}
			if fl.Changed("pcd-swap") {
				settings.PCDSwap = swap
				changed = true
			}
			if fl.Changed("pcd-remove") {
				settings.PCDRemove = remove
				changed = true
			}

			if changed {
				if err := e.store.Save(settings); err != nil {
					return err
				}
			}

			out, err := json.MarshalIndent(settings, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "# %s\n%s\n", e.store.Path(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&converterPath, "converter", "", "Path to ReplayConverter.exe")
	cmd.Flags().StringVar(&width, "pcd-width", "", "PCD import width (-w)")
	cmd.Flags().StringVar(&height, "pcd-height", "", "PCD import height (-h)")
	cmd.Flags().StringVar(&zoom, "pcd-zoom", "", "PCD import zoom (-z)")
	cmd.Flags().BoolVar(&swap, "pcd-swap", false, "Swap X/Z on PCD import (-s)")
	cmd.Flags().BoolVar(&remove, "pcd-remove", false, "Remove specific point on PCD import (-r)")
	cmd.Flags().BoolVar(&discover, "discover", false, "Look for the converter when no path is set")
	return cmd
}
