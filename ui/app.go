package ui

import (
	"context"
	"errors"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"replayconverter-gui/command"
	"replayconverter-gui/config"
	"replayconverter-gui/converter"
)

const (
	appID       = "com.replayconverter-gui"
	windowTitle = "Replay Converter UI"
)

// App represents the main application
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	store   config.Store
	runner  converter.Executor
	logger  *logrus.Logger

	// discover finds a converter executable to prefill an unset path
	discover func() string

	settings config.Settings
	form     command.Form
	result   command.Result

	// ctx is cancelled on shutdown, stopping an in-flight conversion
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup

	inputEntry     *widget.Entry
	formatSelect   *widget.Select
	exportAllCheck *widget.Check
	frameEntry     *widget.Entry
	outputEntry    *widget.Entry
	preview        *widget.Entry
	convertBtn     *widget.Button
}

// NewApp creates a new application instance
func NewApp(store config.Store, runner converter.Executor, logger *logrus.Logger) (*App, error) {
	if store == nil {
		return nil, errors.New("settings store is required")
	}
	if runner == nil {
		return nil, errors.New("converter runner is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	settings, err := store.Load()
	if err != nil {
		logger.WithError(err).Warn("Could not load settings, using defaults")
		settings = config.DefaultSettings()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		store:    store,
		runner:   runner,
		logger:   logger,
		discover: converter.Discover,
		settings: settings,
		form:     command.NewForm(),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Run starts the application and blocks until the window is closed
func (a *App) Run() {
	a.attach(app.NewWithID(appID))
	a.window.ShowAndRun()
	a.shutdown()
}

// shutdown stops a running conversion and waits for it to return
func (a *App) shutdown() {
	a.cancel()
	a.running.Wait()
}

// attach creates the main window on fa and builds its content
func (a *App) attach(fa fyne.App) {
	a.fyneApp = fa
	a.window = fa.NewWindow(windowTitle)
	a.window.Resize(fyne.NewSize(700, 600))
	a.window.SetContent(a.createMainForm())
	a.refresh()
}

// refresh rebuilds the command from the current form and settings
func (a *App) refresh() {
	a.result = command.Build(a.form, a.settings)
	if a.preview != nil {
		a.preview.SetText(a.result.Report())
	}
	a.logger.WithFields(logrus.Fields{
		"valid":       a.result.Valid(),
		"diagnostics": len(a.result.Diagnostics),
	}).Debug("Command rebuilt")
}

// runConversion executes the current command in the background
func (a *App) runConversion() {
	if !a.result.Valid() {
		a.showError("Error", converter.ErrNoCommand.Error())
		return
	}

	argv := append([]string(nil), a.result.Exec...)
	a.showInfo("Running", "Executing command:\n\n"+a.result.String())
	a.convertBtn.Disable()

	a.running.Add(1)
	go func() {
		defer a.running.Done()
		a.convert(argv)
	}()
}

// convert runs argv and reports the outcome on the UI goroutine
func (a *App) convert(argv []string) {
	res, err := a.runner.Run(a.ctx, argv)
	if a.ctx.Err() != nil {
		a.logger.Info("Conversion stopped on shutdown")
		return
	}
	fyne.Do(func() {
		a.convertBtn.Enable()
		a.showRunOutcome(res, err)
	})
}

func (a *App) showRunOutcome(res *converter.Result, err error) {
	var notFound *converter.NotFoundError
	var failed *converter.ToolFailureError
	switch {
	case err == nil:
		a.showInfo("Success", res.Message())
	case errors.Is(err, converter.ErrNoCommand),
		errors.As(err, &notFound),
		errors.As(err, &failed):
		a.showError("Error", err.Error())
	default:
		a.showError("An Unexpected Error Occurred", err.Error())
	}
}

// showError displays an error dialog
func (a *App) showError(title, message string) {
	a.logger.WithField("title", title).Warn(message)
	a.showMessage(title, message)
}

// showInfo displays an info dialog
func (a *App) showInfo(title, message string) {
	a.showMessage(title, message)
}

func (a *App) showMessage(title, message string) {
	label := widget.NewLabel(message)
	label.Wrapping = fyne.TextWrapWord
	popup := a.fyneApp.NewWindow(title)
	popup.SetContent(container.NewVBox(
		label,
		widget.NewButton("OK", func() {
			popup.Close()
		}),
	))
	popup.Resize(fyne.NewSize(450, 180))
	popup.Show()
}

// uriPath converts a dialog URI to a native path.
// On Windows, remove leading slash from /C:/...
func uriPath(u fyne.URI) string {
	path := u.Path()
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path
}
