package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replayconverter-gui/command"
	"replayconverter-gui/config"
	"replayconverter-gui/converter"
	"replayconverter-gui/logging"
)

type fakeExecutor struct {
	calls chan []string
	res   *converter.Result
	err   error
}

func (f *fakeExecutor) Run(_ context.Context, argv []string) (*converter.Result, error) {
	f.calls <- argv
	return f.res, f.err
}

func newTestApp(t *testing.T, settings config.Settings) (*App, *config.MemoryStore, *fakeExecutor) {
	t.Helper()
	store := config.NewMemoryStore(settings)
	exec := &fakeExecutor{calls: make(chan []string, 1), res: &converter.Result{Stdout: "ok"}}

	a, err := NewApp(store, exec, logging.Discard())
	require.NoError(t, err)
	a.discover = func() string { return "" }
	a.attach(test.NewTempApp(t))
	return a, store, exec
}

func withConverter(path string) config.Settings {
	s := config.DefaultSettings()
	s.ConverterPath = path
	return s
}

func TestNewAppRequiresStore(t *testing.T) {
	_, err := NewApp(nil, &fakeExecutor{}, logging.Discard())
	assert.Error(t, err)
}

func TestInitialPreviewShowsPlaceholders(t *testing.T) {
	a, _, _ := newTestApp(t, config.DefaultSettings())

	assert.False(t, a.result.Valid())
	assert.Contains(t, a.preview.Text, command.PlaceholderConverter)
	assert.Contains(t, a.preview.Text, command.PlaceholderInput)
	assert.Contains(t, a.preview.Text, "[OUTPUT_NAME].srf")
	assert.Equal(t, ".srf", a.formatSelect.Selected)
	assert.True(t, a.frameEntry.Disabled())
}

func TestSelectingInputSuggestsOutput(t *testing.T) {
	a, _, _ := newTestApp(t, withConverter("/opt/conv"))

	a.setInputPath("/scans/run1.gprec")

	assert.Equal(t, "/scans/run1", a.outputEntry.Text)
	require.True(t, a.result.Valid())
	assert.Equal(t, []string{"/opt/conv", "-i", "/scans/run1.gprec", "-a", "-o", "/scans/run1.srf"}, a.result.Exec)
	assert.Equal(t, `"/opt/conv" -i "/scans/run1.gprec" -a -o "/scans/run1.srf"`, a.preview.Text)
}

func TestUncheckingExportAllUsesFrameIndex(t *testing.T) {
	a, _, _ := newTestApp(t, withConverter("/opt/conv"))
	a.setInputPath("/scans/run1.gprec")

	test.Tap(a.exportAllCheck)
	require.False(t, a.form.ExportAll)
	assert.False(t, a.frameEntry.Disabled())
	assert.Contains(t, a.result.Exec, "-f")
	assert.Contains(t, a.result.Exec, command.DefaultFrameIndex)

	a.frameEntry.SetText("")
	assert.Empty(t, a.result.Exec)
	assert.True(t, a.result.Has(command.FrameIndexMissing))

	test.Type(a.frameEntry, "12")
	assert.Equal(t, []string{"/opt/conv", "-i", "/scans/run1.gprec", "-f", "12", "-o", "/scans/run1.srf"}, a.result.Exec)
}

func TestTypedExtensionSelectsFormat(t *testing.T) {
	s := withConverter("/opt/conv")
	s.PCDZoom = "3.0"
	a, _, _ := newTestApp(t, s)
	a.setInputPath("/scans/run1.gprec")

	a.outputEntry.SetText("/out/result.PCD")

	assert.Equal(t, command.FormatPCD, a.form.Format)
	assert.Equal(t, ".pcd", a.formatSelect.Selected)
	assert.Equal(t, "/out/result", a.form.OutputBase)
	assert.Equal(t, []string{"/opt/conv", "-i", "/scans/run1.gprec", "-a", "-o", "/out/result.pcd", "-z", "3.0"}, a.result.Exec)
}

func TestChangingFormatAwayFromPCD(t *testing.T) {
	s := withConverter("/opt/conv")
	s.PCDWidth = "5"
	a, _, _ := newTestApp(t, s)
	a.setInputPath("/scans/run1.gprec")

	a.formatSelect.SetSelected(".pcd")
	assert.Contains(t, a.result.Exec, "-w")

	a.formatSelect.SetSelected(".csv")
	assert.NotContains(t, a.result.Exec, "-w")
	assert.Equal(t, "/scans/run1.csv", a.result.Exec[len(a.result.Exec)-1])
}

func TestApplySavedPath(t *testing.T) {
	a, _, _ := newTestApp(t, withConverter("/opt/conv"))
	a.setInputPath("/scans/run1.gprec")

	a.applySavedPath("/exports/final.sur")

	assert.Equal(t, "/exports/final", a.outputEntry.Text)
	assert.Equal(t, ".sur", a.formatSelect.Selected)
	assert.Equal(t, "/exports/final.sur", a.result.Exec[len(a.result.Exec)-1])
}

func TestSaveSettingsRebuildsCommand(t *testing.T) {
	a, store, _ := newTestApp(t, config.DefaultSettings())
	a.setInputPath("/scans/run1.gprec")
	require.False(t, a.result.Valid())

	require.NoError(t, a.saveSettings(withConverter("/opt/conv")))

	assert.True(t, a.result.Valid())
	assert.Equal(t, 1, store.Saves())
	saved, _ := store.Load()
	assert.Equal(t, "/opt/conv", saved.ConverterPath)
}

func TestSettingsFormRoundTrip(t *testing.T) {
	want := config.Settings{
		ConverterPath: "/opt/conv",
		PCDWidth:      "10",
		PCDHeight:     "20",
		PCDSwap:       true,
		PCDZoom:       "1.5",
		PCDRemove:     false,
	}
	assert.Equal(t, want, newSettingsForm(want).settings())
}

func TestRunConversionInvalidDoesNotExecute(t *testing.T) {
	a, _, exec := newTestApp(t, config.DefaultSettings())

	a.runConversion()

	select {
	case argv := <-exec.calls:
		t.Fatalf("unexpected execution: %v", argv)
	default:
	}
}

func TestRunConversionExecutesBuiltCommand(t *testing.T) {
	a, _, exec := newTestApp(t, withConverter("/opt/conv"))
	a.setInputPath("/scans/run1.gprec")

	a.runConversion()
	a.running.Wait()

	select {
	case argv := <-exec.calls:
		assert.Equal(t, a.result.Exec, argv)
	case <-time.After(2 * time.Second):
		t.Fatal("converter was not run")
	}
}

// messageText returns the text of the most recent message window titled title
func messageText(t *testing.T, a *App, title string) string {
	t.Helper()
	var text string
	found := false
	for _, w := range a.fyneApp.Driver().AllWindows() {
		if w.Title() != title {
			continue
		}
		box, ok := w.Content().(*fyne.Container)
		require.True(t, ok, "unexpected content %T", w.Content())
		label, ok := box.Objects[0].(*widget.Label)
		require.True(t, ok, "unexpected first object %T", box.Objects[0])
		text = label.Text
		found = true
	}
	require.True(t, found, "no window titled %q", title)
	return text
}

func TestShowRunOutcome(t *testing.T) {
	tests := []struct {
		name  string
		res   *converter.Result
		err   error
		title string
		want  []string
	}{
		{
			name:  "success",
			res:   &converter.Result{Stdout: "done"},
			title: "Success",
			want:  []string{"Conversion Successful!", "Output:\ndone"},
		},
		{
			name:  "not found",
			err:   &converter.NotFoundError{Path: "/missing"},
			title: "Error",
			want:  []string{"Converter not found at: /missing"},
		},
		{
			name:  "tool failure",
			err:   &converter.ToolFailureError{ExitCode: 2, Stderr: "boom"},
			title: "Error",
			want:  []string{"Conversion Failed!", "Return Code: 2", "boom"},
		},
		{
			name:  "unexpected",
			err:   errors.New("surprise"),
			title: "An Unexpected Error Occurred",
			want:  []string{"surprise"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := newTestApp(t, config.DefaultSettings())

			a.showRunOutcome(tt.res, tt.err)

			text := messageText(t, a, tt.title)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

type blockingExecutor struct {
	started chan struct{}
	err     error
}

func (b *blockingExecutor) Run(ctx context.Context, _ []string) (*converter.Result, error) {
	close(b.started)
	<-ctx.Done()
	b.err = ctx.Err()
	return nil, b.err
}

func TestShutdownStopsRunningConversion(t *testing.T) {
	exec := &blockingExecutor{started: make(chan struct{})}
	a, err := NewApp(config.NewMemoryStore(withConverter("/opt/conv")), exec, logging.Discard())
	require.NoError(t, err)
	a.discover = func() string { return "" }
	a.attach(test.NewTempApp(t))
	a.setInputPath("/scans/run1.gprec")

	a.runConversion()
	select {
	case <-exec.started:
	case <-time.After(2 * time.Second):
		t.Fatal("converter was not started")
	}

	a.shutdown()
	assert.ErrorIs(t, exec.err, context.Canceled)
}
