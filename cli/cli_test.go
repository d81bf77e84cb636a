package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"replayconverter-gui/config"
	"replayconverter-gui/logging"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func settingsFile(t *testing.T, s config.Settings) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := config.NewFileStore(path, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, store.Save(s))
	return path
}

func fakeConverter(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ReplayConverter")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestPreviewValidCommand(t *testing.T) {
	s := config.DefaultSettings()
	s.ConverterPath = "/opt/ReplayConverter"
	path := settingsFile(t, s)

	code, out, _ := run(t, "--settings", path, "preview", "-i", "/scans/run1.gprec")

	assert.Equal(t, 0, code)
	assert.Equal(t, "\"/opt/ReplayConverter\" -i \"/scans/run1.gprec\" -a -o \"/scans/run1.srf\"\n", out)
}

func TestPreviewOutputExtensionSelectsFormat(t *testing.T) {
	s := config.DefaultSettings()
	s.ConverterPath = "/opt/ReplayConverter"
	s.PCDWidth = "640"
	path := settingsFile(t, s)

	code, out, _ := run(t, "--settings", path, "preview", "-i", "/scans/run1.gprec", "-o", "/out/cloud.pcd", "-f", "7")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "-f 7 -o \"/out/cloud.pcd\" -w 640")
}

func TestPreviewInvalidExitsTwo(t *testing.T) {
	path := settingsFile(t, config.DefaultSettings())

	code, out, _ := run(t, "--settings", path, "preview")

	assert.Equal(t, exitInvalidCommand, code)
	assert.Contains(t, out, "Error: Path to ReplayConverter.exe is not set.")
	assert.Contains(t, out, "Error: Please select an input file.")
}

func TestPreviewRejectsUnknownFormat(t *testing.T) {
	path := settingsFile(t, config.DefaultSettings())

	code, _, errOut := run(t, "--settings", path, "preview", "--format", ".mp4")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unsupported format")
}

func TestPreviewAllAndFrameConflict(t *testing.T) {
	path := settingsFile(t, config.DefaultSettings())

	code, _, _ := run(t, "--settings", path, "preview", "-a", "-f", "2")

	assert.Equal(t, 1, code)
}

func TestConvertRunsConverter(t *testing.T) {
	conv := fakeConverter(t, `echo "converted $@"`)
	s := config.DefaultSettings()
	s.ConverterPath = conv
	path := settingsFile(t, s)

	code, out, _ := run(t, "--settings", path, "convert", "-i", "/scans/run1.gprec", "-o", "/out/run1")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "Executing command:")
	assert.Contains(t, out, "Conversion Successful!")
	assert.Contains(t, out, "converted -i /scans/run1.gprec -a -o /out/run1.srf")
}

func TestConvertPropagatesExitCode(t *testing.T) {
	conv := fakeConverter(t, `echo "bad input" >&2; exit 3`)
	s := config.DefaultSettings()
	s.ConverterPath = conv
	path := settingsFile(t, s)

	code, _, errOut := run(t, "--settings", path, "convert", "-i", "/scans/run1.gprec")

	assert.Equal(t, 3, code)
	assert.Contains(t, errOut, "Return Code: 3")
	assert.Contains(t, errOut, "bad input")
}

func TestConvertKilledConverterExitsOne(t *testing.T) {
	conv := fakeConverter(t, `kill -9 $$`)
	s := config.DefaultSettings()
	s.ConverterPath = conv
	path := settingsFile(t, s)

	code, _, errOut := run(t, "--settings", path, "convert", "-i", "/scans/run1.gprec")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Return Code: -1")
}

func TestToolExitCode(t *testing.T) {
	assert.Equal(t, 1, toolExitCode(-1))
	assert.Equal(t, 1, toolExitCode(0))
	assert.Equal(t, 2, toolExitCode(2))
	assert.Equal(t, 255, toolExitCode(255))
}

func TestTUILogsStayOffTerminal(t *testing.T) {
	conv := fakeConverter(t, `echo "converted"`)
	var stderr bytes.Buffer
	opts := &globalOptions{settingsPath: filepath.Join(t.TempDir(), "settings.json")}
	e, err := opts.env(&stderr)
	require.NoError(t, err)

	closer, err := e.detachLogs(false, "")
	require.NoError(t, err)
	defer closer.Close()

	_, err = e.runner.Run(context.Background(), []string{conv, "-i", "/scans/run1.gprec"})
	require.NoError(t, err)
	assert.Empty(t, stderr.String())
}

func TestTUIDebugLogsGoToFile(t *testing.T) {
	conv := fakeConverter(t, `echo "converted"`)
	var stderr bytes.Buffer
	opts := &globalOptions{debug: true, settingsPath: filepath.Join(t.TempDir(), "settings.json")}
	e, err := opts.env(&stderr)
	require.NoError(t, err)
	stderr.Reset()

	logPath := filepath.Join(t.TempDir(), "tui.log")
	closer, err := e.detachLogs(true, logPath)
	require.NoError(t, err)

	_, err = e.runner.Run(context.Background(), []string{conv})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	assert.Empty(t, stderr.String())
	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "Running converter")
	assert.Contains(t, string(logged), "Converter finished")
}

func TestConvertInvalidDoesNotRun(t *testing.T) {
	path := settingsFile(t, config.DefaultSettings())

	code, out, errOut := run(t, "--settings", path, "convert", "-i", "/scans/run1.gprec")

	assert.Equal(t, exitInvalidCommand, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "No command to execute.")
}

func TestSettingsUpdatePersists(t *testing.T) {
	path := settingsFile(t, config.DefaultSettings())

	code, out, _ := run(t, "--settings", path, "settings", "--converter", "/opt/conv", "--pcd-zoom", "2.5", "--pcd-swap")
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)
	assert.Contains(t, out, `"converter_path": "/opt/conv"`)

	store, err := config.NewFileStore(path, logging.Discard())
	require.NoError(t, err)
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/conv", got.ConverterPath)
	assert.Equal(t, "2.5", got.PCDZoom)
	assert.True(t, got.PCDSwap)
	assert.False(t, got.PCDRemove)
	assert.Equal(t, config.DefaultPCDWidth, got.PCDWidth)
}

func TestSettingsShowDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	code, out, _ := run(t, "--settings", path, "settings")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"pcd_zoom": "1.0"`)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
