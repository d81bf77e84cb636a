// Package command turns the converter form into a command line.
//
// Build is a pure function of the form and a settings snapshot. It always
// produces a preview, with bracketed placeholders standing in for missing
// values, and produces an executable argument vector only when every
// mandatory value is present.
package command

import (
	"strings"

	"replayconverter-gui/config"
)

// Placeholders shown in the preview for missing values
const (
	PlaceholderConverter  = "[CONVERTER_PATH]"
	PlaceholderInput      = "[INPUT_FILE]"
	PlaceholderFrameIndex = "[FRAME_INDEX]"
	PlaceholderOutput     = "[OUTPUT_NAME]"
)

// Converter flags
const (
	FlagInput      = "-i"
	FlagAllFrames  = "-a"
	FlagFrameIndex = "-f"
	FlagOutput     = "-o"
	FlagPCDWidth   = "-w"
	FlagPCDHeight  = "-h"
	FlagPCDSwap    = "-s"
	FlagPCDZoom    = "-z"
	FlagPCDRemove  = "-r"
)

// DefaultFrameIndex is the frame index text a fresh form starts with
const DefaultFrameIndex = "0"

// Form is a snapshot of the values the user entered
type Form struct {
	InputPath  string
	OutputBase string
	Format     Format
	ExportAll  bool
	FrameIndex string
}

// NewForm returns the form as it looks when the window opens
func NewForm() Form {
	return Form{
		Format:     DefaultFormat,
		ExportAll:  true,
		FrameIndex: DefaultFrameIndex,
	}
}

func (f Form) format() Format {
	if f.Format == "" {
		return DefaultFormat
	}
	return f.Format
}

// Build derives the preview, the executable argument vector and the
// diagnostics for form under settings. It never fails.
func Build(form Form, settings config.Settings) Result {
	var (
		preview []string
		exec    []string
		diags   []Diagnostic
		// aborted is set once a mandatory value is missing; exec stays empty from then on
		aborted bool
	)

	emit := func(tokens ...string) {
		if !aborted {
			exec = append(exec, tokens...)
		}
	}
	abort := func(kind Kind) {
		diags = append(diags, newDiagnostic(kind))
		aborted = true
		exec = nil
	}

	if settings.ConverterPath != "" {
		preview = append(preview, settings.ConverterPath)
		emit(settings.ConverterPath)
	} else {
		preview = append(preview, PlaceholderConverter)
		abort(ConfigurationError)
	}

	if form.InputPath != "" {
		preview = append(preview, FlagInput, form.InputPath)
		emit(FlagInput, form.InputPath)
	} else {
		preview = append(preview, FlagInput, PlaceholderInput)
		abort(InputMissing)
	}

	if form.ExportAll {
		preview = append(preview, FlagAllFrames)
		emit(FlagAllFrames)
	} else if form.FrameIndex != "" {
		preview = append(preview, FlagFrameIndex, form.FrameIndex)
		emit(FlagFrameIndex, form.FrameIndex)
	} else {
		preview = append(preview, FlagFrameIndex, PlaceholderFrameIndex)
		abort(FrameIndexMissing)
	}

	ext := string(form.format())
	if form.OutputBase != "" {
		preview = append(preview, FlagOutput, form.OutputBase+ext)
		emit(FlagOutput, form.OutputBase+ext)
	} else {
		preview = append(preview, FlagOutput, PlaceholderOutput+ext)
		abort(OutputMissing)
	}

	if form.format() == FormatPCD {
		pcd := pcdTokens(settings)
		preview = append(preview, pcd...)
		emit(pcd...)
	}

	return Result{
		Preview:     preview,
		Exec:        exec,
		Diagnostics: diags,
	}
}

// pcdTokens returns the PCD import flags whose values differ from the
// defaults, in the order the converter documents them. An empty value counts
// as the default.
func pcdTokens(s config.Settings) []string {
	var tokens []string
	if s.PCDWidth != "" && s.PCDWidth != config.DefaultPCDWidth {
		tokens = append(tokens, FlagPCDWidth, s.PCDWidth)
	}
	if s.PCDHeight != "" && s.PCDHeight != config.DefaultPCDHeight {
		tokens = append(tokens, FlagPCDHeight, s.PCDHeight)
	}
	if s.PCDSwap {
		tokens = append(tokens, FlagPCDSwap)
	}
	if s.PCDZoom != "" && s.PCDZoom != config.DefaultPCDZoom {
		tokens = append(tokens, FlagPCDZoom, s.PCDZoom)
	}
	if s.PCDRemove {
		tokens = append(tokens, FlagPCDRemove)
	}
	return tokens
}

// Render joins tokens into a display string. The executable and the paths
// following -i and -o are wrapped in double quotes.
func Render(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if i == 0 || tokens[i-1] == FlagInput || tokens[i-1] == FlagOutput {
			parts[i] = `"` + tok + `"`
			continue
		}
		parts[i] = tok
	}
	return strings.Join(parts, " ")
}
