// Package tui is a terminal front-end for building and running converter
// commands. It shares the command builder with the desktop window.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sirupsen/logrus"

	"replayconverter-gui/command"
	"replayconverter-gui/config"
	"replayconverter-gui/converter"
)

type field int

const (
	fieldInput field = iota
	fieldOutput
	fieldFormat
	fieldExportAll
	fieldFrame
	fieldCount
)

const defaultWidth = 80

type runFinishedMsg struct {
	res *converter.Result
	err error
}

// Model represents the Bubble Tea program state.
type Model struct {
	settings config.Settings
	runner   converter.Executor
	logger   *logrus.Logger
	theme    Theme
	keys     keyMap
	help     help.Model

	form   command.Form
	result command.Result

	input  textinput.Model
	output textinput.Model
	frame  textinput.Model
	focus  field

	// autoOutput is true until the user edits the output name; the output
	// base then follows the input file.
	autoOutput bool

	width      int
	running    bool
	outcome    string
	outcomeErr bool
	quitting   bool
}

// New returns a model over a settings snapshot
func New(settings config.Settings, runner converter.Executor, logger *logrus.Logger) Model {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	form := command.NewForm()

	input := textinput.New()
	input.Placeholder = "path to .gprec/.srf/.sur/.pcd/.pro"
	input.Prompt = ""
	input.Focus()

	output := textinput.New()
	output.Placeholder = "output path without extension"
	output.Prompt = ""

	frame := textinput.New()
	frame.Prompt = ""
	frame.SetValue(form.FrameIndex)

	m := Model{
		settings:   settings,
		runner:     runner,
		logger:     logger,
		theme:      NewTheme(),
		keys:       newKeyMap(),
		help:       help.New(),
		form:       form,
		input:      input,
		output:     output,
		frame:      frame,
		focus:      fieldInput,
		autoOutput: true,
		width:      defaultWidth,
	}
	m.rebuild()
	return m
}

// Run starts the terminal program
func Run(settings config.Settings, runner converter.Executor, logger *logrus.Logger) error {
	p := tea.NewProgram(New(settings, runner, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case runFinishedMsg:
		m.running = false
		if msg.err != nil {
			m.outcome = msg.err.Error()
			m.outcomeErr = true
		} else {
			m.outcome = msg.res.Message()
			m.outcomeErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.moveFocus(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.moveFocus(-1)
			return m, nil
		case key.Matches(msg, m.keys.Run):
			return m, m.startRun()
		}

		switch m.focus {
		case fieldFormat:
			switch {
			case key.Matches(msg, m.keys.Left):
				m.cycleFormat(-1)
			case key.Matches(msg, m.keys.Right):
				m.cycleFormat(1)
			}
			return m, nil
		case fieldExportAll:
			if key.Matches(msg, m.keys.Toggle) {
				m.form.ExportAll = !m.form.ExportAll
				m.rebuild()
			}
			return m, nil
		}
	}

	return m.updateInputs(msg)
}

// updateInputs forwards msg to the focused text input and syncs the form
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case fieldInput:
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.form.InputPath = v
			if m.autoOutput {
				m.form.OutputBase = command.DefaultOutputBase(v)
				m.output.SetValue(m.form.OutputBase)
			}
		}
	case fieldOutput:
		before := m.output.Value()
		m.output, cmd = m.output.Update(msg)
		if v := m.output.Value(); v != before {
			m.autoOutput = false
			base, f, ok := command.SplitOutputName(v)
			if ok {
				m.form.Format = f
				m.output.SetValue(base)
			}
			m.form.OutputBase = base
		}
	case fieldFrame:
		m.frame, cmd = m.frame.Update(msg)
		m.form.FrameIndex = m.frame.Value()
	}
	m.rebuild()
	return m, cmd
}

func (m *Model) rebuild() {
	m.result = command.Build(m.form, m.settings)
}

func (m *Model) moveFocus(delta int) {
	next := m.focus
	for {
		next = field((int(next) + delta + int(fieldCount)) % int(fieldCount))
		// The frame index only matters when a single frame is exported
		if next == fieldFrame && m.form.ExportAll {
			continue
		}
		break
	}
	m.focus = next

	m.input.Blur()
	m.output.Blur()
	m.frame.Blur()
	switch m.focus {
	case fieldInput:
		m.input.Focus()
	case fieldOutput:
		m.output.Focus()
	case fieldFrame:
		m.frame.Focus()
	}
}

func (m *Model) cycleFormat(delta int) {
	formats := command.Formats()
	idx := 0
	for i, f := range formats {
		if f == m.form.Format {
			idx = i
		}
	}
	idx = (idx + delta + len(formats)) % len(formats)
	m.form.Format = formats[idx]
	m.rebuild()
}

func (m *Model) startRun() tea.Cmd {
	if m.running {
		return nil
	}
	if !m.result.Valid() {
		m.outcome = converter.ErrNoCommand.Error()
		m.outcomeErr = true
		return nil
	}
	m.running = true
	m.outcome = ""
	argv := append([]string(nil), m.result.Exec...)
	m.logger.WithField("argc", len(argv)).Debug("Starting conversion from terminal")
	return runCmd(m.runner, argv)
}

func runCmd(runner converter.Executor, argv []string) tea.Cmd {
	return func() tea.Msg {
		res, err := runner.Run(context.Background(), argv)
		return runFinishedMsg{res: res, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Header.Render("Replay Converter"))
	b.WriteString("\n")

	b.WriteString(m.row(fieldInput, "Input file", m.input.View()))
	b.WriteString(m.row(fieldOutput, "Output name", m.output.View()))
	b.WriteString(m.row(fieldFormat, "Output format", m.formatView()))

	check := "[ ]"
	if m.form.ExportAll {
		check = "[x]"
	}
	b.WriteString(m.row(fieldExportAll, "Export all (-a)", t.Value.Render(check)))
	if !m.form.ExportAll {
		b.WriteString(m.row(fieldFrame, "Frame index (-f)", m.frame.View()))
	}
	b.WriteString("\n")

	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	var preview strings.Builder
	preview.WriteString(wordwrap.String(m.result.String(), inner))
	for _, d := range m.result.Diagnostics {
		style := t.Warning
		if d.Severity == command.SeverityError {
			style = t.Error
		}
		preview.WriteString("\n")
		preview.WriteString(style.Render(wordwrap.String(d.String(), inner)))
	}
	b.WriteString(t.Panel.Render(preview.String()))
	b.WriteString("\n")

	switch {
	case m.running:
		b.WriteString(t.Helper.Render("Running converter..."))
		b.WriteString("\n")
	case m.outcome != "":
		style := t.Success
		if m.outcomeErr {
			style = t.Error
		}
		b.WriteString(style.Render(wordwrap.String(m.outcome, inner)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) row(f field, label, value string) string {
	style := m.theme.Label
	if m.focus == f {
		style = m.theme.Focused
	}
	return fmt.Sprintf("%s %s\n", style.Render(label), value)
}

func (m Model) formatView() string {
	parts := make([]string, 0, len(command.Formats()))
	for _, f := range command.Formats() {
		if f == m.form.Format {
			parts = append(parts, m.theme.Chosen.Render(string(f)))
			continue
		}
		parts = append(parts, m.theme.Value.Render(string(f)))
	}
	return strings.Join(parts, " ")
}
