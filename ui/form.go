package ui

import (
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"replayconverter-gui/command"
)

// createMainForm creates the input, options and preview sections
func (a *App) createMainForm() fyne.CanvasObject {
	// 1. Input file
	a.inputEntry = widget.NewEntry()
	a.inputEntry.SetPlaceHolder("No input file selected")
	a.inputEntry.Disable()
	browseInputBtn := widget.NewButton("Browse...", a.browseInputFile)
	inputRow := container.NewBorder(nil, nil, nil, browseInputBtn, a.inputEntry)

	// 2. Options
	a.formatSelect = widget.NewSelect(command.FormatStrings(), nil)
	a.formatSelect.SetSelected(string(a.form.Format))

	a.exportAllCheck = widget.NewCheck("Export all frames (-a)", nil)
	a.exportAllCheck.SetChecked(a.form.ExportAll)

	a.frameEntry = widget.NewEntry()
	a.frameEntry.SetText(a.form.FrameIndex)
	if a.form.ExportAll {
		a.frameEntry.Disable()
	}

	a.outputEntry = widget.NewEntry()
	a.outputEntry.SetPlaceHolder("Output path without extension")
	browseOutputBtn := widget.NewButton("Browse...", a.browseOutputFile)

	// Callbacks are wired after the initial values so construction does not
	// trigger rebuilds against half-built widgets.
	a.formatSelect.OnChanged = a.setFormat
	a.exportAllCheck.OnChanged = a.setExportAll
	a.frameEntry.OnChanged = a.setFrameIndex
	a.outputEntry.OnChanged = a.handleOutputChange

	options := container.New(layout.NewFormLayout(),
		widget.NewLabel("Output Format:"), a.formatSelect,
		a.exportAllCheck, container.NewBorder(nil, nil, widget.NewLabel("Frame Index (-f):"), nil, a.frameEntry),
		widget.NewLabel("Output Name:"), container.NewBorder(nil, nil, nil, browseOutputBtn, a.outputEntry),
	)

	// 3. Preview
	a.preview = widget.NewMultiLineEntry()
	a.preview.Wrapping = fyne.TextWrapWord
	a.preview.TextStyle = fyne.TextStyle{Monospace: true}
	a.preview.Disable()

	// Buttons
	settingsBtn := widget.NewButton("Settings", a.openSettings)
	quitBtn := widget.NewButton("Quit", func() {
		a.fyneApp.Quit()
	})
	a.convertBtn = widget.NewButton("Convert", a.runConversion)
	a.convertBtn.Importance = widget.HighImportance

	buttons := container.NewBorder(nil, nil, settingsBtn, container.NewHBox(a.convertBtn, quitBtn))

	top := container.NewVBox(
		widget.NewCard("1. Select Input File", "", inputRow),
		widget.NewCard("2. Configure Options", "", options),
	)
	previewCard := widget.NewCard("3. Review Command", "", a.preview)

	return container.NewPadded(container.NewBorder(top, buttons, nil, nil, previewCard))
}

// setInputPath records a chosen input file and suggests an output base name
func (a *App) setInputPath(path string) {
	a.form.InputPath = path
	a.inputEntry.SetText(path)

	base := command.DefaultOutputBase(path)
	a.form.OutputBase = base
	a.outputEntry.SetText(base)
	a.refresh()
}

func (a *App) setFormat(value string) {
	f, ok := command.ParseFormat(value)
	if !ok {
		return
	}
	a.form.Format = f
	a.refresh()
}

func (a *App) setExportAll(checked bool) {
	a.form.ExportAll = checked
	if checked {
		a.frameEntry.Disable()
	} else {
		a.frameEntry.Enable()
	}
	a.refresh()
}

func (a *App) setFrameIndex(text string) {
	a.form.FrameIndex = text
	a.refresh()
}

// handleOutputChange applies typed output text. A supported extension at the
// end of the text selects that format and is stripped from the entry. The
// format selector is updated directly so no second change event fires.
func (a *App) handleOutputChange(text string) {
	if text == a.form.OutputBase {
		return
	}
	base, f, ok := command.SplitOutputName(text)
	a.form.OutputBase = base
	if ok {
		a.form.Format = f
		a.showFormat(f)
		fyne.Do(func() {
			if a.outputEntry.Text != base {
				a.outputEntry.SetText(base)
			}
		})
	}
	a.refresh()
}

// showFormat reflects f in the selector without invoking its change handler
func (a *App) showFormat(f command.Format) {
	if a.formatSelect.Selected == string(f) {
		return
	}
	a.formatSelect.Selected = string(f)
	a.formatSelect.Refresh()
}

// applySavedPath applies a path chosen in the save dialog
func (a *App) applySavedPath(path string) {
	base, f, ok := command.ApplySavedPath(path)
	a.form.OutputBase = base
	if ok {
		a.form.Format = f
		a.showFormat(f)
	}
	a.outputEntry.SetText(base)
	a.refresh()
}

// browseInputFile opens a file dialog to select an input file
func (a *App) browseInputFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("Error", err.Error())
			return
		}
		if reader == nil {
			return // User cancelled
		}
		reader.Close()
		a.setInputPath(uriPath(reader.URI()))
	}, a.window)

	fd.SetFilter(storage.NewExtensionFileFilter(withUpper(command.InputExtensions())))
	fd.Show()
}

// browseOutputFile opens a save dialog to pick the output name and location
func (a *App) browseOutputFile() {
	workDir, _ := os.Getwd()
	dir, file := command.SaveSuggestion(a.form, workDir)

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError("Error", err.Error())
			return
		}
		if writer == nil {
			return
		}
		writer.Close()
		a.applySavedPath(uriPath(writer.URI()))
	}, a.window)

	fd.SetFileName(file)
	if dir != "" {
		if listable, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(listable)
		}
	}
	fd.Show()
}

func withUpper(exts []string) []string {
	out := make([]string, 0, len(exts)*2)
	for _, ext := range exts {
		out = append(out, ext, strings.ToUpper(ext))
	}
	return out
}
