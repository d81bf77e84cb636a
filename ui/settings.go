package ui

import (
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"replayconverter-gui/config"
)

// settingsForm holds the widgets of the settings window
type settingsForm struct {
	converterEntry *widget.Entry
	widthEntry     *widget.Entry
	heightEntry    *widget.Entry
	zoomEntry      *widget.Entry
	swapCheck      *widget.Check
	removeCheck    *widget.Check
}

func newSettingsForm(s config.Settings) *settingsForm {
	f := &settingsForm{
		converterEntry: widget.NewEntry(),
		widthEntry:     widget.NewEntry(),
		heightEntry:    widget.NewEntry(),
		zoomEntry:      widget.NewEntry(),
		swapCheck:      widget.NewCheck("Swap X/Z (-s)", nil),
		removeCheck:    widget.NewCheck("Remove specific point (-r)", nil),
	}
	f.converterEntry.SetText(s.ConverterPath)
	f.converterEntry.SetPlaceHolder("Path to ReplayConverter.exe")
	f.widthEntry.SetText(s.PCDWidth)
	f.heightEntry.SetText(s.PCDHeight)
	f.zoomEntry.SetText(s.PCDZoom)
	f.swapCheck.SetChecked(s.PCDSwap)
	f.removeCheck.SetChecked(s.PCDRemove)
	return f
}

// settings reads the widget values back into a Settings record
func (f *settingsForm) settings() config.Settings {
	return config.Settings{
		ConverterPath: f.converterEntry.Text,
		PCDWidth:      f.widthEntry.Text,
		PCDHeight:     f.heightEntry.Text,
		PCDSwap:       f.swapCheck.Checked,
		PCDZoom:       f.zoomEntry.Text,
		PCDRemove:     f.removeCheck.Checked,
	}
}

// openSettings opens the settings window
func (a *App) openSettings() {
	current := a.settings
	if current.ConverterPath == "" && a.discover != nil {
		if found := a.discover(); found != "" {
			a.logger.WithField("path", found).Info("Converter discovered")
			current.ConverterPath = found
		}
	}
	form := newSettingsForm(current)

	win := a.fyneApp.NewWindow("Settings")
	win.Resize(fyne.NewSize(550, 400))

	browseBtn := widget.NewButton("Browse...", func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			form.converterEntry.SetText(uriPath(reader.URI()))
		}, win)
		if runtime.GOOS == "windows" {
			fd.SetFilter(storage.NewExtensionFileFilter([]string{".exe", ".EXE"}))
		}
		fd.Show()
	})

	pathCard := widget.NewCard("ReplayConverter.exe Path", "",
		container.NewBorder(nil, nil, nil, browseBtn, form.converterEntry))

	pcdGrid := container.New(layout.NewFormLayout(),
		widget.NewLabel("Width (-w):"), form.widthEntry,
		widget.NewLabel("Height (-h):"), form.heightEntry,
		widget.NewLabel("Zoom (-z):"), form.zoomEntry,
	)
	pcdCard := widget.NewCard("PCD Import Defaults", "",
		container.NewHBox(pcdGrid, layout.NewSpacer(), container.NewVBox(form.swapCheck, form.removeCheck)))

	cancelBtn := widget.NewButton("Cancel", func() {
		win.Close()
	})
	saveBtn := widget.NewButton("Save", func() {
		if err := a.saveSettings(form.settings()); err != nil {
			a.showError("Error", err.Error()+"\n\nSettings not saved.")
			return
		}
		a.showInfo("Saved", "Settings have been saved to:\n"+a.store.Path())
		win.Close()
	})
	saveBtn.Importance = widget.HighImportance

	buttons := container.NewHBox(layout.NewSpacer(), saveBtn, cancelBtn)
	win.SetContent(container.NewPadded(container.NewBorder(
		container.NewVBox(pathCard, pcdCard), buttons, nil, nil, nil,
	)))
	win.Show()
}

// saveSettings persists s and rebuilds the command with it
func (a *App) saveSettings(s config.Settings) error {
	if err := a.store.Save(s); err != nil {
		return err
	}
	a.settings = s
	a.refresh()
	return nil
}
