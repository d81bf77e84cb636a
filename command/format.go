package command

import (
	"path/filepath"
	"strings"
)

// Format is an output file extension understood by the converter
type Format string

const (
	FormatGPRec Format = ".gprec"
	FormatSRF   Format = ".srf"
	FormatSUR   Format = ".sur"
	FormatPCD   Format = ".pcd"
	FormatPRO   Format = ".pro"
	FormatCSV   Format = ".csv"
)

// DefaultFormat is selected when the form opens
const DefaultFormat = FormatSRF

var formats = []Format{FormatGPRec, FormatSRF, FormatSUR, FormatPCD, FormatPRO, FormatCSV}

// Formats returns the supported output formats in display order
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// FormatStrings returns Formats as plain strings, for selector widgets
func FormatStrings() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat matches ext case-insensitively against the supported formats.
// The leading dot is optional.
func ParseFormat(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return "", false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, f := range formats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// Label is the file type name shown in save dialogs, e.g. "PCD File"
func (f Format) Label() string {
	return strings.ToUpper(strings.TrimPrefix(string(f), ".")) + " File"
}

// InputExtensions lists the extensions the converter accepts as input
func InputExtensions() []string {
	return []string{".gprec", ".srf", ".sur", ".pcd", ".pro"}
}

// DefaultOutputBase derives an output base name from an input path by
// dropping the extension and keeping the directory.
func DefaultOutputBase(input string) string {
	if input == "" {
		return ""
	}
	dir, file := filepath.Split(input)
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(dir, name)
}

// SplitOutputName checks whether typed output text ends with a supported
// extension. When it does, the text without the extension and the matching
// format are returned.
func SplitOutputName(text string) (string, Format, bool) {
	ext := filepath.Ext(text)
	f, ok := ParseFormat(ext)
	if !ok || ext == "" {
		return text, "", false
	}
	return strings.TrimSuffix(text, ext), f, true
}

// ApplySavedPath splits a path chosen in a save dialog into the output base
// name and, when the extension is supported, the format it selects.
func ApplySavedPath(path string) (string, Format, bool) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	f, ok := ParseFormat(ext)
	return base, f, ok
}

// SaveSuggestion returns the initial directory and file name for a save
// dialog. The output base wins over the input path; with neither set, the
// working directory and "output" are used.
func SaveSuggestion(form Form, workDir string) (dir, file string) {
	var name string
	switch {
	case form.OutputBase != "":
		dir = filepath.Dir(form.OutputBase)
		name = filepath.Base(form.OutputBase)
	case form.InputPath != "":
		dir = filepath.Dir(form.InputPath)
		name = strings.TrimSuffix(filepath.Base(form.InputPath), filepath.Ext(form.InputPath))
	default:
		dir = workDir
		name = "output"
	}
	return dir, name + string(form.format())
}
