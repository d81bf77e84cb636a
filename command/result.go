package command

import "strings"

// Severity of a diagnostic. Errors block execution; warnings are advisory.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "Error"
	}
	return "Warning"
}

// Kind identifies which mandatory value is missing
type Kind int

const (
	ConfigurationError Kind = iota // converter path unset
	InputMissing
	FrameIndexMissing
	OutputMissing
)

func (k Kind) String() string {
	switch k {
	case ConfigurationError:
		return "ConfigurationError"
	case InputMissing:
		return "InputMissing"
	case FrameIndexMissing:
		return "FrameIndexMissing"
	case OutputMissing:
		return "OutputMissing"
	default:
		return "Unknown"
	}
}

// Diagnostic is a message about the form shown beneath the preview
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Text     string
}

// String renders the diagnostic as "Error: ..." or "Warning: ..."
func (d Diagnostic) String() string {
	return d.Severity.String() + ": " + d.Text
}

func newDiagnostic(kind Kind) Diagnostic {
	switch kind {
	case ConfigurationError:
		return Diagnostic{Kind: kind, Severity: SeverityError, Text: "Path to ReplayConverter.exe is not set. Please go to Settings."}
	case InputMissing:
		return Diagnostic{Kind: kind, Severity: SeverityError, Text: "Please select an input file."}
	case FrameIndexMissing:
		return Diagnostic{Kind: kind, Severity: SeverityWarning, Text: "Frame index is empty when 'Export all frames' is unchecked."}
	default:
		return Diagnostic{Kind: kind, Severity: SeverityWarning, Text: "Output file name is not specified."}
	}
}

// Result is the outcome of Build
type Result struct {
	// Preview always has the full command shape, with placeholders for
	// missing values.
	Preview []string
	// Exec is empty unless the command can be run.
	Exec        []string
	Diagnostics []Diagnostic
}

// Valid reports whether the command can be executed
func (r Result) Valid() bool {
	return len(r.Exec) > 0
}

// String renders the preview with paths quoted
func (r Result) String() string {
	return Render(r.Preview)
}

// Report renders the preview followed by one diagnostic per line
func (r Result) Report() string {
	var b strings.Builder
	b.WriteString(r.String())
	for _, d := range r.Diagnostics {
		b.WriteString("\n")
		b.WriteString(d.String())
	}
	return b.String()
}

// Errors returns the diagnostics with error severity
func (r Result) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

// Warnings returns the diagnostics with warning severity
func (r Result) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Has reports whether a diagnostic of kind was produced
func (r Result) Has(kind Kind) bool {
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func (r Result) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
