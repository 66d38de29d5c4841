// Package cliprint handles the CLI's user-facing output: plain, quiet, or
// JSON status lines, styled error reporting, and the optional live phase
// view of an ingestion job.
package cliprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/corpuslens/gitingest/internal/types"
)

// OutputMode selects how status messages are rendered.
type OutputMode int

const (
	OutputNormal OutputMode = iota
	OutputQuiet
	OutputJSON
)

var (
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
)

// JSONOutput is the envelope emitted in --json mode.
type JSONOutput struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Error   *JSONError             `json:"error,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// JSONError carries the stable error kind and message for JSON consumers.
type JSONError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Printer writes status output in the selected mode. Styling is applied
// only in normal mode on a terminal; quiet suppresses everything except
// the digest itself.
type Printer struct {
	Mode    OutputMode
	Verbose bool
	Styled  bool // apply lipgloss styles (normal mode on a TTY)
}

// NewPrinter builds a Printer for the given mode.
func NewPrinter(mode OutputMode, styled bool) *Printer {
	return &Printer{Mode: mode, Styled: styled}
}

// ShowError prints a single-line error to stderr keyed by its error kind,
// or the JSON envelope in JSON mode.
func (p *Printer) ShowError(err error) {
	kind, ok := types.KindOf(err)
	if !ok {
		kind = types.IOError
	}
	message := err.Error()
	var structured *types.Error
	if errors.As(err, &structured) {
		message = structured.Message
	}
	if p.Mode == OutputJSON {
		p.FormatJSON(JSONOutput{
			Status: "error",
			Error:  &JSONError{Kind: string(kind), Message: message},
		})
		return
	}
	if p.Mode == OutputQuiet {
		return
	}
	line := fmt.Sprintf("Error [%s]: %s", kind, firstLine(message))
	if p.Styled {
		line = styleError.Render(line)
	}
	fmt.Fprintln(os.Stderr, line)
}

// ShowWarning prints a warning to stderr unless quiet.
func (p *Printer) ShowWarning(message string) {
	if p.Mode == OutputJSON {
		p.FormatJSON(JSONOutput{Status: "warning", Message: message})
		return
	}
	if p.Mode == OutputQuiet {
		return
	}
	line := "Warning: " + message
	if p.Styled {
		line = styleWarning.Render(line)
	}
	fmt.Fprintln(os.Stderr, line)
}

// ShowSuccess prints a success line to stderr (stdout carries the digest).
func (p *Printer) ShowSuccess(message string, data map[string]interface{}) {
	if p.Mode == OutputJSON {
		p.FormatJSON(JSONOutput{Status: "success", Message: message, Data: data})
		return
	}
	if p.Mode == OutputQuiet {
		return
	}
	if p.Styled {
		message = styleSuccess.Render(message)
	}
	fmt.Fprintln(os.Stderr, message)
}

// ShowStatus prints an unstyled progress/status line to stderr in normal
// mode only; quiet and JSON modes drop it.
func (p *Printer) ShowStatus(message string) {
	if p.Mode != OutputNormal {
		return
	}
	fmt.Fprintln(os.Stderr, message)
}

// StyleTitle renders a bold title in styled mode, plain text otherwise.
func (p *Printer) StyleTitle(title string) string {
	if p.Styled {
		return styleTitle.Render(title)
	}
	return title
}

// FormatJSON writes an indented JSON envelope to stdout.
func (p *Printer) FormatJSON(output JSONOutput) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
