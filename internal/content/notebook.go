package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

type notebookDoc struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
	Outputs  []notebookOutput `json:"outputs"`
}

type notebookOutput struct {
	OutputType string                     `json:"output_type"`
	Text       json.RawMessage            `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

// RenderNotebook renders a parsed .ipynb document as a sequence of
// fenced blocks, one per cell, tagged by cell type, with a second fenced
// block holding a code cell's textual output.
func RenderNotebook(data []byte) (string, error) {
	var doc notebookDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("invalid notebook JSON: %w", err)
	}

	var b strings.Builder
	for i, cell := range doc.Cells {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%%%% Cell-Type: %s %%%%\n", cell.CellType)
		b.WriteString(joinSource(cell.Source))
		b.WriteString("\n")

		if cell.CellType == "code" {
			if out := joinTextOutputs(cell.Outputs); out != "" {
				b.WriteString("%% Output %%\n")
				b.WriteString(out)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

func joinSource(raw json.RawMessage) string {
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	return ""
}

func joinTextOutputs(outputs []notebookOutput) string {
	var b strings.Builder
	for _, o := range outputs {
		if o.OutputType != "stream" && o.OutputType != "execute_result" && o.OutputType != "display_data" {
			continue
		}
		if len(o.Text) > 0 {
			b.WriteString(joinSource(o.Text))
			continue
		}
		if plain, ok := o.Data["text/plain"]; ok {
			b.WriteString(joinSource(plain))
		}
	}
	return b.String()
}
