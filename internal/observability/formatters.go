// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/bio-generator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxPromptLines caps the prompt box
	maxPromptLines = 12
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Lines longer
// than the box are wrapped at word boundaries.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPrompt outputs the prompt sent to the model.
func (p *Printer) PrintPrompt(model, prompt string) {
	if prompt == "" {
		return
	}

	lines := strings.Split(prompt, "\n")
	if len(lines) > maxPromptLines {
		more := len(lines) - maxPromptLines
		lines = append(lines[:maxPromptLines], fmt.Sprintf("... and %d more lines", more))
	}
	p.printBox(fmt.Sprintf("PROMPT (%s)", model), strings.Join(lines, "\n"))
}

// PrintGeneration outputs a summary of a generation and the content rules
// its bios break.
func (p *Printer) PrintGeneration(gen types.Generation, violations []types.Violation) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("ID:       %s\n", gen.ID))
	sb.WriteString(fmt.Sprintf("Vibe:     %s\n", gen.Vibe))
	sb.WriteString(fmt.Sprintf("Location: %s\n", gen.Location))
	sb.WriteString(fmt.Sprintf("Bios:     %d", len(gen.Bios)))
	if gen.Degraded {
		sb.WriteString(" (degraded)")
	}
	sb.WriteString("\n")

	for _, bio := range gen.Bios {
		sb.WriteString(fmt.Sprintf("\n#%d  %d chars\n", bio.Index, utf8.RuneCountInString(bio.Text)))
	}

	if len(violations) > 0 {
		sb.WriteString("\nContent warnings:\n")
		for _, v := range violations {
			sb.WriteString(fmt.Sprintf("  • %s\n", v.Details))
		}
	} else {
		sb.WriteString("\nNo content warnings\n")
	}

	p.printBox("GENERATED BIOS", strings.TrimSuffix(sb.String(), "\n"))
}

// wrap splits line into chunks of at most width characters, breaking at
// spaces where possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var cur []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			out = append(out, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
