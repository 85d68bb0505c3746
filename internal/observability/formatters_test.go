package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonathan/bio-generator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintPrompt(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPrompt("gemini-2.0-flash", "Generate exactly 3 funny Twitter biographies.\n- Do NOT include hashtags.")
	output := buf.String()

	assert.Contains(t, output, "PROMPT (gemini-2.0-flash)")
	assert.Contains(t, output, "Generate exactly 3 funny Twitter biographies.")
	assert.Contains(t, output, "- Do NOT include hashtags.")
}

func TestPrintPrompt_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPrompt("m", "")
	assert.Empty(t, buf.String())
}

func TestPrintPrompt_Truncated(t *testing.T) {
	var buf bytes.Buffer
	lines := make([]string, maxPromptLines+3)
	for i := range lines {
		lines[i] = "line"
	}

	NewPrinter(&buf).PrintPrompt("m", strings.Join(lines, "\n"))
	assert.Contains(t, buf.String(), "... and 3 more lines")
}

func TestPrintGeneration(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	gen := types.Generation{
		ID:       uuid.MustParse("0b6f5e5c-3c9a-4d4e-9a4e-2f1d8c7b6a50"),
		Vibe:     types.VibeFunny,
		Location: "Japan",
		Bios:     []types.Bio{{Index: 1, Text: "Tokyo coder"}, {Index: 2, Text: "Ramen critic"}},
		Degraded: true,
	}
	violations := []types.Violation{{Type: "hashtag", Details: "Bio 2 contains hashtag #ramen", BioIndex: 2}}

	p.PrintGeneration(gen, violations)
	output := buf.String()

	assert.Contains(t, output, "GENERATED BIOS")
	assert.Contains(t, output, "0b6f5e5c-3c9a-4d4e-9a4e-2f1d8c7b6a50")
	assert.Contains(t, output, "Bios:     2 (degraded)")
	assert.Contains(t, output, "#1  11 chars")
	assert.Contains(t, output, "Bio 2 contains hashtag #ramen")
}

func TestPrintGeneration_NoViolations(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGeneration(types.Generation{Bios: []types.Bio{{Index: 1, Text: "x"}}}, nil)
	assert.Contains(t, buf.String(), "No content warnings")
}

func TestPrintBox_LinesFitWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("word ", 40)+strings.Repeat("x", 130))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrap("one two three", 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrap("abcdefghij", 4))

	got := wrap("aa bbbbbbbbb c", 4)
	require.NotEmpty(t, got)
	for _, line := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 4)
	}
}
