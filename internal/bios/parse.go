package bios

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/bio-generator/internal/types"
)

// labelPattern matches a "1."/"2."/"3." label at the start of the text or
// after whitespace. Markdown emphasis around the label ("**1.**", "_2._")
// is part of the label.
var labelPattern = regexp.MustCompile(`(?:^|\s)[*_]*([123])\.[*_]*`)

type label struct {
	n          int
	start, end int // start of the match, end of the "N." label
}

// ParseBios extracts the numbered bios from a completion.
//
// Labels must appear in increasing order; anything before "1." is dropped.
// When fewer than BioCount non-empty bios are found the bios that were found
// are returned together with a *ParseError.
func ParseBios(text string) ([]types.Bio, error) {
	labels := findLabels(text)
	if len(labels) == 0 {
		return nil, &ParseError{Message: "no numbered bios found"}
	}

	bios := make([]types.Bio, 0, BioCount)
	var empty []int
	for i, l := range labels {
		end := len(text)
		if i+1 < len(labels) {
			end = labels[i+1].start
		}
		content := trimEmphasis(text[l.end:end])
		if content == "" {
			empty = append(empty, l.n)
			continue
		}
		bios = append(bios, types.Bio{Index: len(bios) + 1, Text: content})
	}

	switch {
	case len(empty) > 0:
		return bios, &ParseError{Message: fmt.Sprintf("empty bio for label %v", empty), Found: len(bios)}
	case len(bios) < BioCount:
		return bios, &ParseError{Message: "missing numbered bios", Found: len(bios)}
	}
	return bios, nil
}

// findLabels returns the accepted labels in text order: the first "1." and
// then each label greater than the last one accepted.
func findLabels(text string) []label {
	var out []label
	last := 0
	for _, m := range labelPattern.FindAllStringSubmatchIndex(text, -1) {
		end := m[1]
		// "1.5" is a number, not a label
		if dot := m[3]; dot+1 < len(text) && text[dot+1] >= '0' && text[dot+1] <= '9' {
			continue
		}
		n := int(text[m[2]] - '0')
		if last == 0 && n != 1 {
			continue
		}
		if n <= last {
			continue
		}
		out = append(out, label{n: n, start: m[0], end: end})
		last = n
	}
	return out
}

// trimEmphasis cuts a segment down to the bio text. It drops unbalanced bold
// markers such as the closing "**" of "**1. Alpha**" and a trailing line of
// "#" marks that belongs to the next heading label.
func trimEmphasis(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 && strings.Trim(s[i+1:], "# \t\r") == "" {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
}
