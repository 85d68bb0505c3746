package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/bio-generator/internal/types"
)

// CheckLength reports a bio longer than maxChars characters.
func CheckLength(bio types.Bio, maxChars int) (types.Violation, bool) {
	n := utf8.RuneCountInString(bio.Text)
	if n <= maxChars {
		return types.Violation{}, false
	}
	return types.Violation{
		Type:      TypeTooLong,
		Severity:  SeverityWarning,
		Details:   fmt.Sprintf("Bio %d has %d characters (max %d)", bio.Index, n, maxChars),
		BioIndex:  bio.Index,
		CharCount: intPtr(n),
	}, true
}

func intPtr(i int) *int {
	return &i
}
