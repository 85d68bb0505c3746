// Package validation checks generated bios against the content rules given
// to the model: length, no hashtags and the location flag.
package validation

import (
	"github.com/jonathan/bio-generator/internal/types"
)

const (
	TypeTooLong     = "too_long"
	TypeHashtag     = "hashtag"
	TypeMissingFlag = "missing_flag"

	SeverityWarning = "warning"
)

// Options configures CheckBios.
type Options struct {
	MaxChars int    // Longest allowed bio in characters; 0 disables the check
	Flag     string // Flag emoji every bio should contain; empty disables the check
}

// CheckBios runs every content check on items and returns the violations in
// bio order. A nil slice means all bios passed.
func CheckBios(items []types.Bio, opts Options) []types.Violation {
	var violations []types.Violation
	for _, bio := range items {
		if opts.MaxChars > 0 {
			if v, ok := CheckLength(bio, opts.MaxChars); ok {
				violations = append(violations, v)
			}
		}
		violations = append(violations, CheckHashtags(bio)...)
		if opts.Flag != "" {
			if v, ok := CheckFlag(bio, opts.Flag); ok {
				violations = append(violations, v)
			}
		}
	}
	return violations
}
