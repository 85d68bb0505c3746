package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/bio-generator/internal/types"
)

// hashtagPattern matches "#word" at the start of the text or after whitespace,
// so "C#" and "#1" are not reported.
var hashtagPattern = regexp.MustCompile(`(?:^|\s)(#[\p{L}_][\p{L}\p{N}_]*)`)

// CheckHashtags reports one violation per hashtag in bio.
func CheckHashtags(bio types.Bio) []types.Violation {
	var violations []types.Violation
	for _, m := range hashtagPattern.FindAllStringSubmatch(bio.Text, -1) {
		violations = append(violations, types.Violation{
			Type:     TypeHashtag,
			Severity: SeverityWarning,
			Details:  fmt.Sprintf("Bio %d contains hashtag %s", bio.Index, m[1]),
			BioIndex: bio.Index,
		})
	}
	return violations
}

// CheckFlag reports a bio that does not contain flag.
func CheckFlag(bio types.Bio, flag string) (types.Violation, bool) {
	if strings.Contains(bio.Text, flag) {
		return types.Violation{}, false
	}
	return types.Violation{
		Type:     TypeMissingFlag,
		Severity: SeverityWarning,
		Details:  fmt.Sprintf("Bio %d does not include the %s flag", bio.Index, flag),
		BioIndex: bio.Index,
	}, true
}
