package types

// Violation is a content rule a generated bio breaks.
type Violation struct {
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Details   string `json:"details"`
	BioIndex  int    `json:"bio_index"`
	CharCount *int   `json:"char_count,omitempty"`
}
