package domain

// Question is one entry of the fixed interview question set.
// Questions are ordered and immutable for the session duration.
type Question struct {
	// Index is the 1-based position within the set.
	Index int `json:"index" yaml:"index"`

	// Text is the question as presented to the respondent.
	Text string `json:"text" yaml:"text"`
}
