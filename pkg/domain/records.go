package domain

import "time"

// TurnRecord is the payload handed to the session recorder for one completed
// question/answer exchange.
type TurnRecord struct {
	QuestionID  int    `json:"question_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	BridgeReply string `json:"bridge_reply"`
}

// BranchRecord notifies the recorder that a deepening branch was entered or
// continued.
type BranchRecord struct {
	Category    string `json:"category"`
	DisplayName string `json:"display_name"`
	FollowUp    string `json:"follow_up"`
}

// SessionSummary is the terminal payload passed to the recorder when the
// session ends.
type SessionSummary struct {
	SessionID string            `json:"session_id"`
	PatientID string            `json:"patient_id,omitempty"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
	Questions int               `json:"questions"`
	Signals   []Signal          `json:"signals"`
	Profile   map[string]string `json:"profile,omitempty"`
}

// Prompt carries the structured parts of a text-generation request across
// the generator port. Wording is assembled by the caller; the generator is a
// black box that turns a prompt into text.
type Prompt struct {
	System string
	User   string
}
