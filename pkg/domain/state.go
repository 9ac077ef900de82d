package domain

// Mode defines whether the engine is asking a main question or a bounded
// deepening follow-up.
type Mode string

const (
	// ModeMain means the current turn belongs to a main question.
	ModeMain Mode = "main"
	// ModeDeepening means the current turn is a follow-up within a
	// deepening episode.
	ModeDeepening Mode = "deepening"
)

// QARecord is one entry of the append-only question/answer history.
// Deepening turns produce entries too; BridgeReply is filled in only after
// the bridge for the owning main question has been generated.
type QARecord struct {
	QuestionID  int    `json:"question_id"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	BridgeReply string `json:"bridge_reply"`
}

// Signal is the classification outcome for one main-question answer.
// Exactly one Signal is collected per main question that reached
// classification, regardless of how many deepening turns followed.
type Signal struct {
	QuestionID int    `json:"question_id"`
	Evasive    bool   `json:"evasive"`
	Theme      string `json:"theme,omitempty"`
}

// SessionState is the single mutable record of one interview session.
// It is owned exclusively by the turn sequencer for the session lifetime;
// collaborators receive copies of its records, never the struct itself.
type SessionState struct {
	// SessionID identifies the session for persistence and recording.
	SessionID string `json:"session_id"`

	// CurrentIndex points into the main question sequence (0-based).
	// It increases monotonically.
	CurrentIndex int `json:"current_index"`

	// Mode tells whether the next ASK presents a main question or a
	// deepening follow-up.
	Mode Mode `json:"mode"`

	// PendingQuestion overrides the displayed question while deepening.
	PendingQuestion string `json:"pending_question,omitempty"`

	// CurrentQuestion is the main question text selected for this turn.
	CurrentQuestion string `json:"current_question,omitempty"`

	// LastAnswer is the transient answer of the in-flight turn. It is
	// cleared when the turn is saved to QAHistory.
	LastAnswer string `json:"last_answer,omitempty"`

	// ProfileContext is the retrieved respondent context for the current
	// main question, used as auxiliary input to bridge generation.
	ProfileContext string `json:"profile_context,omitempty"`

	// BranchCount counts deepening turns taken for the current main
	// question. Reset to zero exactly when CurrentIndex advances.
	BranchCount int `json:"branch_count"`

	// BranchType is the category that opened the current deepening episode
	// ("evasive" or a theme id). It is retained for the whole episode and
	// never overwritten mid-loop.
	BranchType string `json:"branch_type,omitempty"`

	// QAHistory is the append-only log of every question asked (main or
	// deepening) and its answer.
	QAHistory []QARecord `json:"qa_history"`

	// Signals holds one classification per answered main question.
	Signals []Signal `json:"signals"`

	// Done marks the session as terminal.
	Done bool `json:"done"`
}

// NewSessionState creates a clean state positioned before the first main
// question, with all counters zeroed.
func NewSessionState(sessionID string) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Mode:      ModeMain,
		QAHistory: []QARecord{},
		Signals:   []Signal{},
	}
}

// LastQA returns a pointer to the most recent history entry, or nil when the
// history is empty. The pointer aliases the slice element so the sequencer
// can fill in the bridge reply after generation.
func (s *SessionState) LastQA() *QARecord {
	if len(s.QAHistory) == 0 {
		return nil
	}
	return &s.QAHistory[len(s.QAHistory)-1]
}

// ResetBranch clears the deepening bookkeeping when the engine advances to
// the next main question.
func (s *SessionState) ResetBranch() {
	s.BranchCount = 0
	s.BranchType = ""
	s.PendingQuestion = ""
	s.Mode = ModeMain
}
