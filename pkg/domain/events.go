package domain

import (
	"context"
	"time"
)

// TurnEvent describes one completed turn (main or deepening).
type TurnEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	QuestionID int       `json:"question_id"`
	Mode       Mode      `json:"mode"`
	Evasive    bool      `json:"evasive"`
	Theme      string    `json:"theme,omitempty"`
}

// BranchEvent describes entry into (or continuation of) a deepening episode.
type BranchEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Category  string    `json:"category"`
	Depth     int       `json:"depth"`
}

// SessionEvent describes session termination.
type SessionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Questions int       `json:"questions"`
	Completed bool      `json:"completed"`
}

// LifecycleHooks defines optional callbacks for engine observability.
// Nil hooks are skipped.
type LifecycleHooks struct {
	OnTurn               func(context.Context, *TurnEvent)
	OnBranch             func(context.Context, *BranchEvent)
	OnGenerationFallback func(context.Context, string)
	OnSessionEnd         func(context.Context, *SessionEvent)
}
