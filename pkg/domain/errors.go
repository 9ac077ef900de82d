package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in a store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionClosed is returned by an input handler when the respondent quits.
// It is a first-class transition, not a failure.
var ErrSessionClosed = errors.New("session closed by respondent")

// ErrNoQuestions is returned when a loaded question file yields no questions.
var ErrNoQuestions = errors.New("question set is empty")
