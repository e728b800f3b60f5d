package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session exists for the given id.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrInvalidTeamCount is returned when the team list is outside the configured
	// bounds or contains a blank name.
	ErrInvalidTeamCount = errors.New("invalid team count")
	// ErrQuestionNotSelectable is returned when a question is already used or a
	// different question is currently in play.
	ErrQuestionNotSelectable = errors.New("question not selectable")
	// ErrNoActiveQuestion is returned when a resolution names a question that is
	// not the one in play.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrInvalidTeam is returned when a resolution or turn change references a
	// team that is not part of the session.
	ErrInvalidTeam = errors.New("team not found in session")
	// ErrSelfSteal is returned when a steal attempt names the team that just
	// answered incorrectly.
	ErrSelfSteal = errors.New("steal attempt by answering team")
	// ErrInvalidOutcome is returned when an outcome is neither correct nor incorrect.
	ErrInvalidOutcome = errors.New("outcome must be correct or incorrect")
	// ErrQuizNotFound indicates the quiz content could not be located.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID outside the quiz catalog.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCatalogUnavailable wraps unexpected failures from the question catalog.
	ErrCatalogUnavailable = errors.New("question catalog unavailable")
)
