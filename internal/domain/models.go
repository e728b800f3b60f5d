package domain

import "time"

// GamePhase is the lifecycle stage of a live session. SETUP is the absence
// of a session; a stored session is always BOARD or GAMEOVER.
type GamePhase string

const (
	PhaseSetup    GamePhase = "SETUP"
	PhaseBoard    GamePhase = "BOARD"
	PhaseGameOver GamePhase = "GAMEOVER"
)

// Outcome is the host's verdict on an answer attempt.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// Team is a competing team and its accumulated score.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Question models one board question. Options may be empty for
// free-response questions; scoring rules are unaffected.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int      `json:"points"`
	Difficulty   string   `json:"difficulty,omitempty"`
}

// Quiz is the read-only question catalog for one game.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// StealAttempt is a second team's answer after an incorrect primary answer.
type StealAttempt struct {
	TeamID  string  `json:"teamId"`
	Outcome Outcome `json:"outcome"`
}

// Resolution is the host's full verdict for the question in play.
// Steal is only meaningful when the primary outcome is incorrect.
type Resolution struct {
	TeamID  string        `json:"teamId"`
	Outcome Outcome       `json:"outcome"`
	Steal   *StealAttempt `json:"stealAttempt,omitempty"`
}

// Rules is the read-only game parameter record, fixed for the engine's lifetime.
type Rules struct {
	PrimaryTimerSeconds int     `json:"primaryTimerSeconds"`
	StealTimerSeconds   int     `json:"stealTimerSeconds"`
	StealPointsFactor   float64 `json:"stealPointsFactor"`
	MinTeams            int     `json:"minTeams"`
	MaxTeams            int     `json:"maxTeams"`
}

// DefaultRules returns the stock parameters used when config leaves them unset.
func DefaultRules() Rules {
	return Rules{
		PrimaryTimerSeconds: 20,
		StealTimerSeconds:   5,
		StealPointsFactor:   0.5,
		MinTeams:            2,
		MaxTeams:            4,
	}
}

// Snapshot is the full session view returned by every engine operation,
// sufficient for the caller to re-render without further queries.
type Snapshot struct {
	ID                string     `json:"id"`
	QuizID            string     `json:"quizId"`
	Phase             GamePhase  `json:"phase"`
	Teams             []Team     `json:"teams"`
	UsedQuestionIDs   []string   `json:"usedQuestionIds"`
	CurrentQuestionID string     `json:"currentQuestionId,omitempty"`
	QuestionOpenedAt  *time.Time `json:"questionOpenedAt,omitempty"`
	RevealDeadline    *time.Time `json:"revealDeadline,omitempty"`
	CurrentTurnIndex  int        `json:"currentTurnIndex"`
	TimerSeconds      int        `json:"timerSeconds"`
	Winners           []Team     `json:"winners,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}
