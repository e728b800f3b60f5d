package app

import (
	"sync"
	"time"

	"github.com/mahmoud375/peace-cake/internal/domain"
	"github.com/mahmoud375/peace-cake/internal/game"
)

// Session is the authoritative in-memory state of one live game. All
// mutations go through methods that hold the session mutex, so concurrent
// host actions on the same session are linearized.
type Session struct {
	id        string
	quizID    string
	createdAt time.Time
	now       func() time.Time

	mu                sync.RWMutex
	phase             domain.GamePhase
	teams             []domain.Team
	used              map[string]struct{}
	usedOrder         []string
	currentQuestionID string
	questionOpenedAt  time.Time
	currentTurnIndex  int
	timerSeconds      int
	winners           []domain.Team
	subscribers       map[chan domain.Snapshot]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, quizID string, teams []domain.Team, timerSeconds int) *Session {
	return newSessionWithClock(id, quizID, teams, timerSeconds, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id, quizID string, teams []domain.Team, timerSeconds int, now func() time.Time) *Session {
	return &Session{
		id:           id,
		quizID:       quizID,
		createdAt:    now(),
		now:          now,
		phase:        domain.PhaseBoard,
		teams:        teams,
		used:         make(map[string]struct{}),
		timerSeconds: timerSeconds,
		subscribers:  make(map[chan domain.Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// QuizID returns the catalog quiz this session plays.
func (s *Session) QuizID() string {
	return s.quizID
}

func (s *Session) snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) selectable(quiz domain.Quiz) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return game.Selectable(quiz, s.used, s.currentQuestionID)
}

func (s *Session) startQuestion(questionID string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBoard {
		return domain.Snapshot{}, domain.ErrQuestionNotSelectable
	}
	if _, ok := s.used[questionID]; ok {
		return domain.Snapshot{}, domain.ErrQuestionNotSelectable
	}
	if s.currentQuestionID != "" && s.currentQuestionID != questionID {
		return domain.Snapshot{}, domain.ErrQuestionNotSelectable
	}

	s.currentQuestionID = questionID
	s.questionOpenedAt = s.now()
	return s.broadcastLocked(), nil
}

// resolveQuestion applies the host verdict for the question in play. The
// question must match the one in play; validation runs before any mutation so
// a failed call leaves the session untouched. totalQuestions drives the
// end-of-board check after the scores are applied.
func (s *Session) resolveQuestion(question domain.Question, res domain.Resolution, factor float64, totalQuestions int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBoard || s.currentQuestionID == "" || s.currentQuestionID != question.ID {
		return domain.Snapshot{}, domain.ErrNoActiveQuestion
	}
	if err := game.ValidateResolution(s.teams, res); err != nil {
		return domain.Snapshot{}, err
	}

	teamID, delta := game.Award(question.Points, factor, res)
	if teamID != "" {
		for i := range s.teams {
			if s.teams[i].ID == teamID {
				s.teams[i].Score += delta
				break
			}
		}
	}

	s.used[question.ID] = struct{}{}
	s.usedOrder = append(s.usedOrder, question.ID)
	s.currentQuestionID = ""
	s.questionOpenedAt = time.Time{}
	s.currentTurnIndex = game.NextTurn(s.currentTurnIndex, len(s.teams))

	s.finishIfBoardClearedLocked(totalQuestions)
	return s.broadcastLocked(), nil
}

// finishIfBoardClearedLocked is the explicit post-resolution check that ends
// the game once every catalog question has been used.
func (s *Session) finishIfBoardClearedLocked(totalQuestions int) {
	if totalQuestions > 0 && len(s.used) >= totalQuestions {
		s.endLocked()
	}
}

func (s *Session) setActiveTurn(teamIndex int) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if teamIndex < 0 || teamIndex >= len(s.teams) {
		return domain.Snapshot{}, domain.ErrInvalidTeam
	}
	s.currentTurnIndex = teamIndex
	return s.broadcastLocked(), nil
}

func (s *Session) end() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endLocked()
	return s.broadcastLocked()
}

func (s *Session) endLocked() {
	if s.phase == domain.PhaseGameOver {
		return
	}
	s.phase = domain.PhaseGameOver
	s.winners = game.Winners(s.teams)
	// Any in-flight question is discarded along with its timing state.
	s.currentQuestionID = ""
	s.questionOpenedAt = time.Time{}
}

// close drops every subscriber; used when the session is reset.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow host view never blocks the engine.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		ID:                s.id,
		QuizID:            s.quizID,
		Phase:             s.phase,
		Teams:             append([]domain.Team(nil), s.teams...),
		UsedQuestionIDs:   append([]string(nil), s.usedOrder...),
		CurrentQuestionID: s.currentQuestionID,
		CurrentTurnIndex:  s.currentTurnIndex,
		TimerSeconds:      s.timerSeconds,
		UpdatedAt:         s.now(),
	}
	if !s.questionOpenedAt.IsZero() {
		opened := s.questionOpenedAt
		deadline := game.RevealDeadline(opened, s.timerSeconds)
		snap.QuestionOpenedAt = &opened
		snap.RevealDeadline = &deadline
	}
	if len(s.winners) > 0 {
		snap.Winners = append([]domain.Team(nil), s.winners...)
	}
	return snap
}
