package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mahmoud375/peace-cake/internal/domain"
)

// SessionStore abstracts where live sessions are kept (in-memory, Redis-backed, etc).
type SessionStore interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CatalogRepository loads read-only quiz content (from cache/backing store).
type CatalogRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GameService contains the host-facing game use cases. Every mutating
// operation validates against current state, applies atomically, and returns
// the full session snapshot so the caller can re-render without extra queries.
type GameService struct {
	sessions SessionStore
	catalog  CatalogRepository
	rules    domain.Rules
	now      func() time.Time
}

func NewGameService(store SessionStore, catalog CatalogRepository, rules domain.Rules) *GameService {
	return &GameService{
		sessions: store,
		catalog:  catalog,
		rules:    normalizeRules(rules),
		now:      time.Now,
	}
}

// NewGameServiceWithClock is test-only for deterministic timestamps.
func NewGameServiceWithClock(store SessionStore, catalog CatalogRepository, rules domain.Rules, now func() time.Time) *GameService {
	svc := NewGameService(store, catalog, rules)
	svc.now = now
	return svc
}

// Rules returns the read-only game parameter record.
func (s *GameService) Rules() domain.Rules {
	return s.rules
}

// CreateSession starts a new game for quizID with the given teams in turn
// order. timerSeconds overrides the primary reveal timer when positive.
func (s *GameService) CreateSession(ctx context.Context, quizID string, teamNames []string, timerSeconds int) (domain.Snapshot, error) {
	names := make([]string, 0, len(teamNames))
	for _, name := range teamNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return domain.Snapshot{}, domain.ErrInvalidTeamCount
		}
		names = append(names, trimmed)
	}
	if len(names) < s.rules.MinTeams || len(names) > s.rules.MaxTeams {
		return domain.Snapshot{}, domain.ErrInvalidTeamCount
	}

	// Hosts cannot start sessions for unknown quizzes.
	if _, err := s.loadQuiz(ctx, quizID); err != nil {
		return domain.Snapshot{}, err
	}

	teams := make([]domain.Team, 0, len(names))
	for _, name := range names {
		teams = append(teams, domain.Team{ID: uuid.NewString(), Name: name})
	}

	if timerSeconds <= 0 {
		timerSeconds = s.rules.PrimaryTimerSeconds
	}
	session := newSessionWithClock(uuid.NewString(), quizID, teams, timerSeconds, s.now)
	s.sessions.Put(session)
	return session.snapshot(), nil
}

// GetSession returns the current snapshot for a live session.
func (s *GameService) GetSession(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// SelectableQuestions lists the question ids the host may start right now.
func (s *GameService) SelectableQuestions(ctx context.Context, sessionID string) ([]string, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	quiz, err := s.loadQuiz(ctx, session.QuizID())
	if err != nil {
		return nil, err
	}
	return session.selectable(quiz), nil
}

// StartQuestion puts a question in play and stamps the authoritative start of
// its reveal timer.
func (s *GameService) StartQuestion(ctx context.Context, sessionID, questionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	if _, err := s.requireQuestion(ctx, session.QuizID(), questionID); err != nil {
		return domain.Snapshot{}, err
	}
	return session.startQuestion(questionID)
}

// ResolveQuestion records the host verdict for the question in play, applies
// the score change, and retires the question. When the last catalog question
// is used the session transitions to GAMEOVER.
func (s *GameService) ResolveQuestion(ctx context.Context, sessionID, questionID string, res domain.Resolution) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	quiz, err := s.loadQuiz(ctx, session.QuizID())
	if err != nil {
		return domain.Snapshot{}, err
	}
	question, ok := findQuestion(quiz, questionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrQuestionNotFound
	}
	return session.resolveQuestion(question, res, s.rules.StealPointsFactor, len(quiz.Questions))
}

// SetActiveTurn moves the turn pointer to the team at teamIndex.
func (s *GameService) SetActiveTurn(_ context.Context, sessionID string, teamIndex int) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.setActiveTurn(teamIndex)
}

// EndGame force-transitions the session to GAMEOVER; idempotent when the
// game is already over.
func (s *GameService) EndGame(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.end(), nil
}

// ResetSession discards the session unconditionally, returning the host to
// setup. Resetting an unknown session is a no-op.
func (s *GameService) ResetSession(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.close()
	s.sessions.Delete(sessionID)
}

// Subscribe returns a channel that receives a snapshot after every mutation
// of the session. The caller must invoke the returned cancel function to
// avoid leaks.
func (s *GameService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

func (s *GameService) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return domain.Quiz{}, err
		}
		return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return quiz, nil
}

func (s *GameService) requireQuestion(ctx context.Context, quizID, questionID string) (domain.Question, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	question, ok := findQuestion(quiz, questionID)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func findQuestion(quiz domain.Quiz, questionID string) (domain.Question, bool) {
	for _, q := range quiz.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return domain.Question{}, false
}

func normalizeRules(r domain.Rules) domain.Rules {
	defaults := domain.DefaultRules()
	if r.PrimaryTimerSeconds <= 0 {
		r.PrimaryTimerSeconds = defaults.PrimaryTimerSeconds
	}
	if r.StealTimerSeconds <= 0 {
		r.StealTimerSeconds = defaults.StealTimerSeconds
	}
	if r.StealPointsFactor <= 0 {
		r.StealPointsFactor = defaults.StealPointsFactor
	}
	if r.MinTeams <= 0 {
		r.MinTeams = defaults.MinTeams
	}
	if r.MaxTeams <= 0 {
		r.MaxTeams = defaults.MaxTeams
	}
	return r
}
