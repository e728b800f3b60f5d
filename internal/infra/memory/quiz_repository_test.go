package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mahmoud375/peace-cake/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].Points != 10 {
		t.Fatalf("unexpected quiz content: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestStaticLoaderUnknownQuiz(t *testing.T) {
	loader := NewStaticQuizLoader(map[string]domain.Quiz{})
	if _, err := loader.LoadQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{
				ID:           "q1",
				Prompt:       "Which planet is closest to the sun?",
				Options:      []string{"Venus", "Mercury"},
				CorrectIndex: 1,
				Points:       10,
				Difficulty:   "Easy",
			},
			{
				ID:         "q2",
				Prompt:     "Name the largest moon of Saturn.",
				Points:     30,
				Difficulty: "Hard",
			},
		},
	}
}
