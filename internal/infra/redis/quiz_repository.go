package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mahmoud375/peace-cake/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches the scoring view of a quiz in Redis (hash per quiz)
// and falls back to a loader on cache miss.
// Points are stored as:     HSET quiz:{quizID}:points     {questionID} {points}
// Difficulty is stored as:  HSET quiz:{quizID}:difficulty {questionID} {label}
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	pointKey := r.pointsKey(quizID)
	difficultyKey := r.difficultyKey(quizID)

	points, err := r.client.HGetAll(ctx, pointKey).Result()
	if err == nil && len(points) > 0 {
		difficulties, _ := r.client.HGetAll(ctx, difficultyKey).Result()
		return buildQuizFromCache(quizID, points, difficulties), nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		points, err := r.client.HGetAll(ctx, pointKey).Result()
		if err == nil && len(points) > 0 {
			difficulties, _ := r.client.HGetAll(ctx, difficultyKey).Result()
			return buildQuizFromCache(quizID, points, difficulties), nil
		}

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, q := range quiz.Questions {
			pipe.HSet(ctx, pointKey, q.ID, q.Points)
			if q.Difficulty != "" {
				pipe.HSet(ctx, difficultyKey, q.ID, q.Difficulty)
			}
		}
		if ttl > 0 {
			pipe.Expire(ctx, pointKey, ttl)
			pipe.Expire(ctx, difficultyKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) pointsKey(quizID string) string {
	return "quiz:" + quizID + ":points"
}

func (r *QuizRepository) difficultyKey(quizID string) string {
	return "quiz:" + quizID + ":difficulty"
}

// buildQuizFromCache rebuilds the scoring view the engine needs: question
// ids, points, and the total count. Prompts and options are not cached in
// this lightweight form; the host UI reads them from the authoring side.
func buildQuizFromCache(quizID string, points map[string]string, difficulties map[string]string) domain.Quiz {
	questions := make([]domain.Question, 0, len(points))
	for questionID, raw := range points {
		p, err := strconv.Atoi(raw)
		if err != nil || p <= 0 {
			continue
		}
		questions = append(questions, domain.Question{
			ID:         questionID,
			Points:     p,
			Difficulty: difficulties[questionID],
		})
	}
	return domain.Quiz{ID: quizID, Questions: questions}
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
