package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mahmoud375/peace-cake/internal/app"
	"github.com/mahmoud375/peace-cake/internal/config"
	"github.com/mahmoud375/peace-cake/internal/domain"
	"github.com/mahmoud375/peace-cake/internal/infra/memory"
	pgloader "github.com/mahmoud375/peace-cake/internal/infra/postgres"
	redisinfra "github.com/mahmoud375/peace-cake/internal/infra/redis"
	transport "github.com/mahmoud375/peace-cake/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 4*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		catalog = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}
	service := app.NewGameService(store, catalog, cfg.Rules())
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game session server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides a minimal board for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "General Knowledge",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "Which planet is closest to the sun?",
					Options:      []string{"Venus", "Mercury", "Mars", "Earth"},
					CorrectIndex: 1,
					Points:       10,
					Difficulty:   "Easy",
				},
				{
					ID:           "q2",
					Prompt:       "In what year did the Berlin Wall fall?",
					Options:      []string{"1987", "1989", "1991", "1993"},
					CorrectIndex: 1,
					Points:       20,
					Difficulty:   "Medium",
				},
				{
					ID:           "q3",
					Prompt:       "Name the largest moon of Saturn.",
					Options:      nil, // free-response
					CorrectIndex: 0,
					Points:       30,
					Difficulty:   "Hard",
				},
				{
					ID:           "q4",
					Prompt:       "Recite the first ten digits of pi after the decimal point.",
					Options:      nil, // free-response
					CorrectIndex: 0,
					Points:       40,
					Difficulty:   "Impossible",
				},
			},
		},
	}
}
