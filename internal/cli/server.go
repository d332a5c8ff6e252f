package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/config"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
	"quiz-session-engine/internal/infra/postgres"
	redisstore "quiz-session-engine/internal/infra/redis"
	transport "quiz-session-engine/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
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
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader
	switch {
	case pool != nil:
		loader = postgres.NewQuizLoader(pool)
	case cfg.Quiz.Dir != "":
		loader = memory.NewFileQuizLoader(cfg.Quiz.Dir)
	default:
		loader = memory.NewStaticQuizLoader(sampleQuizzes())
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	var attempts app.AttemptRepository
	if redisClient != nil {
		attempts = redisstore.NewAttemptStore(redisClient, attemptTTL)
	} else {
		attempts = memory.NewAttemptStore()
	}

	var results app.ResultRepository
	switch {
	case cfg.Postgres.URL != "":
		db := postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		results = postgres.NewResultStore(db)
	case redisClient != nil:
		results = redisstore.NewResultStore(redisClient, cfg.HistoryLimit())
	default:
		results = memory.NewResultStore(cfg.HistoryLimit())
	}

	service := app.NewQuizService(attempts, quizRepo, results, app.WithLogger(logger))
	router := transport.NewRouter(
		transport.NewAPI(service, logger),
		transport.NewWSHandler(service, logger),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting quiz service", "port", finalPort, "redis", redisClient != nil, "postgres", pool != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes is served when neither Postgres nor a quiz directory is configured.
func sampleQuizzes() map[string]domain.QuizDefinition {
	return map[string]domain.QuizDefinition{
		"newton-basics": {
			ID:         "newton-basics",
			Difficulty: domain.DifficultyMedium,
			Mode:       domain.ModeAI,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "Which of the following correctly describes Newton's First Law of Motion?",
					Options: []string{
						"An object at rest stays at rest unless acted upon by a force",
						"Force equals mass times acceleration",
						"Every action has an equal and opposite reaction",
						"Energy cannot be created or destroyed",
					},
					CorrectOptionIndex: 0,
					Explanation:        "The first law, the law of inertia, says motion only changes when an external force acts.",
					Topic:              "Mechanics",
					Difficulty:         domain.DifficultyEasy,
				},
				{
					ID:     "q2",
					Prompt: "A 2 kg cart accelerates at 3 m/s². What net force acts on it?",
					Options: []string{
						"1.5 N",
						"5 N",
						"6 N",
						"9 N",
					},
					CorrectOptionIndex: 2,
					Explanation:        "F = m·a = 2 kg × 3 m/s² = 6 N.",
					Topic:              "Mechanics",
					Difficulty:         domain.DifficultyMedium,
				},
			},
		},
	}
}
