package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/auth"
	"mavi-fit-game/internal/config"
	"mavi-fit-game/internal/domain"
	"mavi-fit-game/internal/infra/memory"
	"mavi-fit-game/internal/infra/postgres"
	infraredis "mavi-fit-game/internal/infra/redis"
	transport "mavi-fit-game/internal/transport/http"
)

// repositories is the storage backend chosen from the config.
type repositories struct {
	categories  app.CategoryRepository
	questions   app.QuestionStore
	loader      memory.QuestionLoader
	sessions    app.SessionRepository
	analytics   app.AnalyticsRepository
	badges      app.BadgeRepository
	users       app.UserRepository
	reports     app.ReportRepository
	leaderboard app.LeaderboardRepository
}

type runtime struct {
	services transport.Services
	users    *app.UserService
	tokens   *auth.TokenManager
	closers  []func()
}

func (r *runtime) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime wires storage, caches and services. Postgres backs everything when configured,
// otherwise an in-memory store is used; Redis, when configured, takes over the question cache,
// the leaderboard and (without Postgres) game sessions.
func buildRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, auth.DefaultTokenTTL))
	if err != nil {
		return nil, err
	}
	rt := &runtime{tokens: tokens}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}

	var repos repositories
	if cfg.Postgres.URL != "" {
		repos, err = postgresRepositories(ctx, cfg, rt)
	} else {
		repos, err = memoryRepositories(ctx)
	}
	if err != nil {
		rt.close()
		return nil, err
	}
	if redisClient != nil {
		repos.leaderboard = infraredis.NewLeaderboardStore(redisClient)
		if cfg.Postgres.URL == "" {
			repos.sessions = infraredis.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		}
	}

	questionTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var cache app.QuestionRepository
	if redisClient != nil {
		cache = infraredis.NewQuestionCache(redisClient, repos.loader, questionTTL)
	} else {
		cache = memory.NewQuestionCache(repos.loader, questionTTL)
	}

	timeLimit := time.Duration(cfg.Game.QuestionTimeLimitMs) * time.Millisecond
	loc := cfg.Badges.Location()
	badges := app.NewBadgeEngine(repos.badges, repos.users, repos.sessions, repos.analytics, app.BadgeRules{
		NightStartHour:      cfg.Badges.NightStartHour,
		NightEndHour:        cfg.Badges.NightEndHour,
		Location:            loc,
		QuestionTimeLimitMs: cfg.Game.QuestionTimeLimitMs,
		LastSecondMs:        cfg.Badges.LastSecondMs,
		LightningCount:      cfg.Badges.LightningCount,
		LightningWindowMs:   cfg.Badges.LightningWindowMs,
		PerfectGameMin:      cfg.Badges.PerfectGameMin,
		SpeedMinAnswers:     cfg.Badges.SpeedMinAnswers,
	})
	if err := badges.SeedCatalog(ctx); err != nil {
		rt.close()
		return nil, err
	}
	hub := app.NewLeaderboardHub(repos.leaderboard, app.DefaultLeaderboardSize)

	rt.users = app.NewUserService(repos.users, badges, tokens, auth.NewHasher(0), loc)
	rt.services = transport.Services{
		Game: app.NewGameService(app.GameDeps{
			Categories:  repos.categories,
			Questions:   cache,
			Sessions:    repos.sessions,
			Analytics:   repos.analytics,
			Users:       repos.users,
			Leaderboard: hub,
			Badges:      badges,
		}, app.ScoringPolicy{
			BasePoints:       cfg.Game.BasePoints,
			SpeedBonus:       cfg.Game.SpeedBonus,
			FastAnswerMs:     cfg.Game.FastAnswerMs,
			StreakThreshold:  cfg.Game.StreakThreshold,
			StreakMultiplier: cfg.Game.StreakMultiplier,
		}, timeLimit),
		Badges:  badges,
		Users:   rt.users,
		Catalog: app.NewCatalogService(repos.categories, repos.questions, cache, repos.badges),
		Reports: app.NewReportService(repos.reports, repos.questions),
		Analytics: app.NewAnalyticsService(repos.analytics, app.AnalyticsPolicy{
			MinAttempts:         cfg.Analytic.MinAttempts,
			WeakAccuracy:        cfg.Analytic.WeakAccuracy,
			QuestionTimeLimitMs: cfg.Game.QuestionTimeLimitMs,
		}),
		Leaderboard: hub,
		Tokens:      tokens,
	}
	return rt, nil
}

func postgresRepositories(ctx context.Context, cfg config.Config, rt *runtime) (repositories, error) {
	if err := runMigrations(ctx, cfg); err != nil {
		return repositories{}, err
	}
	db := postgres.Open(cfg.Postgres.URL)
	rt.closers = append(rt.closers, func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		return repositories{}, fmt.Errorf("postgres ping: %w", err)
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return repositories{}, fmt.Errorf("postgres pool: %w", err)
	}
	rt.closers = append(rt.closers, pool.Close)

	store := postgres.NewStore(db)
	return repositories{
		categories:  store,
		questions:   store,
		loader:      postgres.NewQuestionLoader(pool),
		sessions:    store,
		analytics:   store,
		badges:      store,
		users:       store,
		reports:     store,
		leaderboard: store,
	}, nil
}

func memoryRepositories(ctx context.Context) (repositories, error) {
	slog.Warn("no postgres configured, using the in-memory store")
	store := memory.NewStore()
	all := domain.QuizCategory{
		ID:                  "all-categories",
		Name:                "Tüm Kategoriler",
		Slug:                "tum-kategoriler",
		IsActive:            true,
		IsAllCategories:     true,
		CompletionBadgeCode: app.AllCategoriesBadgeCode,
		SortOrder:           1000,
		CreatedAt:           time.Now(),
	}
	if err := store.CreateCategory(ctx, &all); err != nil {
		return repositories{}, err
	}
	return repositories{
		categories:  store,
		questions:   store,
		loader:      store,
		sessions:    store,
		analytics:   store,
		badges:      store,
		users:       store,
		reports:     store,
		leaderboard: store,
	}, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
