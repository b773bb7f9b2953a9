package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-draft/external/statsfeed"
	"github.com/riskibarqy/fantasy-draft/internal/config"
	"github.com/riskibarqy/fantasy-draft/internal/domain/chip"
	"github.com/riskibarqy/fantasy-draft/internal/domain/draft"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/domain/player"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/account/identity"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-draft/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-draft/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/fantasy-draft/internal/platform/id"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

type repositories struct {
	players      player.Repository
	participants participant.Repository
	drafts       draft.Repository
	chips        chip.Repository
	scores       scoring.ScoreRepository
	selections   scoring.SelectionRepository
	calendar     scoring.CalendarRepository
	defaultOrder []string
}

// Services groups the usecases so cmd tools can drive them without HTTP.
type Services struct {
	Players     *usecase.PlayerService
	Drafts      *usecase.DraftService
	Chips       *usecase.ChipService
	Scoring     *usecase.ScoringService
	Leaderboard *usecase.LeaderboardService
	Schedule    *usecase.ScheduleService
}

// NewServices wires repositories, the stats feed and every usecase. The
// returned cleanup closes the database handle when one was opened.
func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, cleanup, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := newJobPublisher(cfg, logger)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	ids := idgen.NewUUIDGenerator()
	services := &Services{
		Players: usecase.NewPlayerService(repos.players),
		Drafts: usecase.NewDraftService(
			usecase.DefaultDraftID,
			repos.drafts,
			repos.players,
			repos.participants,
			ids,
			logger.Named("draft"),
		),
		Chips: usecase.NewChipService(
			usecase.DefaultDraftID,
			repos.chips,
			repos.drafts,
			repos.participants,
			ids,
			logger.Named("chip"),
		),
		Scoring: usecase.NewScoringService(
			usecase.DefaultDraftID,
			repos.drafts,
			repos.chips,
			repos.scores,
			repos.selections,
			repos.calendar,
			newStatsFeed(cfg, logger),
			usecase.ScoringConfig{
				AutoSubstitute: cfg.ScoringAutoSubstitute,
				Workers:        cfg.ScoringWorkers,
			},
			logger.Named("scoring"),
		),
		Leaderboard: usecase.NewLeaderboardService(
			usecase.DefaultDraftID,
			repos.drafts,
			repos.participants,
			repos.scores,
		),
		Schedule: usecase.NewScheduleService(
			repos.calendar,
			publisher,
			cfg.ScoringComputeDelay,
			logger.Named("schedule"),
		),
	}

	order := cfg.DraftOrder
	if len(order) == 0 {
		order = repos.defaultOrder
	}
	if err := configureDraft(ctx, services.Drafts, cfg, order, logger); err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	return services, cleanup, nil
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	services, cleanup, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(
		services.Players,
		services.Drafts,
		services.Chips,
		services.Scoring,
		services.Leaderboard,
		services.Schedule,
		logger.Named("http"),
	)
	router := httpapi.NewRouter(handler, newTokenVerifier(cfg, logger), logger.Named("http"), httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, cleanup, nil
}

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	if cfg.StoreBackend != config.StorePostgres {
		store := memory.NewSeededStore(
			memory.SeedPlayers(),
			memory.SeedParticipants(),
			memory.SeedCalendar(cfg.SeedCalendarStart, cfg.SeedCalendarWeeks),
		)
		logger.Info("using in-memory store", "players", len(memory.SeedPlayers()))
		return repositories{
			players:      memory.NewPlayerRepository(store),
			participants: memory.NewParticipantRepository(store),
			drafts:       memory.NewDraftRepository(store),
			chips:        memory.NewChipRepository(store),
			scores:       memory.NewScoreRepository(store),
			selections:   memory.NewSelectionRepository(store),
			calendar:     memory.NewCalendarRepository(store),
			defaultOrder: memory.SeedDraftOrder(),
		}, func() error { return nil }, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, nil, err
	}
	if cfg.AppEnv != config.EnvProd {
		if err := postgres.BootstrapSeed(ctx, db, cfg.SeedCalendarStart, cfg.SeedCalendarWeeks); err != nil {
			_ = db.Close()
			return repositories{}, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
	}
	logger.Info("using postgres store", "db_name", dbNameFromURL(cfg.DBURL))

	return repositories{
		players:      postgres.NewPlayerRepository(db),
		participants: postgres.NewParticipantRepository(db),
		drafts:       postgres.NewDraftRepository(db),
		chips:        postgres.NewChipRepository(db),
		scores:       postgres.NewScoreRepository(db),
		selections:   postgres.NewSelectionRepository(db),
		calendar:     postgres.NewCalendarRepository(db),
	}, db.Close, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func newStatsFeed(cfg config.Config, logger *logging.Logger) playerstats.Feed {
	var upstream playerstats.Feed
	if cfg.StatsFeedDir != "" {
		logger.Info("stats feed reads local files", "dir", cfg.StatsFeedDir)
		upstream = statsfeed.NewFileFeed(cfg.StatsFeedDir)
	} else {
		upstream = statsfeed.NewClient(statsfeed.ClientConfig{
			BaseURL:        cfg.StatsFeedBaseURL,
			Token:          cfg.StatsFeedToken,
			Timeout:        cfg.StatsFeedTimeout,
			MaxRetries:     cfg.StatsFeedMaxRetries,
			RetryBackoff:   cfg.StatsFeedRetryBackoff,
			Logger:         logger.Named("statsfeed"),
			CircuitBreaker: breakerConfig(cfg.StatsFeedCircuit),
		})
	}
	return statsfeed.NewCachedFeed(upstream, cfg.FeedCacheTTL)
}

// newJobPublisher returns nil when QStash is not configured; scheduling then
// reports the queue as unavailable.
func newJobPublisher(cfg config.Config, logger *logging.Logger) (usecase.JobPublisher, error) {
	if cfg.QStashToken == "" {
		logger.Info("job queue disabled", "reason", "QSTASH_TOKEN empty")
		return nil, nil
	}
	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		Timeout:          cfg.QStashTimeout,
		CircuitBreaker:   breakerConfig(cfg.QStashCircuit),
		Logger:           logger.Named("qstash"),
	})
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}

func newTokenVerifier(cfg config.Config, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.IdentityBaseURL == "" && len(cfg.IdentityStaticTokens) > 0 {
		logger.Warn("identity uses static tokens", "tokens", len(cfg.IdentityStaticTokens))
		return identity.NewStaticVerifier(cfg.IdentityStaticTokens)
	}
	return identity.NewClient(identity.ClientConfig{
		BaseURL:        cfg.IdentityBaseURL,
		IntrospectPath: cfg.IdentityIntrospectPath,
		AdminKey:       cfg.IdentityAdminKey,
		Timeout:        cfg.IdentityTimeout,
		CacheTTL:       cfg.IdentityCacheTTL,
		CircuitBreaker: breakerConfig(cfg.IdentityCircuit),
		Logger:         logger.Named("identity"),
	})
}

func breakerConfig(c config.CircuitConfig) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          c.Enabled,
		FailureThreshold: c.FailureThreshold,
		OpenTimeout:      c.OpenTimeout,
		HalfOpenMaxReq:   c.HalfOpenMaxReq,
	}
}

// configureDraft creates the draft once. An existing draft is left untouched.
func configureDraft(ctx context.Context, drafts *usecase.DraftService, cfg config.Config, order []string, logger *logging.Logger) error {
	if len(order) == 0 {
		logger.Warn("draft not configured", "reason", "DRAFT_ORDER empty")
		return nil
	}

	state, err := drafts.Configure(ctx, usecase.ConfigureDraftInput{
		Order:     order,
		OrderMode: cfg.DraftOrderMode,
		Quota:     cfg.DraftQuota,
	})
	switch {
	case errors.Is(err, draft.ErrAlreadyConfigured):
		logger.Info("draft already configured", "draft_id", usecase.DefaultDraftID)
		return nil
	case err != nil:
		return fmt.Errorf("configure draft: %w", err)
	}

	logger.Info("draft configured",
		"draft_id", state.ID,
		"participants", len(state.Order),
		"order_mode", string(state.OrderMode),
		"quota", state.Quota,
	)
	return nil
}
