package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/reel/internal/bookmarks"
	"github.com/MrSnakeDoc/reel/internal/config"
	"github.com/MrSnakeDoc/reel/internal/httpserver"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/index"
	"github.com/MrSnakeDoc/reel/internal/logger"
	"github.com/MrSnakeDoc/reel/internal/redis"
	"github.com/MrSnakeDoc/reel/internal/scheduler"
	"github.com/MrSnakeDoc/reel/internal/session"
	"github.com/MrSnakeDoc/reel/internal/sources/sections"
	redisstore "github.com/MrSnakeDoc/reel/internal/store/redis"
	"github.com/MrSnakeDoc/reel/internal/store/sqlite"
	"github.com/MrSnakeDoc/reel/internal/supabase"
	"github.com/MrSnakeDoc/reel/internal/tmdb"
	"github.com/MrSnakeDoc/reel/internal/utils"
	"github.com/MrSnakeDoc/reel/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sqliteTable *sqlite.BookmarkTable
	reloader    *scheduler.SectionsReloader
	janitor     *scheduler.Janitor
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Session store first - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient, cfg.SessionTTL)
	memIndex := index.NewMemoryIndex()

	provider := supabase.NewProvider(supabase.Options{
		URL:       cfg.SupabaseURL,
		Key:       cfg.SupabaseKey,
		JWTSecret: cfg.SupabaseJWTSecret,
	}, loggerClient)
	if _, err := provider.Handle(); err != nil {
		// Not fatal: catalog routes still work, auth answers 503.
		loggerClient.Warn("supabase not configured, sign-in disabled", logger.Error(err))
	}

	tmdbClient := tmdb.New(tmdb.Options{
		BaseURL:   cfg.TMDBBaseURL,
		Token:     cfg.TMDBToken,
		RateLimit: cfg.TMDBRateLimit,
		Burst:     cfg.TMDBBurst,
	}, loggerClient.Named("tmdb"))
	loggerClient.Info("catalog client ready", logger.String("base_url", tmdbClient.BaseURL()))

	var (
		tables      session.TableFactory
		sqliteTable *sqlite.BookmarkTable
	)
	switch cfg.BookmarkBackend {
	case config.BackendSQLite:
		sqliteTable, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to open bookmark database: %w", err)
		}
		loggerClient.Info("bookmarks stored locally", logger.String("path", cfg.SQLitePath))
		tables = func(*session.Session) bookmarks.Table { return sqliteTable }
	default:
		loggerClient.Info("bookmarks stored in supabase")
		tables = func(s *session.Session) bookmarks.Table { return supabase.NewBookmarkTable(provider, s) }
	}

	manager := session.NewManager(session.ManagerOptions{
		Index:  memIndex,
		Store:  store,
		Auth:   session.FromSupabase(provider),
		Tables: tables,
	}, loggerClient.Named("sessions"))

	catalog := sections.NewCatalog()
	sectionsTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewSectionsReloader(
		cfg.SectionsFile,
		catalog,
		loggerClient,
		cfg.SectionsReloadInterval,
		sectionsTrigger,
	)

	janitor := scheduler.NewJanitor(
		store,
		memIndex,
		loggerClient,
		cfg.JanitorInterval,
		cfg.SessionIdle,
	)

	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Build:            version.Get(),
		TimeNow:          time.Now,
		AllowedHosts:     cfg.AllowedHosts,
		AllowedCIDRS:     cfg.AllowedCIDRS,
		TrustProxy:       cfg.TrustProxy,
		CORSOrigins:      cfg.CORSOrigins,
		CookieSecure:     cfg.CookieSecure,
		SessionTTL:       cfg.SessionTTL,
		AuthBurst:        cfg.AuthBurst,
		AuthRefillPerMin: cfg.AuthRefillPerMin,
		TMDB:             tmdbClient,
		Supabase:         provider,
		Sessions:         manager,
		Index:            memIndex,
		SessionStore:     store,
		Catalog:          catalog,
		SectionsTrigger:  sectionsTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sqliteTable: sqliteTable,
		reloader:    reloader,
		janitor:     janitor,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Reel %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.Get().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sections reloader: %w", err)
	}
	a.logger.Info("sections reloader started",
		logger.Duration("interval", a.cfg.SectionsReloadInterval))

	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session janitor: %w", err)
	}
	a.logger.Info("session janitor started",
		logger.Duration("interval", a.cfg.JanitorInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ Reel stopped cleanly")
	return nil
}

func (a *App) close() {
	if a.sqliteTable != nil {
		utils.CloseLogged(a.sqliteTable, a.logger, "bookmark database")
	}
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, a.logger, "redis")
	}
	_ = a.logger.Sync()
}
