package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/slemppa/storized/internal/adapter/repo"
	"github.com/slemppa/storized/internal/auth"
	"github.com/slemppa/storized/internal/authform"
	"github.com/slemppa/storized/internal/dashboard"
	"github.com/slemppa/storized/internal/domain"
	"github.com/slemppa/storized/internal/http/handlers"
	httpapi "github.com/slemppa/storized/internal/http/httpapi"
	"github.com/slemppa/storized/internal/http/views"
	"github.com/slemppa/storized/internal/infra"
	"github.com/slemppa/storized/internal/infra/geoip"
	"github.com/slemppa/storized/internal/middleware"
	"github.com/slemppa/storized/internal/providers/supabase"
	"github.com/slemppa/storized/internal/session"
	"github.com/slemppa/storized/internal/storage/sqlite"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := supabase.NewClient(supabase.Options{
		URL:            cfg.SupabaseURL,
		AnonKey:        cfg.SupabaseAnonKey,
		Logger:         &logger,
		RequestTimeout: cfg.BackendTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure supabase client")
	}

	verifier, err := auth.NewVerifier(auth.VerifierOptions{
		Secret:  cfg.SupabaseJWTSecret,
		JWKSURL: cfg.SupabaseJWKSURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure token verifier")
	}
	if !verifier.Verifies() {
		logger.Warn().Msg("no jwt secret or jwks url configured, token expiry is read without signature checks")
	}

	store, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.SessionDBPath).Msg("failed to open session store")
	}
	defer store.Close()

	var (
		users   domain.UserRepository
		content domain.ContentRepository
	)
	if cfg.UseDirectDatabase() {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		users = repo.NewUserRepository(runner)
		content = repo.NewContentRepository(runner)
		logger.Info().Msg("table access via direct database connection")
	} else {
		users = repo.NewUserRepositoryREST(client)
		content = repo.NewContentRepositoryREST(client)
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		lookup = resolver.Lookup()
	}

	sessions, err := session.NewManager(session.Options{
		Auth:   client,
		Users:  users,
		Store:  store,
		Tokens: verifier,
		TTL:    cfg.SessionTTL,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure sessions")
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	app := &handlers.App{
		Logger:       logger,
		Views:        renderer,
		Sessions:     sessions,
		AuthForm:     authform.NewService(client, users, logger),
		Content:      dashboard.NewLoader(content, store, logger),
		Store:        store,
		CookieSecure: cfg.CookieSecure,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:        logger,
		Sessions:      sessions,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: lookup,
		AuthRateLimit: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	sweeper := sqlite.NewSweeper(store, cfg.SweepInterval, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("session sweeper stopped")
		}
	}()

	go func() {
		logger.Info().Msgf("storized listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
