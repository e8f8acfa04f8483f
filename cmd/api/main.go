package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erselk/ugur-sahan-website/internal/api"
	"github.com/erselk/ugur-sahan-website/internal/auth"
	"github.com/erselk/ugur-sahan-website/internal/composer"
	"github.com/erselk/ugur-sahan-website/internal/config"
	"github.com/erselk/ugur-sahan-website/internal/contact"
	gdb "github.com/erselk/ugur-sahan-website/internal/db"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/events"
	"github.com/erselk/ugur-sahan-website/internal/jobs"
	"github.com/erselk/ugur-sahan-website/internal/log"
	"github.com/erselk/ugur-sahan-website/internal/media"
	"github.com/erselk/ugur-sahan-website/internal/metrics"
	"github.com/erselk/ugur-sahan-website/internal/posts"
	"github.com/erselk/ugur-sahan-website/internal/store"
	"github.com/erselk/ugur-sahan-website/internal/translate"
	"github.com/erselk/ugur-sahan-website/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting blog API server",
		"env", cfg.Env,
		"addr", cfg.HTTP.Addr,
		"db_backend", cfg.Database.Backend,
	)

	metricsObj, metricsHandler, err := metrics.Setup("blogd")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := gdb.Open(ctx, gdb.Config{
		Backend:     cfg.Database.Backend,
		DSN:         cfg.Database.PostgresDSN,
		MaxConns:    cfg.Database.MaxConns,
		AutoMigrate: cfg.Database.AutoMigrate,
	}, logger)
	if err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer database.Close()
	logger.Infow("Database initialized", "backend", database.Backend())

	if cfg.Database.SeedFixtures && cfg.Auth.AdminEmail != "" {
		hash, err := auth.HashPassword(cfg.Auth.AdminPassword)
		if err != nil {
			logger.Fatalw("Invalid admin password for seeding", "error", err)
		}
		admin, err := gdb.Seed(ctx, database, &domain.Profile{
			Email:        cfg.Auth.AdminEmail,
			DisplayName:  "Admin",
			Role:         domain.RoleAdmin,
			PasswordHash: hash,
		})
		if err != nil {
			logger.Fatalw("Failed to seed fixtures", "error", err)
		}
		logger.Infow("Fixtures seeded", "admin_id", admin.ID)
	}

	cache, err := store.NewCache(cfg.Cache.RedisAddr, logger, metricsObj)
	if err != nil {
		logger.Fatalw("Failed to setup cache", "error", err)
	}
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		logger.Fatalw("Cache ping failed", "error", err)
	}
	logger.Infow("Cache ready", "in_memory", cache.IsInMemoryMode())

	// RabbitMQ is optional; the websocket feed works without it.
	var broker events.Broker
	if cfg.Events.AMQPURL != "" {
		rabbit, err := events.NewRabbitMQ(events.RabbitMQConfig{
			URL:        cfg.Events.AMQPURL,
			Exchange:   cfg.Events.Exchange,
			RoutingKey: cfg.Events.RoutingKey,
			QueueName:  cfg.Events.Queue,
		}, logger)
		if err != nil {
			logger.Warnw("RabbitMQ unavailable; events stay local", "error", err)
		} else {
			defer rabbit.Close()
			broker = rabbit
		}
	}
	notifier := events.NewDispatcher(cache, store.ChannelEvents, broker, logger)

	translator := translate.NewClient(translate.Config{
		Endpoint: cfg.Translator.Endpoint,
		APIKey:   cfg.Translator.Key,
		Region:   cfg.Translator.Region,
		Timeout:  cfg.Translator.Timeout,
	}, logger, metricsObj)
	if !translator.Configured() {
		logger.Warnw("Translator key not set; translation requests will fail")
	}

	files, err := media.NewFileStore(cfg.Media.Dir, cfg.Media.PublicBase)
	if err != nil {
		logger.Fatalw("Failed to prepare media directory", "error", err)
	}

	postSvc := posts.NewService(
		database.Posts(),
		composer.New(translator, logger),
		cache,
		notifier,
		metricsObj,
		posts.Config{CacheTTL: cfg.Cache.TTL},
		logger,
	)
	contactSvc := contact.NewService(database.Messages(), notifier, metricsObj, logger)
	authSvc := auth.NewService(database.Profiles(), cache.KV(), auth.Config{
		SessionTTL:    cfg.Auth.SessionTTL,
		CookieName:    cfg.Auth.CookieName,
		SecureCookies: cfg.Auth.SecureCookies,
	}, logger)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	wsHub := ws.NewHub(cache, cfg.Security.CORSAllowedOrigins, logger, metricsObj)
	go wsHub.Run(hubCtx)

	if cfg.Events.StatsInterval > 0 {
		statsPublisher := jobs.NewStatsPublisher(postSvc, contactSvc, cache, logger, jobs.StatsPublisherConfig{
			Interval: cfg.Events.StatsInterval,
			Channel:  store.ChannelEvents,
		})
		go func() {
			if err := statsPublisher.Start(hubCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorw("Stats publisher stopped", "error", err)
			}
		}()
	}

	handler := api.NewHandler(api.Services{
		Posts:      postSvc,
		Contact:    contactSvc,
		Auth:       authSvc,
		Uploads:    media.NewUploader(files, cfg.Media.MaxBytes, logger, metricsObj),
		Translator: translator,
		Feed:       wsHub,
		Checks: map[string]api.HealthCheck{
			"database": database.Ping,
			"cache":    cache.Ping,
		},
	}, logger)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, api.RouterConfig{
		CORSOrigins:    cfg.Security.CORSAllowedOrigins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MediaDir:       files.Dir(),
		Metrics:        metricsHandler,
	})
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	server := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// write deadlines would cut the websocket; handlers have their own timeout
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("Server startup failed", "error", err)
		}
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		hubCancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
