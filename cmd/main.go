package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/manglemix/pony-express/internal/client"
	"github.com/manglemix/pony-express/internal/config"
	"github.com/manglemix/pony-express/internal/handler"
	"github.com/manglemix/pony-express/internal/middleware"
	"github.com/manglemix/pony-express/internal/query"
	"github.com/manglemix/pony-express/internal/service"
	"github.com/manglemix/pony-express/internal/session"
	pkglog "github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(cfg.Log)
	logger := pkglog.L()

	checks := make(map[string]handler.Pinger)
	redisOpts := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Initialize session store
	var store session.Store
	switch cfg.Session.Driver {
	case config.DriverRedis:
		rs, err := session.NewRedisStore(redisOpts, cfg.Session.Prefix, cfg.Session.TTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect session store to redis")
		}
		checks["session_store"] = rs
		store = rs
	case config.DriverMemory:
		store = session.NewMemoryStore(cfg.Session.TTL)
	default:
		logger.Fatal().Str("driver", cfg.Session.Driver).Msg("unknown session driver")
	}
	defer store.Close()

	// Initialize query cache
	var backend query.Backend
	switch cfg.Query.Driver {
	case config.DriverRedis:
		rb, err := query.NewRedisBackend(redisOpts, cfg.Query.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect query cache to redis")
		}
		checks["query_cache"] = rb
		backend = rb
	case config.DriverMemory:
		backend = query.NewMemoryBackend()
	default:
		logger.Fatal().Str("driver", cfg.Query.Driver).Msg("unknown query driver")
	}
	queries := query.New(backend, cfg.Query.TTL, query.WithLoadTimeout(cfg.Backend.Timeout))
	defer queries.Close()

	// Initialize backend client and services
	api := client.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	sessions := session.NewManager(store, api, queries)
	userService := service.NewUserService(api, queries, sessions)
	chatService := service.NewChatService(api, queries, cfg.Display.Location())

	var msgOpts []service.MessageServiceOption
	switch cfg.Events.Driver {
	case config.DriverRedis:
		bus, err := pubsub.NewRedisPubSub(redisOpts)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect event bus to redis")
		}
		defer bus.Close()
		checks["event_bus"] = bus
		msgOpts = append(msgOpts, service.WithBoardEvents(bus))
	case config.DriverMemory:
	default:
		logger.Fatal().Str("driver", cfg.Events.Driver).Msg("unknown events driver")
	}
	messageService := service.NewMessageService(api, queries, userService, msgOpts...)

	ctx, cancel := context.WithCancel(pkglog.WithLogger(context.Background(), logger))
	defer cancel()

	if err := messageService.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to follow board events")
	}

	cookies := middleware.NewSessionMiddleware(sessions, middleware.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.TTL,
		Secure: cfg.Session.SecureCookie,
	})

	httpHandler := handler.NewHandler(sessions, cookies, userService, chatService, messageService, cfg.Display.Location())

	tmpl, err := handler.Templates()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	r.SetHTMLTemplate(tmpl)

	// Health check
	r.GET("/health", handler.Health(checks))

	// Register routes
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", addr).
			Str("backend", cfg.Backend.BaseURL).
			Str("session_driver", cfg.Session.Driver).
			Str("query_driver", cfg.Query.Driver).
			Str("events_driver", cfg.Events.Driver).
			Msg("pony-express web client listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down pony-express web client")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	// Let background edits and deletes reach the backend.
	messageService.Wait()
	cancel()

	logger.Info().Msg("pony-express web client stopped")
}
