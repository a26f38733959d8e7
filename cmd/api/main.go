// Command api serves the logistics tracking portal.
//
// @title                       Tracking Portal API
// @version                     1.0
// @description                 Backend for the logistics tracking portal: shipment records, reports, users and team chat over a spreadsheet-backed store.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/pcp-logistica/tracking-portal/docs"
	"github.com/pcp-logistica/tracking-portal/internal/api"
	"github.com/pcp-logistica/tracking-portal/internal/core/service"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/db/mongo"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/db/redis"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/http/handlers"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/queue"
	"github.com/pcp-logistica/tracking-portal/internal/infrastructure/sheets"
	"github.com/pcp-logistica/tracking-portal/internal/pkg/config"
	"github.com/pcp-logistica/tracking-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// config + logger
	cfg, err := config.Load(ctx)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config load failed")
	}
	l := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction()})

	// storage
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		l.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		l.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		l.Warn().Err(err).Msg("audit index creation failed")
	}

	store := sheets.NewClient(sheets.Config{
		Endpoint:  cfg.Store.Endpoint,
		Retries:   cfg.Store.Retries,
		Backoff:   cfg.Store.Backoff,
		ViewerURL: cfg.Store.ViewerURL,
	}, logger.Component("sheets"))
	recordStore := sheets.NewRecordStore(store)
	userStore := sheets.NewUserStore(store)
	chatStore := sheets.NewChatStore(store)
	sessionStore := redis.NewSessionStore(rdb, cfg.Session.TTL)

	// audit workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component("audit"))
	dispatcher.Start(workerCtx)

	// services
	sessions := service.NewSessionService(sessionStore, userStore, logger.Component("session"))
	auth, err := service.NewAuthService(userStore, sessions, dispatcher, service.AuthConfig{
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.TokenTTL,
		BootstrapEmail:    cfg.Bootstrap.Email,
		BootstrapPassword: cfg.Bootstrap.Password,
	}, logger.Component("auth"))
	if err != nil {
		l.Fatal().Err(err).Msg("auth service init failed")
	}

	router := api.NewRouter(api.Services{
		Auth:     auth,
		Sessions: sessions,
		Records:  service.NewRecordService(recordStore, recordStore, dispatcher, logger.Component("records")),
		Reports:  service.NewReportService(recordStore, logger.Component("reports")),
		Users:    service.NewUserService(userStore, sessions, dispatcher, logger.Component("users")),
		Chat:     service.NewChatService(chatStore, userStore, recordStore, dispatcher, logger.Component("chat")),
		Audit:    auditRepo,
	}, api.Options{
		JWTSecret:        cfg.JWTSecret,
		CORSOrigins:      cfg.CORSOrigins,
		ChatPollInterval: cfg.Chat.PollInterval,
		Readiness: map[string]handlers.Check{
			"redis":   handlers.RedisCheck(rdb),
			"mongodb": handlers.MongoCheck(db),
			"store":   store.Ping,
		},
		Logger: logger.Component("http"),
	})

	// http
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Endpoint).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	l.Info().Msg("shutdown requested")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		l.Warn().Err(err).Msg("http shutdown incomplete")
	}
	stopWorkers()
	dispatcher.Wait()
	l.Info().Msg("shutdown complete")
}
