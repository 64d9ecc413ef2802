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

	"github.com/securevote/election-system/internal/api"
	"github.com/securevote/election-system/internal/infrastructure/config"
	mongodb "github.com/securevote/election-system/internal/infrastructure/db/mongo"
	redisdb "github.com/securevote/election-system/internal/infrastructure/db/redis"
	"github.com/securevote/election-system/internal/infrastructure/face"
	"github.com/securevote/election-system/internal/infrastructure/media"
	"github.com/securevote/election-system/internal/infrastructure/notify"
	"github.com/securevote/election-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{})
		logger.Get().Fatal().Err(err).Msg("configuration error")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	// The unique indexes are the correctness guard for enrollment and
	// single-ballot casting; refuse to serve without them.
	if err := mongodb.NewVoterRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("voter index creation failed")
	}
	if err := mongodb.NewBallotRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ballot index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Collaborators ---
	embedder := face.NewClient(cfg.Face.URL, cfg.Face.Timeout)
	warmupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := embedder.EnsureReady(warmupCtx); err != nil {
		// Warm up before taking traffic so the first verifications never
		// race a cold model; degrade rather than refuse to start.
		log.Warn().Err(err).Msg("embedding extractor not ready at startup")
	}
	cancel()

	mediaStore, err := media.NewStore(cfg.Media.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("media store init failed")
	}

	dispatcher := notify.NewDispatcher(cfg.NotifyWorkers, newMailer(cfg, log), newSMSSender(cfg, log), logger.Component("notify"))
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:       db,
		Redis:    rdb,
		Embedder: embedder,
		Notifier: dispatcher,
		Media:    mediaStore,
		Config:   cfg,
		Log:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("election service listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newMailer selects the email provider from config, falling back to the
// log-only dev mailer when the chosen provider is not fully configured.
func newMailer(cfg *config.Config, log zerolog.Logger) notify.Mailer {
	switch cfg.Mail.Provider {
	case "mailersend":
		m, err := notify.NewMailerSendMailer(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
		if err != nil {
			log.Warn().Err(err).Msg("mailersend not configured, using dev mailer")
			return &notify.DevMailer{Log: log}
		}
		return m
	case "smtp":
		return notify.NewSMTPMailer(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.FromEmail, cfg.Mail.SMTPUser, cfg.Mail.SMTPPass)
	default:
		return &notify.DevMailer{Log: log}
	}
}

func newSMSSender(cfg *config.Config, log zerolog.Logger) notify.SMSSender {
	if cfg.SMS.APIKey == "" {
		log.Warn().Msg("sms gateway not configured, using dev sender")
		return &notify.DevMailer{Log: log}
	}
	return notify.NewGatewaySMSSender(cfg.SMS.GatewayURL, cfg.SMS.APIKey)
}
