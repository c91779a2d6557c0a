package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cafetunes/publisher/internal/admin"
	"github.com/cafetunes/publisher/internal/bot"
	"github.com/cafetunes/publisher/internal/config"
	"github.com/cafetunes/publisher/internal/publisher/kafka"
	"github.com/cafetunes/publisher/internal/publisher/outbox"
	"github.com/cafetunes/publisher/internal/publisher/repository"
	"github.com/cafetunes/publisher/internal/publisher/service"
	"github.com/cafetunes/publisher/internal/storage/filestore"
	"github.com/cafetunes/publisher/internal/storage/sqlstore"
)

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	// Dependencies
	var (
		channels   repository.ChannelStore
		songs      repository.SongLog
		outboxRepo *sqlstore.OutboxRepo
	)
	if strings.HasSuffix(cfg.DatabaseURL, ".json") {
		fs, err := filestore.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		channels, songs = fs, fs
		logger.Info().Str("path", cfg.DatabaseURL).Msg("using flat-file store")
	} else {
		db, err := sqlstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer db.Close()

		if cfg.KafkaEnabled() {
			outboxRepo = sqlstore.NewOutboxRepo(db)
		}
		channels = sqlstore.NewChannelRepo(db)
		songs = sqlstore.NewSongRepo(db, outboxRepo)
		logger.Info().Str("driver", db.DriverName()).Msg("using sql store")
	}
	svc := service.New(channels, songs)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram connect: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AdminAddr != "" {
		g.Go(func() error {
			return admin.Serve(ctx, cfg.AdminAddr, logger)
		})
	}

	if outboxRepo != nil {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer producer.Close()

		pub, err := outbox.NewPublisher(outbox.PublisherConfig{
			OutboxRepo: outboxRepo,
			Producer:   producer,
			Interval:   cfg.OutboxInterval,
			BatchSize:  cfg.OutboxBatch,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("outbox publisher: %w", err)
		}
		g.Go(func() error {
			return ignoreCanceled(pub.Start(ctx))
		})
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.PollTimeout
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	b := bot.New(api, svc, logger)
	g.Go(func() error {
		return ignoreCanceled(b.Run(ctx, updates))
	})

	return g.Wait()
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
