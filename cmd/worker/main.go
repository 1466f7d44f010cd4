package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/thorrangonak/ucustazminati-sub002/config"
	"github.com/thorrangonak/ucustazminati-sub002/internal/email"
	"github.com/thorrangonak/ucustazminati-sub002/internal/kafka"
	"github.com/thorrangonak/ucustazminati-sub002/internal/repository"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/claims"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	node, err := snowflake.NewNode(2)
	if err != nil {
		logger.Fatal("init snowflake node", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	claimRepo := repository.NewClaimRepository(pool)
	claimService := claims.NewClaimService(
		claimRepo,
		producer,
		node,
		cfg.Compensation.ClaimPrefix,
		cfg.Kafka.ClaimEventsTopic,
		logger.Named("claims"),
		claims.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ClaimEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode claim event", zap.Error(err))
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Info("consumer stopped", zap.Error(err))
		}
	}()

	draftMaxAge := time.Duration(cfg.Worker.DraftMaxAgeHours) * time.Hour
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.DraftSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			count, err := claimService.SubmitStaleDrafts(ctx, draftMaxAge)
			if err != nil {
				logger.Error("stale draft sweep failed", zap.Error(err))
				continue
			}
			if count > 0 {
				logger.Info("auto-submitted stale drafts", zap.Int("count", count))
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}
