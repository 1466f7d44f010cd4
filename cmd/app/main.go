package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/thorrangonak/ucustazminati-sub002/config"
	"github.com/thorrangonak/ucustazminati-sub002/internal/bootstrap"
	"github.com/thorrangonak/ucustazminati-sub002/internal/cache"
	"github.com/thorrangonak/ucustazminati-sub002/internal/flightdata"
	"github.com/thorrangonak/ucustazminati-sub002/internal/kafka"
	"github.com/thorrangonak/ucustazminati-sub002/internal/repository"
	"github.com/thorrangonak/ucustazminati-sub002/internal/rules"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/claims"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
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

	node, err := snowflake.NewNode(1)
	if err != nil {
		logger.Fatal("init snowflake node", zap.Error(err))
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Compensation.AirportCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	resolverTimeout := time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second
	liveSource := flightdata.NewHTTPSource(cfg.Resolver.BaseURL, cfg.Resolver.APIKey, resolverTimeout)
	resolver := flightdata.NewResolver(liveSource, flightdata.NewSyntheticSource(), resolverTimeout, logger.Named("resolver"))

	engine := rules.NewEngine(cfg.Compensation.CommissionRate, cfg.Compensation.Currency)

	airportRepo := repository.NewAirportRepository(pool)
	claimRepo := repository.NewClaimRepository(pool)

	eligibilityService := eligibility.NewEligibilityService(
		airportRepo,
		redisCache,
		resolver,
		engine,
		cfg.Compensation.HomeCountry,
		logger.Named("eligibility"),
	)
	claimService := claims.NewClaimService(
		claimRepo,
		producer,
		node,
		cfg.Compensation.ClaimPrefix,
		cfg.Kafka.ClaimEventsTopic,
		logger.Named("claims"),
		claims.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, eligibilityService, claimService); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
