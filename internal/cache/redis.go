package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thorrangonak/ucustazminati-sub002/config"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	airportTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, airportTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		airportTTL: airportTTL,
	}
}

func (c *RedisCache) GetAirport(ctx context.Context, iata string) (*domain.Airport, error) {
	data, err := c.client.Get(ctx, airportKey(iata)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var airport domain.Airport
	if err := json.Unmarshal(data, &airport); err != nil {
		return nil, err
	}
	return &airport, nil
}

func (c *RedisCache) SetAirport(ctx context.Context, airport domain.Airport) error {
	payload, err := json.Marshal(airport)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, airportKey(airport.IATACode), payload, c.airportTTL).Err()
}

func (c *RedisCache) GetAirports(ctx context.Context) ([]domain.Airport, error) {
	data, err := c.client.Get(ctx, airportsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var airports []domain.Airport
	if err := json.Unmarshal(data, &airports); err != nil {
		return nil, err
	}
	return airports, nil
}

func (c *RedisCache) SetAirports(ctx context.Context, airports []domain.Airport) error {
	payload, err := json.Marshal(airports)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, airportsKey(), payload, c.airportTTL).Err()
}

func airportKey(iata string) string {
	return fmt.Sprintf("cache:airport:%s", iata)
}

func airportsKey() string {
	return "cache:airports"
}
