package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Compensation CompensationConfig `yaml:"compensation"`
	Resolver     ResolverConfig     `yaml:"resolver"`
	Worker       WorkerConfig       `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ClaimEventsTopic   string   `yaml:"claim_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type CompensationConfig struct {
	CommissionRate  float64 `yaml:"commission_rate"`
	Currency        string  `yaml:"currency"`
	HomeCountry     string  `yaml:"home_country"`
	ClaimPrefix     string  `yaml:"claim_prefix"`
	AirportCacheTTL int     `yaml:"airport_cache_ttl_seconds"`
}

type ResolverConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type WorkerConfig struct {
	DraftSweepMinutes int `yaml:"draft_sweep_minutes"`
	DraftMaxAgeHours  int `yaml:"draft_max_age_hours"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Compensation.CommissionRate == 0 {
		c.Compensation.CommissionRate = 0.25
	}
	if c.Compensation.Currency == "" {
		c.Compensation.Currency = "EUR"
	}
	if c.Compensation.HomeCountry == "" {
		c.Compensation.HomeCountry = "TR"
	}
	if c.Compensation.ClaimPrefix == "" {
		c.Compensation.ClaimPrefix = "CLM"
	}
	if c.Resolver.TimeoutSeconds == 0 {
		c.Resolver.TimeoutSeconds = 10
	}
	if c.Worker.DraftSweepMinutes == 0 {
		c.Worker.DraftSweepMinutes = 60
	}
	if c.Worker.DraftMaxAgeHours == 0 {
		c.Worker.DraftMaxAgeHours = 72
	}
}
