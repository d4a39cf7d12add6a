// Package config defines environment configuration structs and loaders.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/tensorplex-labs/simrank/internal/scoring"
)

type AppConfig struct {
	ScoringEnvConfig
	RankingEnvConfig
	CacheEnvConfig
	ReportEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values that the parser accepts but no component supports.
func (c *AppConfig) Validate() error {
	if _, err := c.ScoringEnvConfig.Params(); err != nil {
		return err
	}
	switch c.Backend {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Backend)
	}
	switch c.Format {
	case ReportFormatTable, ReportFormatJSON:
	default:
		return fmt.Errorf("unsupported REPORT_FORMAT %q", c.Format)
	}
	return nil
}

// ScoringEnvConfig holds the SSIM scorer tunables.
type ScoringEnvConfig struct {
	Resolution    int     `env:"SCORING_RESOLUTION" envDefault:"300"`
	WindowSize    int     `env:"SSIM_WINDOW_SIZE" envDefault:"7"`
	K1            float64 `env:"SSIM_K1" envDefault:"0.01"`
	K2            float64 `env:"SSIM_K2" envDefault:"0.03"`
	DataRange     float64 `env:"SSIM_DATA_RANGE" envDefault:"255"`
	Interpolation string  `env:"SCORING_INTERPOLATION" envDefault:"bilinear"`
	LumaR         float64 `env:"SCORING_LUMA_R" envDefault:"0.299"`
	LumaG         float64 `env:"SCORING_LUMA_G" envDefault:"0.587"`
	LumaB         float64 `env:"SCORING_LUMA_B" envDefault:"0.114"`
}

// Params converts the environment values into validated scoring params.
func (c ScoringEnvConfig) Params() (scoring.Params, error) {
	p := scoring.Params{
		Resolution:    c.Resolution,
		WindowSize:    c.WindowSize,
		K1:            c.K1,
		K2:            c.K2,
		DataRange:     c.DataRange,
		Luma:          scoring.LumaWeights{R: c.LumaR, G: c.LumaG, B: c.LumaB},
		Interpolation: strings.ToLower(c.Interpolation),
	}
	return p, p.Validate()
}

// RankingEnvConfig configures the ranking engine.
type RankingEnvConfig struct {
	Workers int `env:"RANKING_WORKERS" envDefault:"0"`
}

const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheEnvConfig configures the optional score cache.
type CacheEnvConfig struct {
	Backend string        `env:"CACHE_BACKEND" envDefault:"none"`
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	Timeout time.Duration `env:"CACHE_TIMEOUT" envDefault:"2s"`
	RedisEnvConfig
}

// RedisEnvConfig configures Redis connection.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisUsername string `env:"REDIS_USERNAME"`
}

const (
	ReportFormatTable = "table"
	ReportFormatJSON  = "json"
)

// ReportEnvConfig configures how results are presented.
type ReportEnvConfig struct {
	Format   string `env:"REPORT_FORMAT" envDefault:"table"`
	Compress bool   `env:"REPORT_COMPRESS" envDefault:"false"`
}
