package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config описывает настройки терминала кассы.
type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Log struct {
		// File — путь access/app-лога; пусто — пишем только в stdout.
		File       string `koanf:"file"`
		MaxSizeMB  int    `koanf:"max_size_mb"`
		MaxBackups int    `koanf:"max_backups"`
		MaxAgeDays int    `koanf:"max_age_days"`
	} `koanf:"log"`

	// Upstream — сервер столовой (Django), с которым говорит терминал.
	Upstream struct {
		BaseURL string `koanf:"base_url"`
	} `koanf:"upstream"`

	Mirror struct {
		// Backend: "memory" или "redis".
		Backend string `koanf:"backend"`
		Redis   struct {
			Addr     string `koanf:"addr"`
			Password string `koanf:"password"`
			DB       int    `koanf:"db"`
		} `koanf:"redis"`
	} `koanf:"mirror"`

	Journal struct {
		// Backend: "memory" или "postgres".
		Backend  string `koanf:"backend"`
		Postgres struct {
			DSN string `koanf:"dsn"`
		} `koanf:"postgres"`
	} `koanf:"journal"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
	} `koanf:"kafka"`

	Kitchen struct {
		PollInterval time.Duration `koanf:"poll_interval"`
	} `koanf:"kitchen"`
}

// DefaultConfig возвращает конфигурацию по умолчанию: in-memory
// хранилища, опрос кухни раз в 30 секунд.
func DefaultConfig() Config {
	var cfg Config
	cfg.App.Name = "caixa-terminal"
	cfg.App.HTTPAddr = ":8080"
	cfg.App.LogLevel = "info"
	cfg.HTTP.ReadTimeout = 10 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second
	cfg.HTTP.IdleTimeout = 60 * time.Second
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 14
	cfg.Upstream.BaseURL = "http://localhost:8000"
	cfg.Mirror.Backend = "memory"
	cfg.Journal.Backend = "memory"
	cfg.Kitchen.PollInterval = 30 * time.Second
	return cfg
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем
// необязательный YAML-файл, затем переменные окружения с префиксом
// CAIXA_ (вложенность через "__", например CAIXA_MIRROR__REDIS__ADDR).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CAIXA_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "CAIXA_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет обязательные поля конфигурации.
func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url required")
	}
	switch c.Mirror.Backend {
	case "memory":
	case "redis":
		if c.Mirror.Redis.Addr == "" {
			return fmt.Errorf("mirror.redis.addr required for redis backend")
		}
	default:
		return fmt.Errorf("unknown mirror.backend %q", c.Mirror.Backend)
	}
	switch c.Journal.Backend {
	case "memory":
	case "postgres":
		if c.Journal.Postgres.DSN == "" {
			return fmt.Errorf("journal.postgres.dsn required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown journal.backend %q", c.Journal.Backend)
	}
	if c.Kitchen.PollInterval <= 0 {
		return fmt.Errorf("kitchen.poll_interval must be positive")
	}
	return nil
}
