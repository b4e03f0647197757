package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LIVEDRAFT"

type Config struct {
	Server struct {
		Addr              string        `yaml:"addr" envconfig:"ADDR" validate:"required"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"READ_HEADER_TIMEOUT"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
		AllowedOrigins    []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	} `yaml:"server" envconfig:"SERVER"`

	Log struct {
		Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn error"`
	} `yaml:"log" envconfig:"LOG"`

	Store struct {
		Driver    string `yaml:"driver" envconfig:"DRIVER" validate:"oneof=postgres badger memory"`
		BadgerDir string `yaml:"badger_dir" envconfig:"BADGER_DIR" validate:"required_if=Driver badger"`
	} `yaml:"store" envconfig:"STORE"`

	League struct {
		Source string `yaml:"source" envconfig:"SOURCE" validate:"oneof=file postgres"`
		File   string `yaml:"file" envconfig:"FILE" validate:"required_if=Source file"`
	} `yaml:"league" envconfig:"LEAGUE"`

	NATS struct {
		Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
		URL     string `yaml:"url" envconfig:"URL"`
		// Embedded runs a JetStream server in-process and ignores URL.
		Embedded      bool   `yaml:"embedded" envconfig:"EMBEDDED"`
		StoreDir      string `yaml:"store_dir" envconfig:"STORE_DIR"`
		EventStream   string `yaml:"event_stream" envconfig:"EVENT_STREAM" validate:"required_if=Enabled true"`
		EventPrefix   string `yaml:"event_prefix" envconfig:"EVENT_PREFIX" validate:"required_if=Enabled true"`
		CommandStream string `yaml:"command_stream" envconfig:"COMMAND_STREAM" validate:"required_if=Enabled true"`
		CommandPrefix string `yaml:"command_prefix" envconfig:"COMMAND_PREFIX" validate:"required_if=Enabled true"`
		NotifyPrefix  string `yaml:"notify_prefix" envconfig:"NOTIFY_PREFIX"`
	} `yaml:"nats" envconfig:"NATS"`

	Redis struct {
		// Addr empty means leases are only held within this process.
		Addr     string        `yaml:"addr" envconfig:"ADDR"`
		LeaseTTL time.Duration `yaml:"lease_ttl" envconfig:"LEASE_TTL" validate:"gte=0"`
	} `yaml:"redis" envconfig:"REDIS"`

	Draft struct {
		EvictAfter        time.Duration `yaml:"evict_after" envconfig:"EVICT_AFTER"`
		StoreAttempts     int           `yaml:"store_attempts" envconfig:"STORE_ATTEMPTS" validate:"gte=0,lte=10"`
		RetryDelay        time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY"`
		ReconcileInterval time.Duration `yaml:"reconcile_interval" envconfig:"RECONCILE_INTERVAL"`
		CommandTimeout    time.Duration `yaml:"command_timeout" envconfig:"COMMAND_TIMEOUT"`
		AutoPick          string        `yaml:"auto_pick" envconfig:"AUTO_PICK" validate:"oneof=round_banded random"`
	} `yaml:"draft" envconfig:"DRAFT"`
}

func defaultConfig() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Server.ReadHeaderTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Server.AllowedOrigins = []string{"*"}
	c.Log.Level = "info"
	c.Store.Driver = "memory"
	c.Store.BadgerDir = "data/badger"
	c.League.Source = "file"
	c.League.File = "leagues.yaml"
	c.NATS.URL = "nats://127.0.0.1:4222"
	c.NATS.EventStream = "DRAFT_EVENTS"
	c.NATS.EventPrefix = "draft.events"
	c.NATS.CommandStream = "DRAFT_COMMANDS"
	c.NATS.CommandPrefix = "draft.commands"
	c.NATS.NotifyPrefix = "draft.notify"
	c.Redis.LeaseTTL = 30 * time.Second
	c.Draft.EvictAfter = 10 * time.Minute
	c.Draft.StoreAttempts = 3
	c.Draft.RetryDelay = 100 * time.Millisecond
	c.Draft.ReconcileInterval = 5 * time.Second
	c.Draft.CommandTimeout = 5 * time.Second
	c.Draft.AutoPick = "round_banded"
	return c
}

var validate = validator.New()

// loadConfig layers the YAML file, .env and LIVEDRAFT_* variables over the
// defaults. A missing config file is not an error.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn().Str("path", path).Msg("config file not found, using defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
