package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendBadger   = "badger"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	AllowlistPath   string        `yaml:"allowlist_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type AuthConfig struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
	Realm    string `yaml:"realm" validate:"required"`
}

type StoreConfig struct {
	Backend        string `yaml:"backend" validate:"oneof=postgres badger memory"`
	DatabaseURL    string `yaml:"database_url" validate:"required_if=Backend postgres"`
	BadgerPath     string `yaml:"badger_path"`
	BadgerInMemory bool   `yaml:"badger_in_memory"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default mirrors the legacy deployment: a single user/password credential
// and postgres storage.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Username: "user",
			Password: "password",
			Realm:    "hierarchy",
		},
		Store: StoreConfig{
			Backend: StoreBackendPostgres,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the optional YAML file at path over Default, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	return LoadFS(afero.NewOsFs(), path)
}

func LoadFS(fsys afero.Fs, path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := afero.ReadFile(fsys, path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getenvDefault("HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.AllowlistPath = getenvDefault("ALLOWLIST_PATH", cfg.Server.AllowlistPath)
	cfg.Auth.Username = getenvDefault("BASIC_AUTH_USER", cfg.Auth.Username)
	cfg.Auth.Password = getenvDefault("BASIC_AUTH_PASSWORD", cfg.Auth.Password)
	cfg.Store.Backend = getenvDefault("HIERARCHY_STORE", cfg.Store.Backend)
	cfg.Store.BadgerPath = getenvDefault("BADGER_PATH", cfg.Store.BadgerPath)
	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)

	if v := os.Getenv("DATABASE_URL"); v != "" || cfg.Store.DatabaseURL == "" {
		cfg.Store.DatabaseURL = dbDSNFromEnv()
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := errors.AsType[validator.ValidationErrors](err); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	if c.Store.Backend == StoreBackendBadger && !c.Store.BadgerInMemory && strings.TrimSpace(c.Store.BadgerPath) == "" {
		return errors.New("config: invalid: store.badger_path is required for the badger backend")
	}
	return nil
}
