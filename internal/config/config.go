package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/kalambet/fbdash/internal/dataset"
)

type Config struct {
	Server  ServerConfig
	Data    DataConfig
	UI      UIConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DataConfig struct {
	CSVPath    string
	Encoding   string
	DateLayout string
}

type UIConfig struct {
	PageSize int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

// PortEnv is the hosting platform's port variable. It wins over every other source.
const PortEnv = "PORT"

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8063,
		},
		Data: DataConfig{
			CSVPath:    "Test Try 2.csv",
			Encoding:   dataset.DefaultEncoding,
			DateLayout: dataset.DefaultDateLayout,
		},
		UI: UIConfig{
			PageSize: 5,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/fbdash/config.json, then applies FBDASH_* environment
// overrides and finally PORT.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if raw := os.Getenv(PortEnv); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s=%q: %w", PortEnv, raw, err)
		}
		cfg.Server.Port = port
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port))
	}
	if c.UI.PageSize < 1 {
		errs = append(errs, fmt.Errorf("ui.page_size must be at least 1, got %d", c.UI.PageSize))
	}
	if c.Data.CSVPath == "" {
		errs = append(errs, errors.New("data.csv_path is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadOptions converts the data section for the dataset loader.
func (c Config) LoadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		Encoding:   c.Data.Encoding,
		DateLayout: c.Data.DateLayout,
	}
}
