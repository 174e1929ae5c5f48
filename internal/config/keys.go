package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "FBDASH_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "FBDASH_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "data.csv_path", typ: kString, env: "FBDASH_DATA_CSV_PATH",
		apply:   func(cfg *Config, v any) { cfg.Data.CSVPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Data.CSVPath },
	},
	{
		key: "data.encoding", typ: kString, env: "FBDASH_DATA_ENCODING",
		apply:   func(cfg *Config, v any) { cfg.Data.Encoding = v.(string) },
		extract: func(cfg Config) any { return cfg.Data.Encoding },
	},
	{
		key: "data.date_layout", typ: kString, env: "FBDASH_DATA_DATE_LAYOUT",
		apply:   func(cfg *Config, v any) { cfg.Data.DateLayout = v.(string) },
		extract: func(cfg Config) any { return cfg.Data.DateLayout },
	},
	{
		key: "ui.page_size", typ: kInt, env: "FBDASH_UI_PAGE_SIZE",
		apply:   func(cfg *Config, v any) { cfg.UI.PageSize = v.(int) },
		extract: func(cfg Config) any { return cfg.UI.PageSize },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FBDASH_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "FBDASH_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
