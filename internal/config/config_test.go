package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mapBackend is an in-memory ConfigBackend.
type mapBackend struct {
	strs map[string]string
	ints map[string]int
}

func newMapBackend() *mapBackend {
	return &mapBackend{strs: map[string]string{}, ints: map[string]int{}}
}

func (m *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strs[key]
	return v, ok, nil
}

func (m *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mapBackend) SetString(key, val string) error { m.strs[key] = val; return nil }
func (m *mapBackend) SetInt(key string, val int) error  { m.ints[key] = val; return nil }
func (m *mapBackend) Delete(key string) error {
	delete(m.strs, key)
	delete(m.ints, key)
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(PortEnv, "")
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied when nothing is configured.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8063 {
		t.Errorf("Server.Port = %d, want 8063", cfg.Server.Port)
	}
	if cfg.Data.Encoding != "latin1" {
		t.Errorf("Data.Encoding = %q, want latin1", cfg.Data.Encoding)
	}
	if cfg.Data.DateLayout != "2-1-2006" {
		t.Errorf("Data.DateLayout = %q, want 2-1-2006", cfg.Data.DateLayout)
	}
	if cfg.UI.PageSize != 5 {
		t.Errorf("UI.PageSize = %d, want 5", cfg.UI.PageSize)
	}
	if cfg.Addr() != "0.0.0.0:8063" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestBackendValues(t *testing.T) {
	clearEnv(t)
	b := newMapBackend()
	b.strs["data.csv_path"] = "/srv/feedback.csv"
	b.ints["ui.page_size"] = 20
	b.ints["server.port"] = 9000

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Data.CSVPath != "/srv/feedback.csv" {
		t.Errorf("Data.CSVPath = %q", cfg.Data.CSVPath)
	}
	if cfg.UI.PageSize != 20 {
		t.Errorf("UI.PageSize = %d, want 20", cfg.UI.PageSize)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	b := newMapBackend()
	b.ints["server.port"] = 9000
	t.Setenv("FBDASH_SERVER_PORT", "9100")
	t.Setenv("FBDASH_DATA_ENCODING", "utf-8")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Data.Encoding != "utf-8" {
		t.Errorf("Data.Encoding = %q, want utf-8", cfg.Data.Encoding)
	}
}

func TestPortEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("FBDASH_SERVER_PORT", "9100")
	t.Setenv(PortEnv, "10000")

	cfg, err := loadWith(newMapBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 10000 {
		t.Errorf("Server.Port = %d, want 10000", cfg.Server.Port)
	}
}

func TestInvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(PortEnv, "eighty")

	if _, err := loadWith(newMapBackend()); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func TestValidation(t *testing.T) {
	clearEnv(t)
	b := newMapBackend()
	b.ints["ui.page_size"] = 0
	b.ints["server.port"] = 70000

	_, err := loadWith(b)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"ui.page_size", "server.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to mention %s", err.Error(), want)
		}
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbdash", "config.json")
	b := openFileBackend(path)

	if err := setKeyWith(b, "data.csv_path", "feedback.csv"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	if err := setKeyWith(b, "ui.page_size", "10"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	reopened := openFileBackend(path)
	if v, ok, _ := reopened.GetString("data.csv_path"); !ok || v != "feedback.csv" {
		t.Errorf("data.csv_path = %q (ok=%v)", v, ok)
	}
	if v, ok, err := reopened.GetInt("ui.page_size"); err != nil || !ok || v != 10 {
		t.Errorf("ui.page_size = %d (ok=%v, err=%v)", v, ok, err)
	}
}

func TestSetKey_Errors(t *testing.T) {
	b := newMapBackend()

	if err := setKeyWith(b, "no.such.key", "x"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("unknown key err = %v", err)
	}
	if err := setKeyWith(b, "server.port", "abc"); err == nil {
		t.Error("expected error for non-integer port")
	}
}

func TestShowAll_ListsEveryKey(t *testing.T) {
	keys := ShowAll(defaults())
	if len(keys) != len(ValidKeys()) {
		t.Fatalf("ShowAll returned %d keys, ValidKeys %d", len(keys), len(ValidKeys()))
	}
	for _, k := range keys {
		if k.Key == "server.port" && k.Value != "8063" {
			t.Errorf("server.port = %q, want 8063", k.Value)
		}
	}
}
