package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Roots     []string `toml:"roots"`
	Patterns  []string `toml:"patterns"`
	DateOrder string   `toml:"date_order"` // "day-first" or "month-first"
	Encoding  string   `toml:"encoding"`   // "" = UTF-8, else an HTML encoding label
	MaxReadMB int      `toml:"max_read_mb"`
	LogLevel  string   `toml:"log_level"`
}

// DefaultPatterns are matched case-insensitively against file base names.
var DefaultPatterns = []string{
	"whatsapp chat*.txt",
	"_chat.txt",
	"*chat*.txt",
}

// Path returns the location of the optional config file.
func Path(home string) string {
	return filepath.Join(home, ".config", "chatstat", "config.toml")
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(home)
}

// LoadFrom resolves the config relative to the given home directory.
func LoadFrom(home string) (*Config, error) {
	cfg := &Config{
		Roots: []string{
			filepath.Join(home, "Desktop", "WhatsAppChat"),
			filepath.Join(home, "Downloads"),
		},
		Patterns:  append([]string(nil), DefaultPatterns...),
		DateOrder: "day-first",
		MaxReadMB: 10,
		LogLevel:  "warn",
	}

	cfgPath := Path(home)
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	for i, r := range cfg.Roots {
		cfg.Roots[i] = expandHome(r, home)
	}
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = append([]string(nil), DefaultPatterns...)
	}
	if cfg.MaxReadMB <= 0 {
		cfg.MaxReadMB = 10
	}

	switch cfg.DateOrder {
	case "day-first", "month-first", "dmy", "mdy":
	default:
		return nil, fmt.Errorf("config: date_order must be day-first or month-first, got %q", cfg.DateOrder)
	}

	return cfg, nil
}

// applyEnv lets CHATSTAT_* variables override file values.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("CHATSTAT_ROOTS"); v != "" {
		cfg.Roots = filepath.SplitList(v)
	}
	if v := os.Getenv("CHATSTAT_DATE_ORDER"); v != "" {
		cfg.DateOrder = v
	}
	if v := os.Getenv("CHATSTAT_ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv("CHATSTAT_MAX_READ_MB"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return fmt.Errorf("config: CHATSTAT_MAX_READ_MB must be a positive integer, got %q", v)
		}
		cfg.MaxReadMB = n
	}
	if v := os.Getenv("CHATSTAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Level maps LogLevel onto slog levels, defaulting to warn.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// MaxReadBytes is the size limit applied when returning raw export text.
func (c *Config) MaxReadBytes() int64 {
	return int64(c.MaxReadMB) * 1024 * 1024
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
