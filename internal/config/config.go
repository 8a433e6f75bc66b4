// Package config loads runtime settings from defaults, an optional tasknest.yaml file,
// TASKNEST_* environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKNEST_ADDR.
const EnvPrefix = "TASKNEST"

// Config holds every setting of the application.
type Config struct {
	Addr        string
	DBPath      string
	StaticDir   string
	Locale      string
	LocaleFile  string
	LogLevel    string
	StatePath   string
	CORSOrigins []string
}

// Defaults applied when no other source sets a key.
func defaults() map[string]any {
	return map[string]any{
		"addr":         ":8080",
		"db_path":      "data/tasknest.db",
		"static_dir":   "web/dist",
		"locale":       "ru",
		"locale_file":  "",
		"log_level":    "info",
		"state_path":   defaultStatePath(),
		"cors_origins": []string{"http://localhost:5173", "http://localhost:3000", "http://localhost:5174"},
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("data", "state.json")
	}
	return filepath.Join(dir, "tasknest", "state.json")
}

// Load resolves the configuration. configFile may be empty, in which case tasknest.yaml
// is looked up in the working directory and is optional. flags may be nil; only flags
// that were explicitly set override other sources.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tasknest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		bindings := map[string]string{
			"addr":        "addr",
			"db_path":     "db",
			"static_dir":  "static",
			"locale":      "locale",
			"locale_file": "locale-file",
			"log_level":   "log-level",
			"state_path":  "state",
		}
		for key, name := range bindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := Config{
		Addr:        v.GetString("addr"),
		DBPath:      v.GetString("db_path"),
		StaticDir:   v.GetString("static_dir"),
		Locale:      v.GetString("locale"),
		LocaleFile:  v.GetString("locale_file"),
		LogLevel:    v.GetString("log_level"),
		StatePath:   v.GetString("state_path"),
		CORSOrigins: v.GetStringSlice("cors_origins"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name onto slog.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
