// Package config assembles the application Config from defaults, a config file, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks the environment variables read into the config.
// KNOLDECK_DATABASE__PATH sets database.path.
const EnvPrefix = "KNOLDECK_"

// Config is the complete runtime configuration. It is built once at startup and passed
// explicitly to whatever needs it.
type Config struct {
	Database DatabaseConfig `koanf:"database" toml:"database"`
	Server   ServerConfig   `koanf:"server" toml:"server"`
	Log      LogConfig      `koanf:"log" toml:"log"`
	Sync     SyncConfig     `koanf:"sync" toml:"sync"`
	Export   ExportConfig   `koanf:"export" toml:"export"`
	Theme    string         `koanf:"theme" toml:"theme" validate:"oneof=FollowSystem Light Dark"`
}

type DatabaseConfig struct {
	Path          string `koanf:"path" toml:"path" validate:"required"`
	BusyTimeoutMS int    `koanf:"busy_timeout_ms" toml:"busy_timeout_ms" validate:"min=0"`
}

// BusyTimeout is BusyTimeoutMS as a duration.
func (d DatabaseConfig) BusyTimeout() time.Duration {
	return time.Duration(d.BusyTimeoutMS) * time.Millisecond
}

type ServerConfig struct {
	Addr string `koanf:"addr" toml:"addr" validate:"required,hostname_port"`
}

type LogConfig struct {
	Level  string `koanf:"level" toml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `koanf:"format" toml:"format" validate:"oneof=auto text json"`
}

type SyncConfig struct {
	ReposDir string `koanf:"repos_dir" toml:"repos_dir" validate:"required"`
}

// ExportConfig names the environment variable holding the export passphrase.
// The passphrase itself is never stored.
type ExportConfig struct {
	PassphraseEnv string `koanf:"passphrase_env" toml:"passphrase_env"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() map[string]any {
	return map[string]any{
		"database.path":            "knoldeck.db",
		"database.busy_timeout_ms": 5000,
		"server.addr":              "127.0.0.1:8420",
		"log.level":                "info",
		"log.format":               "auto",
		"sync.repos_dir":           "repos",
		"export.passphrase_env":    "KNOLDECK_PASSPHRASE",
		"theme":                    "FollowSystem",
	}
}

// flagKeys maps command-line flag names to config keys. Flags not listed are ignored.
var flagKeys = map[string]string{
	"db":         "database.path",
	"addr":       "server.addr",
	"log-level":  "log.level",
	"log-format": "log.format",
	"repos-dir":  "sync.repos_dir",
}

// Options selects the sources Load reads.
type Options struct {
	// File is a .toml, .yaml or .yml config file. Empty skips it; a missing named file is an error.
	File string
	// EnvFile is a dotenv file. Empty tries ./.env and ignores its absence.
	EnvFile string
	// Flags are the parsed command-line flags, may be nil.
	Flags *pflag.FlagSet
}

// Load builds and validates the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.File != "" {
		parser, err := parserFor(opts.File)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(opts.File), parser); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", opts.File, err)
		}
	}

	if err := loadDotenv(opts.EnvFile); err != nil {
		return nil, err
	}
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if opts.Flags != nil {
		err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps KNOLDECK_SECTION__FIELD to section.field. Variables that name no config key,
// such as the export passphrase, map to "" and are skipped.
func envKey(name string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
	if _, ok := Defaults()[key]; !ok {
		return ""
	}
	return key
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, fmt.Errorf("unsupported config file type: %s", path)
}

func loadDotenv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := writeTOML(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return f.Close()
}
