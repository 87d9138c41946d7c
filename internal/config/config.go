package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/workday-tracker/internal/storage"
)

// Config is the root configuration for wdt, stored in ~/.wdt/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
	// ExpectedWorkHours seeds the day length until one is set with
	// `wdt settings hours`.
	ExpectedWorkHours float64 `json:"expected_work_hours"`
}

// StorageConfig selects where jobs, sessions and settings are kept.
type StorageConfig struct {
	// Backend is "file" (one JSON file per collection) or "sqlite".
	Backend string `json:"backend"`
	// Dir holds the data files. Empty means the directory of the config file.
	Dir string `json:"dir"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is "text" or "json".
	Format string `json:"format"`
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "text"
	DefaultExpectedWorkHours = 8.0
)

// Environment overrides, applied after the file is read.
const (
	EnvBackend  = "WDT_BACKEND"
	EnvLogLevel = "WDT_LOG_LEVEL"
)

// Default returns a Config pre-filled with the built-in defaults.
func Default() Config {
	return Config{
		Storage:           StorageConfig{Backend: BackendFile},
		Log:               LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		ExpectedWorkHours: DefaultExpectedWorkHours,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// wdt configuration – ~/.wdt/config.json
//
// All settings are optional; the defaults below work out of the box.
// Set WDT_HOME to move this file and the data files elsewhere.
{
  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // "file"   – jobs.json, work_sessions.json and settings.json (default)
    // "sqlite" – a single wdt.db database
    // Overridden by WDT_BACKEND or --backend.
    "backend": "file",

    // Directory for the data files. Empty means next to this config file.
    // Overridden by --dir.
    "dir": ""
  },

  // ── Diagnostics ──────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error. Overridden by WDT_LOG_LEVEL or --verbose.
    "level": "warn",

    // "text" or "json".
    "format": "text"
  },

  // Length of a normal working day in hours, used for the remaining-time
  // display until you set one with: wdt settings hours <n>
  "expected_work_hours": 8
}
`

// DefaultPath returns the path to config.json inside the data directory.
func DefaultPath() (string, error) {
	base, err := storage.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults on first
// run. Environment overrides are applied last, and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = filepath.Dir(path)
	}
	applyEnv(&cfg)
	fillDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		cfg.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
}

// fillDefaults replaces zero-value fields so callers always get a usable
// Config even if the user only partially fills in the file.
func fillDefaults(cfg *Config) {
	cfg.Storage.Backend = strings.ToLower(cfg.Storage.Backend)
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.ExpectedWorkHours == 0 {
		cfg.ExpectedWorkHours = DefaultExpectedWorkHours
	}
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want \"text\" or \"json\")", c.Log.Format)
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
