// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage driver names accepted by Storage.Driver.
const (
	DriverFlatFile = "flatfile"
	DriverSQLite   = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden by
// the corresponding environment variable (env:"...").
//
// env-required:"true" means the app refuses to start if that value is
// missing — better to crash at boot than to silently use a wrong
// default.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true"`

	// SeedDefaults installs the sample records at startup when the
	// store loaded empty. Off by default so tests and fresh deploys
	// decide explicitly.
	SeedDefaults bool `yaml:"seed_defaults" env:"SEED_DEFAULTS"`

	// ReportPath is an optional append-mode file that receives a copy
	// of every rendered report table alongside the HTTP response.
	// Empty disables the file sink.
	ReportPath string `yaml:"report_path" env:"REPORT_PATH"`

	Storage    `yaml:"storage"`
	HTTPServer `yaml:"http_server"`
}

// Storage selects and locates the record-store backend.
type Storage struct {
	// Driver is "flatfile" (default, the plain-text store) or "sqlite".
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"flatfile"`

	// Path is the filesystem path to the store file — the flat text
	// database or the SQLite .db file, depending on Driver.
	Path string `yaml:"path" env:"STORAGE_PATH" env-required:"true"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
}

// MustLoad reads, validates, and returns the application config.
//
// The name follows the Go convention: "Must" functions are allowed to
// fatal on failure, so callers do not check an error — if this
// returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	// cleanenv reads the YAML file, applies env:"..." overrides, and
	// enforces env-required constraints.
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	if cfg.Storage.Driver != DriverFlatFile && cfg.Storage.Driver != DriverSQLite {
		log.Fatalf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	return &cfg
}
