// Package config loads server configuration from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region types

// Duration wraps time.Duration so YAML can carry "10s" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Config is the full server configuration.
type Config struct {
	Server Server `yaml:"server"`
	// DBPath is the sqlite file backing the truth store.
	DBPath string `yaml:"db_path"`
}

// #endregion types

// #region load

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		DBPath: "calendis.db",
	}
}

// Load reads path when non-empty, then applies environment overrides.
// A missing file at an explicit path is an error; path "" skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("CALENDIS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CALENDIS_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	return cfg, nil
}

// #endregion load
