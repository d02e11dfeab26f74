// Package config loads the compiler settings from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zurustar/evscript/pkg/listing"
	"github.com/zurustar/evscript/pkg/source"
)

// DefaultFileName is the config file looked up in the working directory
// when no path is given.
const DefaultFileName = "evscript.yaml"

type CompileConfig struct {
	Extensions []string `yaml:"extensions"`
	Jobs       int      `yaml:"jobs"` // 0: one per CPU
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" | "json"
	File   string `yaml:"file"`
}

type ListingConfig struct {
	Format string `yaml:"format"` // "" (off) | "yaml" | "json" | "text"
	Output string `yaml:"output"` // directory; "" writes listings to stdout
}

type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Logging LoggingConfig `yaml:"logging"`
	Listing ListingConfig `yaml:"listing"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Compile: CompileConfig{Extensions: []string{source.DefaultExtension}, Jobs: 0},
		Logging: LoggingConfig{Level: "info", Format: "text", File: ""},
		Listing: ListingConfig{Format: "", Output: ""},
	}
}

// Env var names used as overrides.
const (
	EnvLogLevel  = "EVSCRIPT_LOG_LEVEL"
	EnvLogFormat = "EVSCRIPT_LOG_FORMAT"
	EnvLogFile   = "EVSCRIPT_LOG_FILE"
	EnvJobs      = "EVSCRIPT_JOBS"
	EnvListing   = "EVSCRIPT_LISTING"
)

// Load reads the config file at path, applies it over the defaults, and
// merges environment overrides. An empty path means DefaultFileName. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no config file
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func mergeInto(dst *Config, src *Config) {
	if len(src.Compile.Extensions) > 0 {
		exts := make([]string, 0, len(src.Compile.Extensions))
		for _, e := range src.Compile.Extensions {
			exts = append(exts, normalizeExtension(e))
		}
		dst.Compile.Extensions = exts
	}
	if src.Compile.Jobs != 0 {
		dst.Compile.Jobs = src.Compile.Jobs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// listing
	if strings.TrimSpace(src.Listing.Format) != "" {
		dst.Listing.Format = strings.ToLower(strings.TrimSpace(src.Listing.Format))
	}
	if strings.TrimSpace(src.Listing.Output) != "" {
		dst.Listing.Output = strings.TrimSpace(src.Listing.Output)
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJobs)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvJobs, v, err)
		}
		cfg.Compile.Jobs = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvListing)); v != "" {
		cfg.Listing.Format = strings.ToLower(v)
	}
	return nil
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	if c.Compile.Jobs < 0 {
		return fmt.Errorf("compile.jobs must not be negative, got %d", c.Compile.Jobs)
	}
	if len(c.Compile.Extensions) == 0 {
		return errors.New("compile.extensions must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}
	if c.Listing.Format != "" {
		if _, err := listing.ParseFormat(c.Listing.Format); err != nil {
			return fmt.Errorf("listing.format: %w", err)
		}
	}
	return nil
}

// normalizeExtension lowercases an extension and adds the leading dot.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
