package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// TransferMode selects what happens to the source file after a successful
// transfer.
type TransferMode string

const (
	// ModeMove removes the source after the destination write is confirmed.
	ModeMove TransferMode = "move"
	// ModeCopy leaves the source untouched.
	ModeCopy TransferMode = "copy"
)

// Paths contains the directory configuration for a run.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	DestDir   string `toml:"dest_dir"`
}

// Organize contains the pipeline behavior switches.
type Organize struct {
	Mode             string `toml:"mode"`
	DryRun           bool   `toml:"dry_run"`
	Concurrency      int    `toml:"concurrency"`
	CleanupEmptyDirs bool   `toml:"cleanup_empty_dirs"`
}

// Dates contains the date-resolution tuning knobs. The acceptance window and
// filename patterns are configuration, not hidden constants.
type Dates struct {
	// EarliestYear is the lower bound of the plausible capture-date range.
	// Dates before it are rejected as placeholder or pre-digital values.
	EarliestYear int `toml:"earliest_year"`
}

// Probe contains settings for metadata extraction.
type Probe struct {
	// FFprobeBinary overrides the external probe executable name.
	FFprobeBinary string `toml:"ffprobe_binary"`
	// TimeoutSeconds bounds a single strategy's work on one file.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// SniffBytes is how much of the file header the classifier may read.
	SniffBytes int `toml:"sniff_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for snapsort.
//
// Configuration sections by subsystem:
//   - Paths: source and destination roots
//   - Organize: transfer mode, dry-run, worker count, source cleanup
//   - Dates: plausible capture-date window
//   - Probe: external ffprobe binary, per-file timeout, sniff budget
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Dates    Dates    `toml:"dates"`
	Probe    Probe    `toml:"probe"`
	Logging  Logging  `toml:"logging"`
}

// Mode returns the parsed transfer mode. Call after Validate.
func (c *Config) Mode() TransferMode {
	if strings.EqualFold(strings.TrimSpace(c.Organize.Mode), string(ModeCopy)) {
		return ModeCopy
	}
	return ModeMove
}

// Sample returns the embedded sample configuration file contents.
func Sample() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/snapsort/config.toml")
}

// ExpandPath expands a leading ~ and returns an absolute, cleaned path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults plus flags are a complete configuration.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("snapsort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
