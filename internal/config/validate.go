package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Validate ensures the configuration is usable for a run. It is separate from
// Load because the CLI fills in source/dest from flags after loading.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateDates(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		return errors.New("paths.source_dir must be set (flag --source or config)")
	}
	if strings.TrimSpace(c.Paths.DestDir) == "" {
		return errors.New("paths.dest_dir must be set (flag --dest or config)")
	}
	info, err := os.Stat(c.Paths.SourceDir)
	if err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("paths.source_dir: %s is not a directory", c.Paths.SourceDir)
	}
	if c.Paths.SourceDir == c.Paths.DestDir {
		return errors.New("paths.source_dir and paths.dest_dir must differ")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	switch c.Organize.Mode {
	case string(ModeMove), string(ModeCopy):
	default:
		return fmt.Errorf("organize.mode must be %q or %q, got %q", ModeMove, ModeCopy, c.Organize.Mode)
	}
	if c.Organize.Concurrency < 1 || c.Organize.Concurrency > 256 {
		return fmt.Errorf("organize.concurrency must be between 1 and 256, got %d", c.Organize.Concurrency)
	}
	return nil
}

func (c *Config) validateDates() error {
	currentYear := time.Now().Year()
	if c.Dates.EarliestYear < 1800 || c.Dates.EarliestYear > currentYear {
		return fmt.Errorf("dates.earliest_year must be between 1800 and %d, got %d", currentYear, c.Dates.EarliestYear)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
