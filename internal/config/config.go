package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	ProfileClock = "clock"
	ProfileUsage = "usage"

	// MinInterval keeps a misconfigured interval from spinning the UI loop.
	MinInterval = 50 * time.Millisecond

	DefaultTitle = "launcher"
)

var (
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidInterval = errors.New("invalid refresh interval")
	ErrInvalidEntry    = errors.New("invalid entry")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Duration is a time.Duration written as "500ms" or "1s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Entry is one launchable item on the home screen.
type Entry struct {
	Name        string `yaml:"name"`
	Command     string `yaml:"command"`
	Description string `yaml:"description,omitempty"`
	Dir         string `yaml:"dir,omitempty"`
}

type Config struct {
	// Profile is "clock" (time only) or "usage" (time and resource usage).
	Profile string `yaml:"profile"`
	// Interval overrides the profile's refresh interval when non-zero.
	Interval        Duration `yaml:"interval,omitempty"`
	LogLevel        string   `yaml:"log_level"`
	CleanLogFile    bool     `yaml:"clean_log_file"`
	TruncatePercent bool     `yaml:"truncate_percent"`
	Title           string   `yaml:"title"`
	Entries         []Entry  `yaml:"entries"`
}

func Default() Config {
	return Config{
		Profile:  ProfileUsage,
		LogLevel: "info",
		Title:    DefaultTitle,
		Entries: []Entry{
			{Name: "Shell", Command: `exec "${SHELL:-/bin/sh}"`, Description: "interactive login shell"},
			{Name: "Top", Command: "top", Description: "process monitor"},
			{Name: "Editor", Command: `exec "${EDITOR:-vi}"`, Description: "default text editor"},
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Profile {
	case ProfileClock, ProfileUsage:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidProfile, c.Profile, ProfileClock, ProfileUsage)
	}

	if c.Interval < 0 || (c.Interval > 0 && time.Duration(c.Interval) < MinInterval) {
		return fmt.Errorf("%w: %s (minimum %s)", ErrInvalidInterval, time.Duration(c.Interval), MinInterval)
	}

	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	seen := make(map[string]bool, len(c.Entries))
	for i, e := range c.Entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i)
		}
		if strings.TrimSpace(e.Command) == "" {
			return fmt.Errorf("%w: entry %q has no command", ErrInvalidEntry, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate entry %q", ErrInvalidEntry, name)
		}
		seen[name] = true
	}
	return nil
}

// SampleUsage reports whether the profile refreshes resource usage.
func (c Config) SampleUsage() bool {
	return c.Profile == ProfileUsage
}

// RefreshInterval is the configured interval, or the profile default.
func (c Config) RefreshInterval() time.Duration {
	if c.Interval > 0 {
		return time.Duration(c.Interval)
	}
	if c.SampleUsage() {
		return 500 * time.Millisecond
	}
	return time.Second
}

// GetLogLevel returns the parsed log level, falling back to info.
func (c Config) GetLogLevel() zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return zap.NewAtomicLevel()
	}
	return level
}
