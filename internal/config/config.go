// Package config loads surgelint.toml: severity overrides, disabled lints,
// the fix applicability floor, engine parallelism and an optional tool
// version constraint. Discovery walks up from the start directory the same
// way the compiler finds surge.toml.
package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"surgelint/internal/diag"
)

// FileName is what discovery looks for.
const FileName = "surgelint.toml"

// Error ties a configuration failure to a diagnostic code.
type Error struct {
	Code diag.Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Code.ID(), e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code.ID(), e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func cfgErr(code diag.Code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Err: fmt.Errorf(format, args...)}
}

// fileConfig mirrors the TOML layout.
type fileConfig struct {
	RequiredVersion string       `toml:"required_version"`
	Lint            lintSection  `toml:"lint"`
	Fix             fixSection   `toml:"fix"`
	Engine          engineConfig `toml:"engine"`
}

type lintSection struct {
	Severity map[string]string `toml:"severity"`
	Disabled []string          `toml:"disabled"`
}

type fixSection struct {
	Applicability string `toml:"applicability"`
}

type engineConfig struct {
	Jobs int `toml:"jobs"`
}

// Config is a loaded and validated configuration. The zero value (plus
// Default()) is what runs when no surgelint.toml exists.
type Config struct {
	// Path is the loaded file, empty for the default config. Root is its
	// directory, the project root for relative path rendering.
	Path string
	Root string

	// Severity maps lint names to overridden severities.
	Severity map[string]diag.Severity
	// Disabled lists lint names turned off entirely.
	Disabled []string

	// FixFloor is the highest applicability `check --fix` applies without
	// being asked for more.
	FixFloor diag.FixApplicability

	// Jobs caps analysis parallelism; 0 lets the driver pick.
	Jobs int

	// RequiredVersion is the raw semver constraint, empty when absent.
	RequiredVersion string
	constraint      *semver.Constraints

	digest [32]byte
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{FixFloor: diag.FixApplicabilityAlwaysSafe}
}

// Find walks up from startDir looking for surgelint.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest surgelint.toml above startDir, or the default
// configuration when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, cfgErr(diag.ConfigUnreadable, startDir, "%v", err)
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and validates one configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: diag.ConfigUnreadable, Path: path, Err: err}
	}
	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return nil, cfgErr(diag.ConfigParse, path, "%v", err)
	}

	cfg := &Config{
		Path:            path,
		Root:            filepath.Dir(path),
		Disabled:        fc.Lint.Disabled,
		Jobs:            fc.Engine.Jobs,
		RequiredVersion: strings.TrimSpace(fc.RequiredVersion),
		digest:          sha256.Sum256(raw),
	}

	if len(fc.Lint.Severity) > 0 {
		cfg.Severity = make(map[string]diag.Severity, len(fc.Lint.Severity))
		for name, spelled := range fc.Lint.Severity {
			sev, err := diag.ParseSeverity(spelled)
			if err != nil {
				return nil, cfgErr(diag.ConfigBadValue, path, "[lint.severity] %s: %v", name, err)
			}
			cfg.Severity[name] = sev
		}
	}

	floor, err := parseApplicability(fc.Fix.Applicability)
	if err != nil {
		return nil, cfgErr(diag.ConfigBadValue, path, "[fix] applicability: %v", err)
	}
	cfg.FixFloor = floor

	if cfg.Jobs < 0 {
		return nil, cfgErr(diag.ConfigBadValue, path, "[engine] jobs must not be negative, got %d", cfg.Jobs)
	}

	if cfg.RequiredVersion != "" {
		c, err := semver.NewConstraint(cfg.RequiredVersion)
		if err != nil {
			return nil, cfgErr(diag.ConfigBadValue, path, "required_version %q: %v", cfg.RequiredVersion, err)
		}
		cfg.constraint = c
	}
	return cfg, nil
}

func parseApplicability(s string) (diag.FixApplicability, error) {
	switch s {
	case "", "always-safe":
		return diag.FixApplicabilityAlwaysSafe, nil
	case "safe-with-heuristics":
		return diag.FixApplicabilitySafeWithHeuristics, nil
	case "manual-review":
		return diag.FixApplicabilityManualReview, nil
	default:
		return diag.FixApplicabilityAlwaysSafe, fmt.Errorf("unknown applicability %q", s)
	}
}

// CheckVersion enforces required_version against the running tool.
func (c *Config) CheckVersion(toolVersion string) error {
	if c.constraint == nil {
		return nil
	}
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return cfgErr(diag.ConfigVersion, c.Path, "tool version %q is not semver: %v", toolVersion, err)
	}
	if !c.constraint.Check(v) {
		return cfgErr(diag.ConfigVersion, c.Path, "tool version %s does not satisfy required_version %q", toolVersion, c.RequiredVersion)
	}
	return nil
}

// CheckLintNames rejects severity overrides and disables that name no known
// lint, so typos surface instead of silently doing nothing.
func (c *Config) CheckLintNames(known []string) error {
	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	for name := range c.Severity {
		if !set[name] {
			return cfgErr(diag.ConfigUnknownLint, c.Path, "[lint.severity] %s is not a known lint", name)
		}
	}
	for _, name := range c.Disabled {
		if !set[name] {
			return cfgErr(diag.ConfigUnknownLint, c.Path, "[lint.disabled] %s is not a known lint", name)
		}
	}
	return nil
}

// Digest identifies the loaded file content for cache keying. The default
// config digests to zero.
func (c *Config) Digest() [32]byte {
	return c.digest
}
