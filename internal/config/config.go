// Package config loads the server settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/symbol-tools-mcp/internal/cluster"
	"github.com/ironsheep/symbol-tools-mcp/internal/match"
)

// Environment variables read by FromEnv.
const (
	EnvConfig   = "SYMBOL_MCP_CONFIG"
	EnvLibrary  = "SYMBOL_MCP_LIBRARY"
	EnvLogLevel = "SYMBOL_MCP_LOG_LEVEL"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid setting")

// Settings holds every tunable of the recognizer.
type Settings struct {
	// Matching.
	TopK            int       `yaml:"top_k"`
	AllowedRotation float64   `yaml:"allowed_rotation"`
	Origins         []float64 `yaml:"origins"`
	UprightClasses  []string  `yaml:"upright_classes"`

	// Cluster tree.
	Linkage        string  `yaml:"linkage"`
	Workers        int     `yaml:"workers"`
	MaxDepth       int     `yaml:"max_depth"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	RadiusRatio    float64 `yaml:"radius_ratio"`
	StartDepth     int     `yaml:"start_depth"`

	// LibraryPath is the SQLite template store. Empty keeps templates in
	// memory only.
	LibraryPath string `yaml:"library_path"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Settings {
	search := cluster.DefaultSearchOptions()
	return Settings{
		TopK:            match.DefaultTopK,
		AllowedRotation: match.DefaultAllowedRotation,
		Origins:         append([]float64(nil), match.DefaultOrigins...),
		UprightClasses:  []string{"Label"},
		Linkage:         cluster.Complete.String(),
		MaxDepth:        search.MaxDepth,
		ScoreThreshold:  search.ScoreThreshold,
		RadiusRatio:     search.RadiusRatio,
		StartDepth:      1,
		LogLevel:        "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return s, s.Validate()
}

// FromEnv loads the file named by SYMBOL_MCP_CONFIG, then applies the
// SYMBOL_MCP_LIBRARY and SYMBOL_MCP_LOG_LEVEL overrides.
func FromEnv() (Settings, error) {
	s, err := Load(os.Getenv(EnvConfig))
	if err != nil {
		return s, err
	}
	if v := os.Getenv(EnvLibrary); v != "" {
		s.LibraryPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	return s, s.Validate()
}

// Validate reports the first out-of-range setting.
func (s Settings) Validate() error {
	switch {
	case s.TopK < 0:
		return fmt.Errorf("%w: top_k %d is negative", ErrInvalid, s.TopK)
	case s.AllowedRotation < 0 || math.IsNaN(s.AllowedRotation):
		return fmt.Errorf("%w: allowed_rotation %v", ErrInvalid, s.AllowedRotation)
	case s.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, s.Workers)
	case s.MaxDepth < cluster.Unlimited:
		return fmt.Errorf("%w: max_depth %d (use -1 for unlimited)", ErrInvalid, s.MaxDepth)
	case s.ScoreThreshold <= 0 || math.IsNaN(s.ScoreThreshold):
		return fmt.Errorf("%w: score_threshold %v must be positive", ErrInvalid, s.ScoreThreshold)
	case s.RadiusRatio < 0 || math.IsNaN(s.RadiusRatio):
		return fmt.Errorf("%w: radius_ratio %v", ErrInvalid, s.RadiusRatio)
	case s.StartDepth < 0:
		return fmt.Errorf("%w: start_depth %d is negative", ErrInvalid, s.StartDepth)
	}
	for _, o := range s.Origins {
		if math.IsNaN(o) || math.IsInf(o, 0) {
			return fmt.Errorf("%w: origin %v", ErrInvalid, o)
		}
	}
	if _, err := cluster.ParseLinkage(s.Linkage); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Debug reports whether debug logging is on.
func (s Settings) Debug() bool {
	return s.LogLevel == "debug"
}

// MatchOptions returns the options for FindBestMatches.
func (s Settings) MatchOptions() match.Options {
	return match.Options{
		TopK:            s.TopK,
		AllowedRotation: s.AllowedRotation,
		Origins:         append([]float64(nil), s.Origins...),
	}
}

// BuildOptions returns the options for cluster.BuildTree. Validate has
// already checked the linkage name.
func (s Settings) BuildOptions() cluster.BuildOptions {
	linkage, _ := cluster.ParseLinkage(s.Linkage)
	return cluster.BuildOptions{Linkage: linkage, Workers: s.Workers}
}

// SearchOptions returns the options for the tree searches.
func (s Settings) SearchOptions() cluster.SearchOptions {
	return cluster.SearchOptions{
		MaxDepth:       s.MaxDepth,
		ScoreThreshold: s.ScoreThreshold,
		RadiusRatio:    s.RadiusRatio,
	}
}
