package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lexcue/cuescan/pkg/cuescan/census"
	"github.com/lexcue/cuescan/pkg/cuescan/internalerr"
)

// Settings is the YAML-backed run configuration.
type Settings struct {
	// LexiconPath points at an alternate cue lexicon; empty means the
	// built-in default lexicon.
	LexiconPath string `yaml:"lexicon"`

	YearWindow struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	} `yaml:"year_window"`

	MaxExamples int `yaml:"max_examples"`
	TopClusters int `yaml:"top_clusters"`
	MaxSamples  int `yaml:"max_samples"`

	// SQLitePath enables persistent run history when set.
	SQLitePath string `yaml:"sqlite_path"`
}

// LoadSettings loads settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings no run could honor.
func (s Settings) Validate() error {
	if s.YearWindow.Min != 0 || s.YearWindow.Max != 0 {
		if s.YearWindow.Min > s.YearWindow.Max {
			return fmt.Errorf("%w: year window min %d exceeds max %d",
				internalerr.ErrInvalidConfig, s.YearWindow.Min, s.YearWindow.Max)
		}
	}
	if s.MaxExamples < 0 || s.TopClusters < 0 || s.MaxSamples < 0 {
		return fmt.Errorf("%w: negative retention cap", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Years returns the configured year window, defaulting to the corpus
// collection window when unset.
func (s Settings) Years() census.YearRange {
	if s.YearWindow.Min == 0 && s.YearWindow.Max == 0 {
		return census.DefaultYearRange()
	}
	return census.YearRange{Min: s.YearWindow.Min, Max: s.YearWindow.Max}
}

// AggregatorOptions maps the settings onto census aggregator options.
func (s Settings) AggregatorOptions() census.Options {
	return census.Options{
		Years:       s.Years(),
		MaxExamples: s.MaxExamples,
		TopClusters: s.TopClusters,
		MaxSamples:  s.MaxSamples,
	}
}
