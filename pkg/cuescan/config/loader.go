package config

import (
	"fmt"

	"github.com/lexcue/cuescan/pkg/cuescan/detect"
	"github.com/lexcue/cuescan/pkg/cuescan/lexicon"
)

// Loader builds run components from configuration paths.
type Loader struct {
	SettingsPath string
	LexiconPath  string // overrides the settings file's lexicon path when set
}

// Components holds the constructed pieces of a run.
type Components struct {
	Settings Settings
	Lexicon  *lexicon.Lexicon
	Detector *detect.Detector
}

// Load reads the configuration files and returns initialized components.
// Both paths are optional: with neither set the defaults carry a run.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.SettingsPath != "" {
		settings, err := LoadSettings(l.SettingsPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		comp.Settings = settings
	}

	lexPath := comp.Settings.LexiconPath
	if l.LexiconPath != "" {
		lexPath = l.LexiconPath
	}
	if lexPath != "" {
		lex, err := lexicon.LoadFromYAML(lexPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = lexicon.Default()
	}

	comp.Detector = detect.NewDetector(comp.Lexicon)
	return comp, nil
}
