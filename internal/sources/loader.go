package sources

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNoSources indicates no sources were found in the configuration.
var ErrNoSources = errors.New("no sources found in configuration")

// file is the top-level shape of sources.yml.
type file struct {
	Sources []*Rule `yaml:"sources"`
}

// Load reads and validates the site rules from the file at path.
func Load(path string) ([]*Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, ErrNoSources
	}

	seen := make(map[string]bool, len(f.Sources))
	for _, rule := range f.Sources {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("duplicate source name %q", rule.Name)
		}
		seen[rule.Name] = true
	}
	return f.Sources, nil
}

// FindByName returns the named rule from rules, nil when absent.
func FindByName(rules []*Rule, name string) *Rule {
	for _, rule := range rules {
		if rule.Name == name {
			return rule
		}
	}
	return nil
}
