package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseConfig parses a scoring rules document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring rules YAML: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfigFile parses a scoring rules document from a file.
func ParseConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read scoring rules file: %w", err)
	}
	return ParseConfig(data)
}

// validate rejects documents whose rulesets reference rules that do not
// exist; a typo there would silently weaken every score.
func validate(cfg Config) error {
	names := make(map[string]bool, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if rule.Name == "" {
			return fmt.Errorf("scoring rule with empty name")
		}
		if names[rule.Name] {
			return fmt.Errorf("duplicate scoring rule %q", rule.Name)
		}
		names[rule.Name] = true
	}
	for _, set := range cfg.RuleSets {
		for _, ruleName := range set.RuleNames {
			if !names[ruleName] {
				return fmt.Errorf("ruleset %q references unknown rule %q", set.Name, ruleName)
			}
		}
	}
	return nil
}
