// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package provider

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// # Rule Table

// Rule maps a provider name pattern onto a type.
type Rule struct {
	Name    string     `yaml:"name"`
	Pattern string     `yaml:"pattern"`
	Type    Type       `yaml:"type"`
	Source  SourceType `yaml:"source,omitempty"`
	Active  *bool      `yaml:"active,omitempty"`

	compiled *regexp.Regexp
}

// Example is a provider name with its expected classification.
type Example struct {
	Name   string     `yaml:"name"`
	Source SourceType `yaml:"source"`
	Type   Type       `yaml:"type"`
	Active *bool      `yaml:"active,omitempty"`
}

// RuleSet is the ordered classification table.
type RuleSet struct {
	Rules    []Rule    `yaml:"rules"`
	Examples []Example `yaml:"examples"`
}

// DefaultRules returns the embedded table.
func DefaultRules() (*RuleSet, error) {
	return LoadRules(bytes.NewReader(defaultRules))
}

// LoadRulesFile reads a table from disk. An empty path yields [DefaultRules].
func LoadRulesFile(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRules()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("provider: open rules: %w", err)
	}
	defer file.Close()

	return LoadRules(file)
}

/*
LoadRules decodes, compiles and verifies a rule table.

Description: Patterns are compiled case-insensitively. A table whose own
examples do not classify as declared is rejected.

Parameters:
  - reader: io.Reader (YAML document)

Returns:
  - *RuleSet: the ready-to-use table
  - error: decode, compile, validation or verification failure
*/
func LoadRules(reader io.Reader) (*RuleSet, error) {
	var rules RuleSet

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&rules); err != nil {
		return nil, fmt.Errorf("provider: decode rules: %w", err)
	}

	if err := rules.compile(); err != nil {
		return nil, err
	}
	if err := rules.Verify(); err != nil {
		return nil, err
	}

	return &rules, nil
}

func (rules *RuleSet) compile() error {
	var problems []error

	for index := range rules.Rules {
		rule := &rules.Rules[index]

		if rule.Name == "" {
			problems = append(problems, fmt.Errorf("rule %d: name is required", index))
		}
		if !rule.Type.Valid() {
			problems = append(problems, fmt.Errorf("rule %q: unknown type %q", rule.Name, rule.Type))
		}
		if rule.Source != "" && !rule.Source.Valid() {
			problems = append(problems, fmt.Errorf("rule %q: unknown source %q", rule.Name, rule.Source))
		}

		compiled, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			problems = append(problems, fmt.Errorf("rule %q: %w", rule.Name, err))
			continue
		}
		rule.compiled = compiled
	}

	if err := errors.Join(problems...); err != nil {
		return fmt.Errorf("provider: invalid rules: %w", err)
	}
	return nil
}

// Verify classifies every example and reports each mismatch.
func (rules *RuleSet) Verify() error {
	var problems []error

	for _, example := range rules.Examples {
		got := rules.Classify(Raw{Name: example.Name, Source: example.Source})

		wantActive := example.Active == nil || *example.Active
		if got.Type != example.Type || got.Active != wantActive {
			problems = append(problems, fmt.Errorf("example %q (%s): got %s/active=%t by rule %q, want %s/active=%t",
				example.Name, example.Source, got.Type, got.Active, got.Rule, example.Type, wantActive))
		}
	}

	if err := errors.Join(problems...); err != nil {
		return fmt.Errorf("provider: rule examples failed: %w", err)
	}
	return nil
}

// # Classification

// Raw is a provider record as read from either feed.
type Raw struct {
	ExternalID int64
	Name       string
	LogoPath   string
	Source     SourceType
}

// Classification is the outcome of evaluating the table against a [Raw].
type Classification struct {
	ProviderID string
	Type       Type
	Active     bool

	// Rule names the matching rule; empty when the fallback applied.
	Rule string
}

// Classify evaluates the rules top to bottom; the first match wins and an
// unmatched name is an active streaming platform.
func (rules *RuleSet) Classify(raw Raw) Classification {
	classification := Classification{
		ProviderID: CanonicalID(raw.Source, raw.ExternalID),
		Type:       TypeStreaming,
		Active:     true,
	}

	for _, rule := range rules.Rules {
		if rule.Source != "" && rule.Source != raw.Source {
			continue
		}
		if rule.compiled == nil || !rule.compiled.MatchString(raw.Name) {
			continue
		}

		classification.Type = rule.Type
		classification.Active = rule.Active == nil || *rule.Active
		classification.Rule = rule.Name
		break
	}

	return classification
}

// Provider builds the persisted row for raw.
func (rules *RuleSet) Provider(raw Raw, regions ...string) Provider {
	classification := rules.Classify(raw)
	return Provider{
		ID:         classification.ProviderID,
		ExternalID: raw.ExternalID,
		Name:       raw.Name,
		LogoPath:   raw.LogoPath,
		Type:       classification.Type,
		SourceType: raw.Source,
		Active:     classification.Active,
		Regions:    normalizeRegions(regions),
	}
}
