// Package normalize folds raw entity names from disclosure documents into a
// stable form used as the dedup key for entity resolution.
package normalize

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var aliasesYAML []byte

// Alias maps a canonical short form to its known textual variants.
type Alias struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

type aliasFile struct {
	Aliases []Alias `yaml:"aliases"`
}

var (
	legalSuffixRe = regexp.MustCompile(`\b(ltd|limited|inc|incorporated|pty|proprietary|p/l|pty ltd)\b`)
	punctuationRe = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// sentinels are null-equivalent inputs that normalize to the empty string.
var sentinels = map[string]bool{
	"":        true,
	"n/a":     true,
	"unknown": true,
	"nil":     true,
	"none":    true,
}

// Normalizer folds entity names. Safe for concurrent use; the alias table is
// fixed at construction.
type Normalizer struct {
	aliases []Alias
}

// New builds a Normalizer from the embedded alias table.
func New() (*Normalizer, error) {
	var f aliasFile
	if err := yaml.Unmarshal(aliasesYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing embedded alias table: %w", err)
	}
	return NewWithAliases(f.Aliases), nil
}

// NewWithAliases builds a Normalizer with an explicit alias table. The slice
// order is the match precedence.
func NewWithAliases(aliases []Alias) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Normalize folds a raw entity name. It is total and idempotent: sentinel or
// empty input returns "", a known alias variant returns its canonical form,
// and everything else is lowercased with legal suffixes and punctuation
// stripped and whitespace collapsed.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if sentinels[s] {
		return ""
	}

	for _, a := range n.aliases {
		for _, v := range a.Variants {
			if strings.Contains(s, v) {
				return a.Canonical
			}
		}
	}

	s = legalSuffixRe.ReplaceAllString(s, "")
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
