// Package classify assigns disclosure lines to the fixed category taxonomy.
// A rule-driven classifier handles the common cases; an LLM-backed pass is
// available for the residue that stays Unknown.
package classify

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/civicledger/disclosure-engine/pkg/models"
)

//go:embed rules.yaml
var rulesYAML []byte

// Classification is the classifier output. Always a member of the fixed
// taxonomy; the fallback is (Unknown, Other, one-time).
type Classification struct {
	Category     models.Category
	SubCategory  string
	TemporalType models.TemporalType
}

type liabilityIndicator struct {
	Keyword     string `yaml:"keyword"`
	SubCategory string `yaml:"subcategory"`

	re *regexp.Regexp
}

type orgEntry struct {
	Match       string          `yaml:"match"`
	Category    models.Category `yaml:"category"`
	SubCategory string          `yaml:"subcategory"`

	re *regexp.Regexp
}

type patternRule struct {
	Pattern      string              `yaml:"pattern"`
	Exclude      string              `yaml:"exclude"`
	SubCategory  string              `yaml:"subcategory"`
	TemporalType models.TemporalType `yaml:"temporal_type"`

	re        *regexp.Regexp
	excludeRe *regexp.Regexp
}

type categoryRules struct {
	Category models.Category `yaml:"category"`
	Rules    []patternRule   `yaml:"rules"`
}

type ruleFile struct {
	LiabilityIndicators []liabilityIndicator `yaml:"liability_indicators"`
	Organizations       []orgEntry           `yaml:"organizations"`
	Categories          []categoryRules      `yaml:"categories"`
}

// RuleClassifier classifies disclosure text with ordered pattern tables.
// Construction compiles every pattern once; the classifier is then safe for
// concurrent use.
type RuleClassifier struct {
	liabilities []liabilityIndicator
	orgs        []orgEntry
	categories  []categoryRules
}

// NewRuleClassifier builds a classifier from the embedded rule tables.
func NewRuleClassifier() (*RuleClassifier, error) {
	var f ruleFile
	if err := yaml.Unmarshal(rulesYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing embedded rule tables: %w", err)
	}

	for i := range f.LiabilityIndicators {
		ind := &f.LiabilityIndicators[i]
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(ind.Keyword) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling liability indicator %q: %w", ind.Keyword, err)
		}
		ind.re = re
	}

	for i := range f.Organizations {
		org := &f.Organizations[i]
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(org.Match) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compiling organization match %q: %w", org.Match, err)
		}
		org.re = re
	}

	for ci := range f.Categories {
		cat := &f.Categories[ci]
		if !cat.Category.Valid() {
			return nil, fmt.Errorf("rule table references unknown category %q", cat.Category)
		}
		for ri := range cat.Rules {
			rule := &cat.Rules[ri]
			re, err := regexp.Compile(`(?i)` + rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling %s rule %d: %w", cat.Category, ri, err)
			}
			rule.re = re
			if rule.Exclude != "" {
				exRe, err := regexp.Compile(`(?i)` + rule.Exclude)
				if err != nil {
					return nil, fmt.Errorf("compiling %s rule %d exclusion: %w", cat.Category, ri, err)
				}
				rule.excludeRe = exRe
			}
		}
	}

	return &RuleClassifier{
		liabilities: f.LiabilityIndicators,
		orgs:        f.Organizations,
		categories:  f.Categories,
	}, nil
}

// Classify assigns a category, subcategory, and temporal type to a disclosure
// line. Total: any input, including empty strings, yields a taxonomy member.
//
// Match order: liability indicators, then the known-organization table, then
// per-category pattern rules, then the (Unknown, Other, one-time) fallback.
// Liability indicators run before the organization table so that "mortgage
// with <bank>" reads as the liability, not as shares in the lender.
func (c *RuleClassifier) Classify(item, details string) Classification {
	itemLower := strings.ToLower(item)
	detailsLower := strings.ToLower(details)
	combined := itemLower + " " + detailsLower

	for _, ind := range c.liabilities {
		if ind.re.MatchString(combined) {
			return Classification{
				Category:     models.CategoryLiability,
				SubCategory:  ind.SubCategory,
				TemporalType: models.TemporalOngoing,
			}
		}
	}

	for _, org := range c.orgs {
		if org.re.MatchString(itemLower) || org.re.MatchString(detailsLower) {
			return Classification{
				Category:     org.Category,
				SubCategory:  org.SubCategory,
				TemporalType: models.DefaultTemporalType(org.Category, org.SubCategory),
			}
		}
	}

	for _, cat := range c.categories {
		for _, rule := range cat.Rules {
			if !rule.re.MatchString(combined) {
				continue
			}
			if rule.excludeRe != nil && rule.excludeRe.MatchString(combined) {
				continue
			}
			return Classification{
				Category:     cat.Category,
				SubCategory:  rule.SubCategory,
				TemporalType: rule.TemporalType,
			}
		}
	}

	return Classification{
		Category:     models.CategoryUnknown,
		SubCategory:  models.SubcatOther,
		TemporalType: models.TemporalOneTime,
	}
}

var emptyEntryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:n/?a|nil|none|not\s*applicable)$`),
	regexp.MustCompile(`(?i)^(?:n/?a|nil|none|not\s*applicable)\s+(?:n/?a|nil|none|not\s*applicable)$`),
	regexp.MustCompile(`(?i)^(?:spouse|partner|dependent\s*children):?\s*(?:n/?a|nil|none|not\s*applicable)$`),
	regexp.MustCompile(`(?i)^(?:self):?\s*(?:n/?a|nil|none|not\s*applicable)$`),
}

// IsEmptyEntry reports whether the combined item+details text is a
// null-equivalent placeholder ("n/a", "self: nil", ...) that callers should
// skip rather than classify.
func IsEmptyEntry(text string) bool {
	text = strings.TrimSpace(text)
	for _, re := range emptyEntryPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
