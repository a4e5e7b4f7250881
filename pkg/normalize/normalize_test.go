package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Sentinels(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	for _, raw := range []string{"", "  ", "N/A", "n/a", "Unknown", "unknown", "Nil", "None"} {
		assert.Equal(t, "", n.Normalize(raw), "input %q", raw)
	}
}

func TestNormalize_AliasVariantsFoldTogether(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want string
	}{
		{"BHP Billiton Ltd", "bhp"},
		{"BHP Group", "bhp"},
		{"bhp", "bhp"},
		{"Qantas Airways Limited", "qantas"},
		{"Qantas Frequent Flyer", "qantas"},
		{"Commonwealth Bank of Australia", "commonwealth bank"},
		{"CBA", "commonwealth bank"},
		{"National Australia Bank", "nab"},
		{"Westpac Banking Corporation", "westpac"},
		{"ANZ Bank", "anz"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.raw), "input %q", tt.raw)
	}
}

func TestNormalize_StripsLegalSuffixesAndPunctuation(t *testing.T) {
	n := NewWithAliases(nil)

	tests := []struct {
		raw  string
		want string
	}{
		{"Acme Pty Ltd", "acme"},
		{"ACME", "acme"},
		{"Acme Proprietary Limited", "acme"},
		{"Acme Inc.", "acme"},
		{"Acme Incorporated", "acme"},
		{"Smith & Jones, P/L", "smith jones"},
		{"  Spaced   Out   Name  ", "spaced out name"},
		{"O'Brien Holdings", "o brien holdings"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.raw), "input %q", tt.raw)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	inputs := []string{
		"BHP Billiton Ltd",
		"Acme Pty Ltd",
		"Smith & Jones, P/L",
		"Investment Property - Brisbane (Jointly Owned)",
		"n/a",
		"",
	}
	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		assert.Equal(t, once, twice, "input %q", raw)
	}
}

func TestNormalize_DistinctNamesStayDistinct(t *testing.T) {
	n, err := New()
	require.NoError(t, err)

	assert.NotEqual(t, n.Normalize("Smith Family Trust"), n.Normalize("Jones Family Trust"))
	assert.NotEqual(t, n.Normalize("Telstra"), n.Normalize("Optus"))
}

func TestNormalize_AliasOrderIsPrecedence(t *testing.T) {
	n := NewWithAliases([]Alias{
		{Canonical: "first", Variants: []string{"acme"}},
		{Canonical: "second", Variants: []string{"acme corp"}},
	})

	assert.Equal(t, "first", n.Normalize("Acme Corp Pty Ltd"))
}
