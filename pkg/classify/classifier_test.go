package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicledger/disclosure-engine/pkg/models"
)

func newTestClassifier(t *testing.T) *RuleClassifier {
	t.Helper()
	c, err := NewRuleClassifier()
	require.NoError(t, err)
	return c
}

func TestClassify_LiabilityIndicatorsBeatOrganizations(t *testing.T) {
	c := newTestClassifier(t)

	// "Westpac" alone reads as shares, but a mortgage held with Westpac is
	// the liability, not a holding in the lender.
	cl := c.Classify("Mortgage on investment property", "Mortgage with Westpac")
	assert.Equal(t, models.CategoryLiability, cl.Category)
	assert.Equal(t, models.SubcatMortgage, cl.SubCategory)
	assert.Equal(t, models.TemporalOngoing, cl.TemporalType)

	cl = c.Classify("Car loan", "ANZ personal loan")
	assert.Equal(t, models.CategoryLiability, cl.Category)
	assert.Equal(t, models.SubcatLoan, cl.SubCategory)

	cl = c.Classify("Credit card", "NAB")
	assert.Equal(t, models.CategoryLiability, cl.Category)
	assert.Equal(t, models.SubcatCredit, cl.SubCategory)
}

func TestClassify_OrganizationTable(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		item    string
		details string
		want    Classification
	}{
		{"BHP Billiton", "", Classification{models.CategoryAsset, models.SubcatShares, models.TemporalOngoing}},
		{"Westpac Banking Corporation", "", Classification{models.CategoryAsset, models.SubcatShares, models.TemporalOngoing}},
		{"Tickets", "NRL grand final hospitality", Classification{models.CategoryGift, models.SubcatEntertainment, models.TemporalOneTime}},
		{"Chairman's Lounge", "", Classification{models.CategoryMembership, models.SubcatProfessional, models.TemporalRecurring}},
		{"Labor Party", "", Classification{models.CategoryMembership, models.SubcatOtherMembership, models.TemporalRecurring}},
		{"University Press", "royalties", Classification{models.CategoryIncome, models.SubcatOtherIncome, models.TemporalOneTime}},
	}
	for _, tt := range tests {
		got := c.Classify(tt.item, tt.details)
		assert.Equal(t, tt.want, got, "item %q details %q", tt.item, tt.details)
	}
}

func TestClassify_CategoryRules(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		item         string
		details      string
		wantCategory models.Category
		wantSub      string
	}{
		{"Family home", "Primary residence", models.CategoryAsset, models.SubcatRealEstate},
		{"Investment property in Brisbane", "", models.CategoryAsset, models.SubcatRealEstate},
		{"Holiday house", "", models.CategoryAsset, models.SubcatRealEstate},
		{"Share portfolio", "", models.CategoryAsset, models.SubcatShares},
		{"Smith Family Trust", "beneficiary", models.CategoryAsset, models.SubcatTrust},
		{"Superannuation", "industry super fund", models.CategoryAsset, models.SubcatOtherAsset},
		{"Member of National Press Club", "", models.CategoryMembership, models.SubcatProfessional},
		{"Union membership", "", models.CategoryMembership, models.SubcatOtherMembership},
		{"Rental income", "weekly rent", models.CategoryIncome, models.SubcatOtherIncome},
		{"Book royalties", "", models.CategoryIncome, models.SubcatOtherIncome},
		{"Two tickets", "State of Origin match", models.CategoryGift, models.SubcatEntertainment},
		{"iPad", "gift from delegation", models.CategoryGift, models.SubcatElectronics},
		{"Bottle of wine", "", models.CategoryGift, models.SubcatHospitality},
		{"Commemorative plaque", "", models.CategoryGift, models.SubcatDecorative},
		{"Flight upgrade", "", models.CategoryTravel, models.SubcatAirTravel},
		{"Hotel stay", "hotel in Canberra", models.CategoryTravel, models.SubcatOtherTravel},
	}
	for _, tt := range tests {
		got := c.Classify(tt.item, tt.details)
		assert.Equal(t, tt.wantCategory, got.Category, "item %q details %q", tt.item, tt.details)
		assert.Equal(t, tt.wantSub, got.SubCategory, "item %q details %q", tt.item, tt.details)
	}
}

func TestClassify_WordBoundaries(t *testing.T) {
	c := newTestClassifier(t)

	// "scarf" must not hit the vehicle rule through its "car" substring.
	cl := c.Classify("Scarf", "club scarf")
	assert.Equal(t, models.CategoryGift, cl.Category)
	assert.Equal(t, models.SubcatOtherGift, cl.SubCategory)

	cl = c.Classify("Car", "family vehicle")
	assert.Equal(t, models.CategoryAsset, cl.Category)
	assert.Equal(t, models.SubcatOtherAsset, cl.SubCategory)

	cl = c.Classify("ALP member", "")
	assert.Equal(t, models.CategoryMembership, cl.Category)
}

func TestClassify_Fallback(t *testing.T) {
	c := newTestClassifier(t)

	for _, tt := range []struct{ item, details string }{
		{"", ""},
		{"Miscellaneous interest", ""},
		{"zzz", "qqq"},
	} {
		got := c.Classify(tt.item, tt.details)
		assert.Equal(t, models.CategoryUnknown, got.Category, "item %q", tt.item)
		assert.Equal(t, models.SubcatOther, got.SubCategory)
		assert.Equal(t, models.TemporalOneTime, got.TemporalType)
	}
}

func TestClassify_AlwaysReturnsValidTaxonomy(t *testing.T) {
	c := newTestClassifier(t)

	inputs := []struct{ item, details string }{
		{"", ""},
		{"Family home", ""},
		{"shares", "in a time share resort"},
		{"Mortgage", "Westpac"},
		{"random text with no category signal", "more noise"},
	}
	for _, in := range inputs {
		got := c.Classify(in.item, in.details)
		assert.True(t, got.Category.Valid(), "item %q", in.item)
		assert.True(t, got.TemporalType.Valid(), "item %q", in.item)
		assert.NotEmpty(t, got.SubCategory, "item %q", in.item)
	}
}

func TestIsEmptyEntry(t *testing.T) {
	empty := []string{
		"n/a",
		"N/A",
		"nil",
		"none",
		"not applicable",
		"n/a n/a",
		"self: n/a",
		"spouse: nil",
		"partner nil",
		"dependent children: none",
	}
	for _, s := range empty {
		assert.True(t, IsEmptyEntry(s), "input %q", s)
	}

	nonEmpty := []string{
		"",
		"family home",
		"n/a but also shares in bhp",
		"spouse: shares in telstra",
	}
	for _, s := range nonEmpty {
		assert.False(t, IsEmptyEntry(s), "input %q", s)
	}
}
