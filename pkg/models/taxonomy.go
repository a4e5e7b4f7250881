package models

import "strings"

// Category is the fixed disclosure taxonomy. Upstream extraction output is
// free text and must pass through CoerceCategory before persistence.
type Category string

const (
	CategoryAsset      Category = "Asset"
	CategoryLiability  Category = "Liability"
	CategoryIncome     Category = "Income"
	CategoryMembership Category = "Membership"
	CategoryGift       Category = "Gift"
	CategoryTravel     Category = "Travel"
	CategoryUnknown    Category = "Unknown"
)

// AllCategories lists every valid category value.
var AllCategories = []Category{
	CategoryAsset,
	CategoryLiability,
	CategoryIncome,
	CategoryMembership,
	CategoryGift,
	CategoryTravel,
	CategoryUnknown,
}

// Valid reports whether c is one of the fixed taxonomy values.
func (c Category) Valid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// TemporalType classifies how a disclosure recurs in time.
type TemporalType string

const (
	TemporalOneTime   TemporalType = "one-time"
	TemporalRecurring TemporalType = "recurring"
	TemporalOngoing   TemporalType = "ongoing"
)

// AllTemporalTypes lists every valid temporal type value.
var AllTemporalTypes = []TemporalType{TemporalOneTime, TemporalRecurring, TemporalOngoing}

// Valid reports whether t is one of the fixed temporal type values.
func (t TemporalType) Valid() bool {
	return t == TemporalOneTime || t == TemporalRecurring || t == TemporalOngoing
}

// Subcategory constants per category.
const (
	SubcatRealEstate Subcategory = "Real Estate"
	SubcatShares     Subcategory = "Shares"
	SubcatTrust      Subcategory = "Trust"
	SubcatOtherAsset Subcategory = "Other Asset"

	SubcatMortgage       Subcategory = "Mortgage"
	SubcatLoan           Subcategory = "Loan"
	SubcatCredit         Subcategory = "Credit"
	SubcatOtherLiability Subcategory = "Other Liability"

	SubcatSalary      Subcategory = "Salary"
	SubcatDividend    Subcategory = "Dividend"
	SubcatOtherIncome Subcategory = "Other Income"

	SubcatProfessional    Subcategory = "Professional"
	SubcatOtherMembership Subcategory = "Other Membership"

	SubcatHospitality   Subcategory = "Hospitality"
	SubcatEntertainment Subcategory = "Entertainment"
	SubcatTravelGift    Subcategory = "Travel Gift"
	SubcatDecorative    Subcategory = "Decorative"
	SubcatElectronics   Subcategory = "Electronics"
	SubcatOtherGift     Subcategory = "Other Gift"

	SubcatAirTravel   Subcategory = "Air Travel"
	SubcatOtherTravel Subcategory = "Other Travel"

	SubcatOther Subcategory = "Other"
)

// Subcategory is a free-form refinement of a Category. Only the values in
// SubcategoriesFor are produced by this module, but arbitrary strings from
// upstream extraction are preserved as-is.
type Subcategory = string

var subcategoriesByCategory = map[Category][]Subcategory{
	CategoryAsset:      {SubcatRealEstate, SubcatShares, SubcatTrust, SubcatOtherAsset},
	CategoryLiability:  {SubcatMortgage, SubcatLoan, SubcatCredit, SubcatOtherLiability},
	CategoryIncome:     {SubcatSalary, SubcatDividend, SubcatOtherIncome},
	CategoryMembership: {SubcatProfessional, SubcatOtherMembership},
	CategoryGift:       {SubcatHospitality, SubcatEntertainment, SubcatTravelGift, SubcatDecorative, SubcatElectronics, SubcatOtherGift},
	CategoryTravel:     {SubcatAirTravel, SubcatOtherTravel},
	CategoryUnknown:    {SubcatOther},
}

// SubcategoriesFor returns the known subcategories for a category.
func SubcategoriesFor(c Category) []Subcategory {
	return subcategoriesByCategory[c]
}

// ValidSubcategory reports whether sub is a known subcategory of c.
func ValidSubcategory(c Category, sub Subcategory) bool {
	for _, s := range subcategoriesByCategory[c] {
		if s == sub {
			return true
		}
	}
	return false
}

// DefaultSubcategory returns the catch-all subcategory for a category.
func DefaultSubcategory(c Category) Subcategory {
	switch c {
	case CategoryAsset:
		return SubcatOtherAsset
	case CategoryLiability:
		return SubcatOtherLiability
	case CategoryIncome:
		return SubcatOtherIncome
	case CategoryMembership:
		return SubcatOtherMembership
	case CategoryGift:
		return SubcatOtherGift
	case CategoryTravel:
		return SubcatOtherTravel
	default:
		return SubcatOther
	}
}

// legacyCategories maps category labels from older extraction passes onto the
// fixed taxonomy. Checked before any fuzzy matching.
var legacyCategories = map[string]Category{
	"Liabilities":         CategoryLiability,
	"Savings/Investments": CategoryAsset,
	"Partnerships":        CategoryMembership,
	"Directorships":       CategoryMembership,
	"Other Interests":     CategoryUnknown,
}

// CoerceCategory maps an arbitrary upstream category label onto the fixed
// taxonomy: exact taxonomy values pass through, legacy labels are translated
// via an explicit table, then a case-insensitive substring match against
// taxonomy member names is attempted, and anything else becomes Unknown.
func CoerceCategory(raw string) Category {
	raw = strings.TrimSpace(raw)
	if c := Category(raw); c.Valid() {
		return c
	}
	if c, ok := legacyCategories[raw]; ok {
		return c
	}
	lower := strings.ToLower(raw)
	if lower != "" {
		for _, c := range AllCategories {
			if strings.Contains(strings.ToLower(string(c)), lower) {
				return c
			}
		}
	}
	return CategoryUnknown
}

// DefaultTemporalType derives a temporal type from a category (and, for
// Income, the subcategory) when upstream extraction did not supply one.
func DefaultTemporalType(c Category, sub Subcategory) TemporalType {
	switch c {
	case CategoryAsset, CategoryLiability:
		return TemporalOngoing
	case CategoryMembership:
		return TemporalRecurring
	case CategoryIncome:
		lower := strings.ToLower(sub)
		if strings.Contains(lower, "dividend") || strings.Contains(lower, "salary") {
			return TemporalRecurring
		}
		return TemporalOneTime
	default:
		return TemporalOneTime
	}
}
