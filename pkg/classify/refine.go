package classify

import (
	"regexp"
	"strings"

	"github.com/civicledger/disclosure-engine/pkg/models"
)

// Raw extraction frequently copies the organization name into both the item
// and entity fields. RefineItem derives a more specific item description from
// the details text when it can. Best effort only: when nothing better can be
// derived it returns the entity name unchanged, and callers must not treat
// the output as authoritative.

var ownershipSuffixRe = regexp.MustCompile(`(?i)\s*\((?:Self|Spouse|Dependent|Joint)\)$`)

// RefineItem returns an item description for a disclosure whose item merely
// duplicates its entity name.
func RefineItem(category models.Category, entity, details string) string {
	entity = ownershipSuffixRe.ReplaceAllString(entity, "")

	switch category {
	case models.CategoryAsset:
		return refineAssetItem(entity, details)
	case models.CategoryIncome:
		return refineIncomeItem(entity, details)
	case models.CategoryGift:
		return refineGiftItem(entity, details)
	case models.CategoryMembership:
		return refineMembershipItem(entity, details)
	case models.CategoryTravel:
		return refineTravelItem(entity, details)
	case models.CategoryUnknown:
		return refineUnknownItem(entity, details)
	default:
		return entity
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func refineAssetItem(entity, details string) string {
	entityLower := strings.ToLower(entity)
	detailsLower := strings.ToLower(details)

	switch {
	case containsAny(detailsLower, "accommodation", "hotel"):
		return "Accommodation"
	case strings.Contains(detailsLower, "share in") && containsAny(entityLower+" "+detailsLower, "horse"):
		return "Race Horse Ownership"
	case strings.Contains(detailsLower, "saving"):
		return "Savings Account"
	case strings.Contains(detailsLower, "superannuation"):
		return "Superannuation"
	}

	switch entityLower {
	case "dependent children":
		return "Family Related"
	case "real estate":
		return "Property"
	case "salary":
		return "Employment Income"
	case "shares":
		return "Share Investments"
	}

	combined := entityLower + " " + detailsLower
	switch {
	case containsAny(combined, "house"):
		return "Residential House"
	case containsAny(combined, "apartment", "unit"):
		return "Apartment"
	case containsAny(combined, "land"):
		return "Land"
	case containsAny(combined, "farm"):
		return "Farm Property"
	case containsAny(entityLower, "real estate", "property"):
		return "Real Estate"
	case containsAny(entityLower, "fund"):
		return "Investment Fund"
	case containsAny(entityLower, "share", "stock", "investment"):
		return "Shares"
	case containsAny(entityLower, "bank", "deposit", "cash", "account"):
		return "Bank Account"
	case containsAny(entityLower, "car", "vehicle", "motor"):
		return "Motor Vehicle"
	case containsAny(entityLower, "super", "retirement"):
		return "Superannuation"
	}
	return entity
}

func refineIncomeItem(entity, details string) string {
	combined := strings.ToLower(entity) + " " + strings.ToLower(details)
	switch {
	case containsAny(combined, "salary", "wage", "employment"):
		return "Salary"
	case containsAny(combined, "dividend", "interest"):
		return "Investment Income"
	case containsAny(combined, "rent"):
		return "Rental Income"
	case containsAny(combined, "pension", "retirement"):
		return "Pension"
	case containsAny(strings.ToLower(entity), "department", "ministry", "pty ltd", "limited", "university", "council"):
		return "Employment Income"
	}
	return "Income"
}

func refineGiftItem(entity, details string) string {
	combined := strings.ToLower(entity) + " " + strings.ToLower(details)
	detailsLower := strings.ToLower(details)
	switch {
	case containsAny(combined, "ticket"):
		return "Tickets"
	case containsAny(combined, "book", "publication"):
		return "Books"
	case containsAny(detailsLower, "hospitality", "dinner", "lunch", "breakfast"):
		return "Hospitality"
	case containsAny(detailsLower, "travel", "flight", "accommodation"):
		return "Travel"
	case containsAny(detailsLower, "artwork", "painting", "sculpture"):
		return "Artwork"
	}
	return "Gift"
}

func refineMembershipItem(entity, details string) string {
	entityLower := strings.ToLower(entity)
	combined := entityLower + " " + strings.ToLower(details)
	switch {
	case containsAny(entityLower, "club", "association") && containsAny(entityLower, "sport", "golf", "tennis", "football", "rugby", "cricket"):
		return "Sporting Club Membership"
	case containsAny(entityLower, "club", "association"):
		return "Club Membership"
	case containsAny(combined, "board", "director", "trustee"):
		return "Board Membership"
	case containsAny(combined, "professional", "industry"):
		return "Professional Association"
	}
	return "Membership"
}

func refineTravelItem(entity, details string) string {
	combined := strings.ToLower(entity) + " " + strings.ToLower(details)
	switch {
	case containsAny(combined, "flight", "air"):
		return "Flights"
	case containsAny(combined, "accommodation", "hotel", "stay"):
		return "Accommodation"
	case containsAny(combined, "conference", "event", "meeting"):
		return "Conference Travel"
	}
	return "Travel"
}

func refineUnknownItem(entity, details string) string {
	detailsLower := strings.ToLower(details)
	switch {
	case containsAny(detailsLower, "property", "house", "apartment", "land"):
		return "Property"
	case containsAny(detailsLower, "share", "stock", "investment"):
		return "Investment"
	case containsAny(detailsLower, "salary", "employment", "income"):
		return "Income"
	case containsAny(detailsLower, "gift", "present"):
		return "Gift"
	case containsAny(detailsLower, "travel", "flight", "accommodation"):
		return "Travel"
	case len(details) > 5 && details != entity && !IsEmptyEntry(details):
		return details
	case containsAny(strings.ToLower(entity), "pty", "ltd", "limited", "inc"):
		return "Company Interest"
	}
	return "Interest"
}
