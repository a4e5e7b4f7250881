package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/civicledger/disclosure-engine/pkg/models"
)

func TestRefineItem_StripsOwnershipSuffix(t *testing.T) {
	got := RefineItem(models.CategoryLiability, "Westpac (Self)", "")
	assert.Equal(t, "Westpac", got)

	got = RefineItem(models.CategoryLiability, "Westpac (Joint)", "")
	assert.Equal(t, "Westpac", got)
}

func TestRefineItem_Asset(t *testing.T) {
	tests := []struct {
		entity  string
		details string
		want    string
	}{
		{"123 Example St", "Residential house, jointly owned", "Residential House"},
		{"City apartment", "", "Apartment"},
		{"Smith Holdings", "Savings account", "Savings Account"},
		{"Real Estate", "", "Property"},
		{"Shares", "", "Share Investments"},
		{"AustralianSuper", "Superannuation fund", "Superannuation"},
		{"Toyota", "", "Toyota"},
	}
	for _, tt := range tests {
		got := RefineItem(models.CategoryAsset, tt.entity, tt.details)
		assert.Equal(t, tt.want, got, "entity %q details %q", tt.entity, tt.details)
	}
}

func TestRefineItem_Income(t *testing.T) {
	assert.Equal(t, "Salary", RefineItem(models.CategoryIncome, "Employer", "annual salary"))
	assert.Equal(t, "Investment Income", RefineItem(models.CategoryIncome, "Broker", "dividend payments"))
	assert.Equal(t, "Rental Income", RefineItem(models.CategoryIncome, "Tenant", "rent received"))
	assert.Equal(t, "Income", RefineItem(models.CategoryIncome, "Somewhere", "something"))
}

func TestRefineItem_Gift(t *testing.T) {
	assert.Equal(t, "Tickets", RefineItem(models.CategoryGift, "AFL", "grand final tickets"))
	assert.Equal(t, "Hospitality", RefineItem(models.CategoryGift, "Company", "dinner invitation"))
	assert.Equal(t, "Gift", RefineItem(models.CategoryGift, "Someone", "unspecified"))
}

func TestRefineItem_Unknown(t *testing.T) {
	assert.Equal(t, "Property", RefineItem(models.CategoryUnknown, "X", "house in the country"))
	assert.Equal(t, "Company Interest", RefineItem(models.CategoryUnknown, "Acme Pty Ltd", ""))
	assert.Equal(t, "Interest", RefineItem(models.CategoryUnknown, "X", ""))
}

func TestRefineItem_LiabilityKeepsEntity(t *testing.T) {
	assert.Equal(t, "Westpac", RefineItem(models.CategoryLiability, "Westpac", "home loan"))
}
