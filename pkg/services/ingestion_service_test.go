package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/classify"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
)

type ingestionFixture struct {
	tx            *fakeTxRunner
	entities      *mockEntityRepo
	disclosures   *mockDisclosureRepo
	relationships *mockRelationshipRepo
	svc           IngestionService
}

func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()

	normalizer, err := normalize.New()
	require.NoError(t, err)
	classifier, err := classify.NewRuleClassifier()
	require.NoError(t, err)

	f := &ingestionFixture{
		tx:            &fakeTxRunner{},
		entities:      &mockEntityRepo{},
		disclosures:   &mockDisclosureRepo{},
		relationships: &mockRelationshipRepo{},
	}
	registry := NewEntityRegistry(f.entities, f.disclosures, normalizer, zap.NewNop())
	f.svc = NewIngestionService(f.tx, registry, f.disclosures, f.relationships, classifier, 0, zap.NewNop())
	return f
}

func TestIngest_ResolvesEntitiesAcrossLines(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName:   "Jane Citizen",
		Affiliation:  "Independent",
		Constituency: "Warringah",
		Disclosures: []models.RawDisclosure{
			{Item: "Shares", Entity: "BHP Billiton Ltd", Category: "Asset", DeclarationDate: "2022-01-01"},
			{Item: "Dividend", Entity: "BHP Group", Category: "Income", DeclarationDate: "2023-01-01"},
			{Item: "Shares", Entity: "Telstra Corporation", Category: "Asset", DeclarationDate: "2022-01-01"},
			{Item: "Family home", Entity: "123 Example St", Category: "Asset", DeclarationDate: "2022-01-01"},
			{Item: "More shares", Entity: "bhp", Category: "Asset", DeclarationDate: "2024-01-01"},
		},
	}

	ids, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)
	assert.Len(t, ids, 5)
	assert.Len(t, f.disclosures.disclosures, 5)

	// Three distinct entities: bhp (three spellings), telstra, the property.
	assert.Len(t, f.entities.entities, 3)
	assert.Equal(t, 1, f.tx.calls)

	bhp, err := f.entities.GetByNormalizedName(context.Background(), "Jane Citizen", "bhp")
	require.NoError(t, err)
	require.NotNil(t, bhp)
	assert.Equal(t, "2022-01-01", bhp.FirstAppearanceDate)
	assert.Equal(t, "2024-01-01", bhp.LastAppearanceDate)
}

func TestIngest_FillsClassificationFromRules(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{Item: "Mortgage on investment property", Details: "Mortgage with Westpac", DeclarationDate: "2023-01-01"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.disclosures.disclosures, 1)
	d := f.disclosures.disclosures[0]
	assert.Equal(t, models.CategoryLiability, d.Category)
	assert.Equal(t, models.SubcatMortgage, d.SubCategory)
	assert.Equal(t, models.TemporalOngoing, d.TemporalType)
}

func TestIngest_KnownCategoryKeptWhenClassifierDisagrees(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			// Extraction says Gift; the text reads as an asset. The upstream
			// category wins, with per-category defaults for the gaps.
			{Item: "Family home", Category: "Gift", DeclarationDate: "2023-01-01"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.disclosures.disclosures, 1)
	d := f.disclosures.disclosures[0]
	assert.Equal(t, models.CategoryGift, d.Category)
	assert.Equal(t, models.SubcatOtherGift, d.SubCategory)
	assert.Equal(t, models.TemporalOneTime, d.TemporalType)
}

func TestIngest_SkipsMalformedLines(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{DeclarationDate: "2023-01-01"},
			{Item: "Shares", Entity: "Telstra", Category: "Asset", DeclarationDate: "2023-01-01"},
		},
	}

	ids, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Len(t, f.disclosures.disclosures, 1)
}

func TestIngest_EmptyEntryKeepsCoercedCategory(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{Item: "self: n/a", Category: "Liabilities", DeclarationDate: "2023-01-01"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.disclosures.disclosures, 1)
	d := f.disclosures.disclosures[0]
	assert.Equal(t, models.CategoryLiability, d.Category)
	assert.Equal(t, models.SubcatOtherLiability, d.SubCategory)
	assert.Equal(t, models.TemporalOngoing, d.TemporalType)
}

func TestIngest_DefaultsForMissingFields(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		SourceDocumentReference: "https://example.org/doc.pdf",
		Disclosures: []models.RawDisclosure{
			{Item: "Mystery interest"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.disclosures.disclosures, 1)
	d := f.disclosures.disclosures[0]
	assert.Equal(t, "Unknown", d.HolderName)
	assert.Equal(t, "Unknown", d.Affiliation)
	assert.Equal(t, "Unknown", d.Constituency)
	assert.Equal(t, models.UnknownDate, d.DeclarationDate)
	assert.Equal(t, models.UnknownDate, d.StartDate)
	assert.Equal(t, "https://example.org/doc.pdf", d.SourceDocumentReference)
	assert.Nil(t, d.EntityID)
}

func TestIngest_RefinesItemCopiedFromEntity(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{Item: "Acme Super Fund", Entity: "Acme Super Fund", Category: "Asset",
				Details: "Superannuation fund", DeclarationDate: "2023-01-01"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.disclosures.disclosures, 1)
	d := f.disclosures.disclosures[0]
	assert.Equal(t, "Superannuation", d.Item)
	assert.Equal(t, "Acme Super Fund", d.EntityName)
}

func TestIngest_StorageErrorAbortsDocument(t *testing.T) {
	f := newIngestionFixture(t)
	f.disclosures.createErr = assert.AnError

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{Item: "Shares", Entity: "Telstra", Category: "Asset", DeclarationDate: "2023-01-01"},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disclosure 0")
}

func TestIngest_StoresRelationships(t *testing.T) {
	f := newIngestionFixture(t)

	doc := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Relationships: []models.RawRelationship{
			{Entity: "Spouse", RelationshipType: "family", DateLogged: "2023-01-01"},
			{},
		},
	}

	_, err := f.svc.Ingest(context.Background(), doc)
	require.NoError(t, err)

	require.Len(t, f.relationships.relationships, 2)
	assert.Equal(t, "Spouse", f.relationships.relationships[0].Entity)
	assert.Equal(t, "Undisclosed", f.relationships.relationships[0].Value)

	blank := f.relationships.relationships[1]
	assert.Equal(t, "Unknown", blank.Entity)
	assert.Equal(t, "Unknown", blank.RelationshipType)
	assert.Equal(t, "Undisclosed", blank.Value)
	assert.Equal(t, models.UnknownDate, blank.DateLogged)
}

func TestIngestBatch_ContinuesPastFailures(t *testing.T) {
	f := newIngestionFixture(t)

	good := &models.ExtractedDocument{
		HolderName: "Jane Citizen",
		Disclosures: []models.RawDisclosure{
			{Item: "Shares", Entity: "Telstra", Category: "Asset", DeclarationDate: "2023-01-01"},
		},
	}
	bad := &models.ExtractedDocument{
		HolderName: "John Smith",
		Disclosures: []models.RawDisclosure{
			{Item: "Shares", Entity: "Telstra", Category: "Asset", DeclarationDate: "2023-01-01"},
		},
	}

	result := f.svc.IngestBatch(context.Background(), []*models.ExtractedDocument{good})
	require.Equal(t, 1, result.Succeeded)

	f.disclosures.createErr = assert.AnError
	result = f.svc.IngestBatch(context.Background(), []*models.ExtractedDocument{bad, good})
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, []string{"John Smith", "Jane Citizen"}, result.FailedHolders)
}
