package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractedDocument_UnmarshalJSON(t *testing.T) {
	input := `{
		"holder_name": "Jane Citizen",
		"affiliation": "Independent",
		"constituency": "Warringah",
		"source_document_reference": "https://example.org/decl/1.pdf",
		"disclosures": [
			{
				"declaration_date": "2023-05-01",
				"category": "Asset",
				"sub_category": "Shares",
				"item": "BHP shares",
				"entity": "BHP Billiton Ltd",
				"temporal_type": "ongoing",
				"details": "Portfolio holding"
			}
		],
		"relationships": [
			{
				"entity": "Spouse",
				"relationship_type": "family",
				"value": "Undisclosed",
				"date_logged": "2023-05-01"
			}
		]
	}`

	var doc ExtractedDocument
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, "Jane Citizen", doc.HolderName)
	assert.Equal(t, "Independent", doc.Affiliation)
	assert.Equal(t, "Warringah", doc.Constituency)
	assert.Equal(t, "https://example.org/decl/1.pdf", doc.SourceDocumentReference)
	require.Len(t, doc.Disclosures, 1)
	assert.Equal(t, "BHP shares", doc.Disclosures[0].Item)
	assert.Equal(t, "BHP Billiton Ltd", doc.Disclosures[0].Entity)
	require.Len(t, doc.Relationships, 1)
	assert.Equal(t, "family", doc.Relationships[0].RelationshipType)
}

func TestExtractedDocument_UnmarshalJSON_LegacyFieldNames(t *testing.T) {
	input := `{
		"mp_name": "John Smith",
		"party": "Labor",
		"electorate": "Grayndler",
		"disclosures": [
			{"item": "Shares", "pdf_url": "https://example.org/old.pdf"}
		]
	}`

	var doc ExtractedDocument
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, "John Smith", doc.HolderName)
	assert.Equal(t, "Labor", doc.Affiliation)
	assert.Equal(t, "Grayndler", doc.Constituency)
	require.Len(t, doc.Disclosures, 1)
	assert.Equal(t, "https://example.org/old.pdf", doc.Disclosures[0].SourceDocumentReference)
}

func TestExtractedDocument_UnmarshalJSON_MistypedScalars(t *testing.T) {
	input := `{
		"holder_name": 42,
		"affiliation": null,
		"disclosures": [
			{"declaration_date": 2023, "item": true, "details": null}
		]
	}`

	var doc ExtractedDocument
	require.NoError(t, json.Unmarshal([]byte(input), &doc))

	assert.Equal(t, "42", doc.HolderName)
	assert.Equal(t, "", doc.Affiliation)
	require.Len(t, doc.Disclosures, 1)
	assert.Equal(t, "2023", doc.Disclosures[0].DeclarationDate)
	assert.Equal(t, "true", doc.Disclosures[0].Item)
	assert.Equal(t, "", doc.Disclosures[0].Details)
}

func TestExtractedDocument_UnmarshalJSON_MissingSections(t *testing.T) {
	var doc ExtractedDocument
	require.NoError(t, json.Unmarshal([]byte(`{"holder_name": "X"}`), &doc))

	assert.Equal(t, "X", doc.HolderName)
	assert.Empty(t, doc.Disclosures)
	assert.Empty(t, doc.Relationships)
}
