package models

import (
	"encoding/json"
	"fmt"

	"github.com/civicledger/disclosure-engine/pkg/jsonutil"
)

// ExtractedDocument is the output of the upstream extraction service for one
// source document. It is untrusted: fields may be absent, null, or carry the
// wrong JSON type, so every field goes through flexible decoding.
type ExtractedDocument struct {
	HolderName              string
	Affiliation             string
	Constituency            string
	SourceDocumentReference string
	Disclosures             []RawDisclosure
	Relationships           []RawRelationship
}

// RawDisclosure is one unvalidated disclosure line from extraction output.
type RawDisclosure struct {
	DeclarationDate         string
	Category                string
	SubCategory             string
	Item                    string
	Entity                  string
	TemporalType            string
	StartDate               string
	EndDate                 string
	Details                 string
	SourceDocumentReference string
}

// RawRelationship is one unvalidated relationship line from extraction output.
type RawRelationship struct {
	Entity           string
	RelationshipType string
	Value            string
	DateLogged       string
}

// UnmarshalJSON decodes a document leniently: scalar fields accept strings,
// numbers, booleans, or null.
func (d *ExtractedDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding extracted document: %w", err)
	}

	d.HolderName = jsonutil.AsString(raw["holder_name"])
	if d.HolderName == "" {
		d.HolderName = jsonutil.AsString(raw["mp_name"])
	}
	d.Affiliation = jsonutil.AsString(raw["affiliation"])
	if d.Affiliation == "" {
		d.Affiliation = jsonutil.AsString(raw["party"])
	}
	d.Constituency = jsonutil.AsString(raw["constituency"])
	if d.Constituency == "" {
		d.Constituency = jsonutil.AsString(raw["electorate"])
	}
	d.SourceDocumentReference = jsonutil.AsString(raw["source_document_reference"])

	if entries, ok := raw["disclosures"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(entries, &items); err != nil {
			return fmt.Errorf("decoding disclosures list: %w", err)
		}
		d.Disclosures = make([]RawDisclosure, 0, len(items))
		for i, item := range items {
			var line RawDisclosure
			if err := json.Unmarshal(item, &line); err != nil {
				return fmt.Errorf("decoding disclosure %d: %w", i, err)
			}
			d.Disclosures = append(d.Disclosures, line)
		}
	}

	if entries, ok := raw["relationships"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(entries, &items); err != nil {
			return fmt.Errorf("decoding relationships list: %w", err)
		}
		d.Relationships = make([]RawRelationship, 0, len(items))
		for i, item := range items {
			var line RawRelationship
			if err := json.Unmarshal(item, &line); err != nil {
				return fmt.Errorf("decoding relationship %d: %w", i, err)
			}
			d.Relationships = append(d.Relationships, line)
		}
	}

	return nil
}

// UnmarshalJSON decodes one disclosure line leniently. Older extraction
// passes use "pdf_url" for the source reference; both spellings are accepted.
func (r *RawDisclosure) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding disclosure line: %w", err)
	}

	r.DeclarationDate = jsonutil.AsString(raw["declaration_date"])
	r.Category = jsonutil.AsString(raw["category"])
	r.SubCategory = jsonutil.AsString(raw["sub_category"])
	r.Item = jsonutil.AsString(raw["item"])
	r.Entity = jsonutil.AsString(raw["entity"])
	r.TemporalType = jsonutil.AsString(raw["temporal_type"])
	r.StartDate = jsonutil.AsString(raw["start_date"])
	r.EndDate = jsonutil.AsString(raw["end_date"])
	r.Details = jsonutil.AsString(raw["details"])
	r.SourceDocumentReference = jsonutil.AsString(raw["source_document_reference"])
	if r.SourceDocumentReference == "" {
		r.SourceDocumentReference = jsonutil.AsString(raw["pdf_url"])
	}

	return nil
}

// UnmarshalJSON decodes one relationship line leniently.
func (r *RawRelationship) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding relationship line: %w", err)
	}

	r.Entity = jsonutil.AsString(raw["entity"])
	r.RelationshipType = jsonutil.AsString(raw["relationship_type"])
	r.Value = jsonutil.AsString(raw["value"])
	r.DateLogged = jsonutil.AsString(raw["date_logged"])

	return nil
}
