package models

import (
	"time"

	"github.com/google/uuid"
)

// Disclosure is a single declared interest line from a register document.
// Date fields are stored as free text because source documents carry partial
// or unparseable dates; the string "Unknown" is the absent-date sentinel.
type Disclosure struct {
	ID                      uuid.UUID  `json:"id"`
	HolderName              string     `json:"holder_name"`
	Affiliation             string     `json:"affiliation"`
	Constituency            string     `json:"constituency"`
	DeclarationDate         string     `json:"declaration_date"`
	Category                Category   `json:"category"`
	SubCategory             string     `json:"sub_category"`
	Item                    string     `json:"item"`
	TemporalType            TemporalType `json:"temporal_type"`
	StartDate               string     `json:"start_date"`
	EndDate                 string     `json:"end_date"`
	FreeTextDetails         string     `json:"free_text_details"`
	SourceDocumentReference string     `json:"source_document_reference"`
	EntityName              string     `json:"entity_name"`
	EntityID                *uuid.UUID `json:"entity_id,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
}

// UnknownDate is the sentinel for declaration/start/end dates that the source
// document did not state. It sorts after every real date in timelines.
const UnknownDate = "Unknown"

// Relationship is a declared association between a holder and some party
// that is not itself a categorized interest (e.g. family member positions).
type Relationship struct {
	ID               uuid.UUID `json:"id"`
	HolderName       string    `json:"holder_name"`
	Entity           string    `json:"entity"`
	RelationshipType string    `json:"relationship_type"`
	Value            string    `json:"value"`
	DateLogged       string    `json:"date_logged"`
}

// DisclosureFilter narrows disclosure listings. Zero values mean no filter.
type DisclosureFilter struct {
	HolderName string
	Category   Category
	FromDate   string
	ToDate     string
	Limit      int
	Offset     int
}
