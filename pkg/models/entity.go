package models

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a resolved real-world party (company, trust, employer) that one
// holder has disclosed interests in. Entities are scoped per holder: the same
// organization disclosed by two holders yields two entity rows.
//
// NormalizedName is the dedup key; CanonicalName is the display form and may
// be rewritten by a merge.
type Entity struct {
	ID                  uuid.UUID `json:"id"`
	HolderID            string    `json:"holder_id"`
	EntityType          string    `json:"entity_type"`
	CanonicalName       string    `json:"canonical_name"`
	NormalizedName      string    `json:"normalized_name"`
	FirstAppearanceDate string    `json:"first_appearance_date"`
	LastAppearanceDate  string    `json:"last_appearance_date"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DuplicateGroup is a set of same-holder entities whose canonical names
// normalize to the same string. Members always has at least two entries.
type DuplicateGroup struct {
	HolderID       string
	NormalizedName string
	Members        []*Entity
}
