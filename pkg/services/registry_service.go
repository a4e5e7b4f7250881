// Package services implements entity resolution, document ingestion,
// duplicate compaction, and recategorization over the disclosure store.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
)

// EntityRegistry resolves raw entity names to stable per-holder entity rows.
type EntityRegistry interface {
	// FindOrCreate resolves a raw entity name for a holder. Returns nil when
	// the name normalizes to empty (null-equivalent sentinel). Mutations run
	// against the transaction in ctx, so entity resolution commits or rolls
	// back together with the disclosure insert that triggered it.
	FindOrCreate(ctx context.Context, holderID string, category models.Category, rawEntityName, declarationDate string) (*uuid.UUID, error)

	// Timeline returns an entity's disclosures ordered by declaration date,
	// unknown dates last. Returns an error wrapping apperrors.ErrNotFound
	// when the entity does not exist.
	Timeline(ctx context.Context, entityID uuid.UUID) ([]*models.Disclosure, error)

	// EntitiesForHolder returns a holder's entities ordered by
	// (entity_type, canonical_name).
	EntitiesForHolder(ctx context.Context, holderID string) ([]*models.Entity, error)
}

type entityRegistry struct {
	entities    repositories.EntityRepository
	disclosures repositories.DisclosureRepository
	normalizer  *normalize.Normalizer
	logger      *zap.Logger
}

// NewEntityRegistry creates a new EntityRegistry.
func NewEntityRegistry(
	entities repositories.EntityRepository,
	disclosures repositories.DisclosureRepository,
	normalizer *normalize.Normalizer,
	logger *zap.Logger,
) EntityRegistry {
	return &entityRegistry{
		entities:    entities,
		disclosures: disclosures,
		normalizer:  normalizer,
		logger:      logger.Named("entity_registry"),
	}
}

var _ EntityRegistry = (*entityRegistry)(nil)

func (s *entityRegistry) FindOrCreate(ctx context.Context, holderID string, category models.Category, rawEntityName, declarationDate string) (*uuid.UUID, error) {
	normalized := s.normalizer.Normalize(rawEntityName)
	if normalized == "" {
		return nil, nil
	}
	if declarationDate == "" {
		declarationDate = models.UnknownDate
	}

	// Lookup is by (holder, normalized name) only. The same organization can
	// recur under different disclosure categories over time; entity_type is
	// informational, fixed at creation.
	existing, err := s.entities.GetByNormalizedName(ctx, holderID, normalized)
	if err != nil {
		return nil, fmt.Errorf("looking up entity %q for holder %q: %w", normalized, holderID, err)
	}

	if existing != nil {
		last := maxDeclarationDate(existing.LastAppearanceDate, declarationDate)
		if last != existing.LastAppearanceDate {
			if err := s.entities.UpdateAppearanceDates(ctx, existing.ID, existing.FirstAppearanceDate, last); err != nil {
				return nil, fmt.Errorf("updating appearance dates for entity %s: %w", existing.ID, err)
			}
		}
		return &existing.ID, nil
	}

	entity := &models.Entity{
		ID:                  uuid.New(),
		HolderID:            holderID,
		EntityType:          string(category),
		CanonicalName:       normalized,
		NormalizedName:      normalized,
		FirstAppearanceDate: declarationDate,
		LastAppearanceDate:  declarationDate,
	}
	if err := s.entities.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("creating entity %q for holder %q: %w", normalized, holderID, err)
	}

	s.logger.Debug("created entity",
		zap.String("holder_id", holderID),
		zap.String("normalized_name", normalized),
		zap.String("entity_type", string(category)))

	return &entity.ID, nil
}

func (s *entityRegistry) Timeline(ctx context.Context, entityID uuid.UUID) ([]*models.Disclosure, error) {
	if _, err := s.entities.GetByID(ctx, entityID); err != nil {
		return nil, fmt.Errorf("looking up entity %s: %w", entityID, err)
	}
	return s.disclosures.ListByEntity(ctx, entityID)
}

func (s *entityRegistry) EntitiesForHolder(ctx context.Context, holderID string) ([]*models.Entity, error) {
	return s.entities.ListByHolder(ctx, holderID)
}

// maxDeclarationDate compares two stored dates ('YYYY-MM-DD' or 'Unknown').
// The sentinel is lower than any real date; real dates compare
// lexicographically.
func maxDeclarationDate(a, b string) string {
	if b == models.UnknownDate || b == "" {
		if a == "" {
			return models.UnknownDate
		}
		return a
	}
	if a == models.UnknownDate || a == "" {
		return b
	}
	if b > a {
		return b
	}
	return a
}
