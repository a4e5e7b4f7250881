package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/civicledger/disclosure-engine/pkg/apperrors"
	"github.com/civicledger/disclosure-engine/pkg/models"
)

// fakeTxRunner invokes the callback directly. Tests that care about rollback
// set failAfter to make the callback error surface.
type fakeTxRunner struct {
	calls int
	err   error
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// mockEntityRepo implements repositories.EntityRepository in memory.
type mockEntityRepo struct {
	entities  []*models.Entity
	createErr error
	getErr    error
	deleted   []uuid.UUID
	renamed   map[uuid.UUID]string
}

func (m *mockEntityRepo) Create(_ context.Context, entity *models.Entity) error {
	if m.createErr != nil {
		return m.createErr
	}
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	m.entities = append(m.entities, entity)
	return nil
}

func (m *mockEntityRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Entity, error) {
	for _, e := range m.entities {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockEntityRepo) GetByNormalizedName(_ context.Context, holderID, normalizedName string) (*models.Entity, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, e := range m.entities {
		if e.HolderID == holderID && e.NormalizedName == normalizedName {
			return e, nil
		}
	}
	return nil, nil
}

func (m *mockEntityRepo) ListByHolder(_ context.Context, holderID string) ([]*models.Entity, error) {
	var result []*models.Entity
	for _, e := range m.entities {
		if e.HolderID == holderID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEntityRepo) ListAll(_ context.Context) ([]*models.Entity, error) {
	return m.entities, nil
}

func (m *mockEntityRepo) UpdateAppearanceDates(_ context.Context, id uuid.UUID, firstAppearance, lastAppearance string) error {
	for _, e := range m.entities {
		if e.ID == id {
			e.FirstAppearanceDate = firstAppearance
			e.LastAppearanceDate = lastAppearance
			return nil
		}
	}
	return nil
}

func (m *mockEntityRepo) Rename(_ context.Context, id uuid.UUID, canonicalName, normalizedName string) error {
	if m.renamed == nil {
		m.renamed = make(map[uuid.UUID]string)
	}
	m.renamed[id] = canonicalName
	for _, e := range m.entities {
		if e.ID == id {
			e.CanonicalName = canonicalName
			e.NormalizedName = normalizedName
		}
	}
	return nil
}

func (m *mockEntityRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	m.deleted = append(m.deleted, ids...)
	remaining := m.entities[:0]
	for _, e := range m.entities {
		keep := true
		for _, id := range ids {
			if e.ID == id {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, e)
		}
	}
	m.entities = remaining
	return nil
}

// mockDisclosureRepo implements repositories.DisclosureRepository in memory.
type mockDisclosureRepo struct {
	disclosures []*models.Disclosure
	createErr   error
	updateErr   error
	repointed   int64
}

func (m *mockDisclosureRepo) Create(_ context.Context, d *models.Disclosure) error {
	if m.createErr != nil {
		return m.createErr
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.disclosures = append(m.disclosures, d)
	return nil
}

func (m *mockDisclosureRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Disclosure, error) {
	for _, d := range m.disclosures {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDisclosureRepo) ListByEntity(_ context.Context, entityID uuid.UUID) ([]*models.Disclosure, error) {
	var result []*models.Disclosure
	for _, d := range m.disclosures {
		if d.EntityID != nil && *d.EntityID == entityID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDisclosureRepo) List(_ context.Context, filter models.DisclosureFilter) ([]*models.Disclosure, error) {
	var result []*models.Disclosure
	for _, d := range m.disclosures {
		if filter.HolderName != "" && d.HolderName != filter.HolderName {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (m *mockDisclosureRepo) ListUnknown(_ context.Context, limit int) ([]*models.Disclosure, error) {
	var result []*models.Disclosure
	for _, d := range m.disclosures {
		if d.Category != models.CategoryUnknown {
			continue
		}
		result = append(result, d)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockDisclosureRepo) ListItemEqualsEntity(_ context.Context, limit int) ([]*models.Disclosure, error) {
	var result []*models.Disclosure
	for _, d := range m.disclosures {
		if d.EntityName == "" || d.Item != d.EntityName {
			continue
		}
		result = append(result, d)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockDisclosureRepo) RepointEntity(_ context.Context, from []uuid.UUID, to uuid.UUID) (int64, error) {
	var moved int64
	for _, d := range m.disclosures {
		if d.EntityID == nil {
			continue
		}
		for _, id := range from {
			if *d.EntityID == id {
				target := to
				d.EntityID = &target
				moved++
				break
			}
		}
	}
	m.repointed += moved
	return moved, nil
}

func (m *mockDisclosureRepo) UpdateClassification(_ context.Context, id uuid.UUID, category models.Category, subCategory string, temporal models.TemporalType) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, d := range m.disclosures {
		if d.ID == id {
			d.Category = category
			d.SubCategory = subCategory
			d.TemporalType = temporal
			return nil
		}
	}
	return nil
}

func (m *mockDisclosureRepo) UpdateItem(_ context.Context, id uuid.UUID, item string) error {
	for _, d := range m.disclosures {
		if d.ID == id {
			d.Item = item
			return nil
		}
	}
	return nil
}

// mockRelationshipRepo implements repositories.RelationshipRepository in memory.
type mockRelationshipRepo struct {
	relationships []*models.Relationship
	createErr     error
}

func (m *mockRelationshipRepo) Create(_ context.Context, rel *models.Relationship) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.relationships = append(m.relationships, rel)
	return nil
}

func (m *mockRelationshipRepo) ListByHolder(_ context.Context, holderName string) ([]*models.Relationship, error) {
	var result []*models.Relationship
	for _, r := range m.relationships {
		if r.HolderName == holderName {
			result = append(result, r)
		}
	}
	return result, nil
}
