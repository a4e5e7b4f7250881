package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
)

func newTestDedup(t *testing.T, tx *fakeTxRunner, entities *mockEntityRepo, disclosures *mockDisclosureRepo) DedupService {
	t.Helper()
	normalizer, err := normalize.New()
	require.NoError(t, err)
	return NewDedupService(tx, entities, disclosures, normalizer, zap.NewNop())
}

func TestFindDuplicateGroups(t *testing.T) {
	entities := &mockEntityRepo{
		entities: []*models.Entity{
			{ID: uuid.New(), HolderID: "Jane Citizen", EntityType: "Shares", CanonicalName: "BHP Billiton Ltd", NormalizedName: "bhp billiton"},
			{ID: uuid.New(), HolderID: "Jane Citizen", EntityType: "Asset", CanonicalName: "BHP Group", NormalizedName: "bhp group"},
			{ID: uuid.New(), HolderID: "John Smith", EntityType: "Asset", CanonicalName: "BHP Group", NormalizedName: "bhp group"},
			{ID: uuid.New(), HolderID: "Jane Citizen", EntityType: "Asset", CanonicalName: "Telstra", NormalizedName: "telstra"},
		},
	}
	dedup := newTestDedup(t, &fakeTxRunner{}, entities, &mockDisclosureRepo{})

	groups, err := dedup.FindDuplicateGroups(context.Background())
	require.NoError(t, err)

	// Only Jane's two BHP spellings collapse; John's BHP belongs to another
	// holder and Telstra has no duplicate.
	require.Len(t, groups, 1)
	assert.Equal(t, "Jane Citizen", groups[0].HolderID)
	assert.Equal(t, "bhp", groups[0].NormalizedName)
	assert.Len(t, groups[0].Members, 2)
}

func TestMerge_PrefersSharesEntityAsSurvivor(t *testing.T) {
	assetID := uuid.New()
	sharesID := uuid.New()
	entities := &mockEntityRepo{
		entities: []*models.Entity{
			{ID: assetID, HolderID: "Jane Citizen", EntityType: "Asset", CanonicalName: "BHP Group", NormalizedName: "bhp group"},
			{ID: sharesID, HolderID: "Jane Citizen", EntityType: "Shares", CanonicalName: "BHP Billiton", NormalizedName: "bhp billiton"},
		},
	}
	eid := assetID
	disclosures := &mockDisclosureRepo{
		disclosures: []*models.Disclosure{
			{ID: uuid.New(), EntityID: &eid},
		},
	}
	tx := &fakeTxRunner{}
	dedup := newTestDedup(t, tx, entities, disclosures)

	groups, err := dedup.FindDuplicateGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	merged, err := dedup.Merge(context.Background(), groups[0])
	require.NoError(t, err)
	assert.True(t, merged)
	assert.Equal(t, 1, tx.calls)

	// The Shares entity survives; the other is deleted and its disclosures
	// repointed.
	require.Len(t, entities.entities, 1)
	survivor := entities.entities[0]
	assert.Equal(t, sharesID, survivor.ID)
	assert.Equal(t, "bhp", survivor.CanonicalName)
	assert.Equal(t, "bhp", survivor.NormalizedName)
	assert.Equal(t, []uuid.UUID{assetID}, entities.deleted)
	assert.Equal(t, sharesID, *disclosures.disclosures[0].EntityID)
}

func TestMerge_SingleMemberIsNoOp(t *testing.T) {
	tx := &fakeTxRunner{}
	dedup := newTestDedup(t, tx, &mockEntityRepo{}, &mockDisclosureRepo{})

	merged, err := dedup.Merge(context.Background(), models.DuplicateGroup{
		HolderID:       "Jane Citizen",
		NormalizedName: "bhp",
		Members:        []*models.Entity{{ID: uuid.New()}},
	})
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, 0, tx.calls)
}

func TestMerge_TxFailureReportsError(t *testing.T) {
	entities := &mockEntityRepo{
		entities: []*models.Entity{
			{ID: uuid.New(), HolderID: "Jane Citizen", CanonicalName: "BHP Group", NormalizedName: "bhp group"},
			{ID: uuid.New(), HolderID: "Jane Citizen", CanonicalName: "BHP Billiton", NormalizedName: "bhp billiton"},
		},
	}
	tx := &fakeTxRunner{err: assert.AnError}
	dedup := newTestDedup(t, tx, entities, &mockDisclosureRepo{})

	groups, err := dedup.FindDuplicateGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	_, err = dedup.Merge(context.Background(), groups[0])
	require.Error(t, err)
}

func TestMergeAll(t *testing.T) {
	entities := &mockEntityRepo{
		entities: []*models.Entity{
			{ID: uuid.New(), HolderID: "Jane Citizen", CanonicalName: "BHP Billiton", NormalizedName: "bhp billiton"},
			{ID: uuid.New(), HolderID: "Jane Citizen", CanonicalName: "BHP Group", NormalizedName: "bhp group"},
			{ID: uuid.New(), HolderID: "John Smith", CanonicalName: "Qantas Airways", NormalizedName: "qantas airways"},
			{ID: uuid.New(), HolderID: "John Smith", CanonicalName: "Qantas", NormalizedName: "qantas"},
			{ID: uuid.New(), HolderID: "John Smith", CanonicalName: "Telstra", NormalizedName: "telstra"},
		},
	}
	dedup := newTestDedup(t, &fakeTxRunner{}, entities, &mockDisclosureRepo{})

	stats, err := dedup.MergeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 2, stats.Merged)
	assert.Equal(t, 2, stats.EntitiesRemoved)
	assert.Len(t, entities.entities, 3)
}
