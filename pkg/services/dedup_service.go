package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
)

// Entities of this type hold share positions, which accumulate the most
// disclosures over time, so a merge keeps them as the survivor.
const privilegedEntityType = "Shares"

// DedupService finds and merges duplicate entities left behind by per-document
// entity resolution. A compaction pass, run on demand; callers must not run it
// concurrently with ingestion against the same holder's entities.
type DedupService interface {
	// FindDuplicateGroups groups each holder's entities by the current
	// normalization of their canonical names. Only groups with two or more
	// members are returned.
	FindDuplicateGroups(ctx context.Context) ([]models.DuplicateGroup, error)

	// Merge collapses one duplicate group into a single survivor entity.
	// Returns false without touching the store when the group has fewer than
	// two members. On any failure the whole merge rolls back.
	Merge(ctx context.Context, group models.DuplicateGroup) (bool, error)

	// MergeAll finds and merges every duplicate group.
	MergeAll(ctx context.Context) (MergeStats, error)
}

// MergeStats reports the outcome of a compaction pass.
type MergeStats struct {
	Groups          int
	Merged          int
	EntitiesRemoved int
}

type dedupService struct {
	tx          database.TxRunner
	entities    repositories.EntityRepository
	disclosures repositories.DisclosureRepository
	normalizer  *normalize.Normalizer
	logger      *zap.Logger
}

// NewDedupService creates a new DedupService.
func NewDedupService(
	tx database.TxRunner,
	entities repositories.EntityRepository,
	disclosures repositories.DisclosureRepository,
	normalizer *normalize.Normalizer,
	logger *zap.Logger,
) DedupService {
	return &dedupService{
		tx:          tx,
		entities:    entities,
		disclosures: disclosures,
		normalizer:  normalizer,
		logger:      logger.Named("dedup"),
	}
}

var _ DedupService = (*dedupService)(nil)

func (s *dedupService) FindDuplicateGroups(ctx context.Context) ([]models.DuplicateGroup, error) {
	entities, err := s.entities.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}

	type groupKey struct {
		holderID       string
		normalizedName string
	}

	grouped := make(map[groupKey][]*models.Entity)
	var order []groupKey
	for _, e := range entities {
		normalized := s.normalizer.Normalize(e.CanonicalName)
		if normalized == "" {
			continue
		}
		key := groupKey{holderID: e.HolderID, normalizedName: normalized}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], e)
	}

	var groups []models.DuplicateGroup
	for _, key := range order {
		members := grouped[key]
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			HolderID:       key.holderID,
			NormalizedName: key.normalizedName,
			Members:        members,
		})
	}

	s.logger.Info("scanned for duplicate entities",
		zap.Int("entities", len(entities)),
		zap.Int("duplicate_groups", len(groups)))

	return groups, nil
}

func (s *dedupService) Merge(ctx context.Context, group models.DuplicateGroup) (bool, error) {
	if len(group.Members) < 2 {
		return false, nil
	}

	survivor := chooseSurvivor(group.Members)

	var removed []*models.Entity
	for _, m := range group.Members {
		if m.ID != survivor.ID {
			removed = append(removed, m)
		}
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		removedIDs := make([]uuid.UUID, len(removed))
		for i, m := range removed {
			removedIDs[i] = m.ID
		}

		moved, err := s.disclosures.RepointEntity(ctx, removedIDs, survivor.ID)
		if err != nil {
			return fmt.Errorf("repointing disclosures: %w", err)
		}

		if err := s.entities.DeleteByIDs(ctx, removedIDs); err != nil {
			return fmt.Errorf("deleting merged entities: %w", err)
		}

		// The survivor takes the normalized form as its canonical name so the
		// group cannot reappear in a later scan.
		if err := s.entities.Rename(ctx, survivor.ID, group.NormalizedName, group.NormalizedName); err != nil {
			return fmt.Errorf("renaming survivor: %w", err)
		}

		s.logger.Info("merged duplicate entities",
			zap.String("holder_id", group.HolderID),
			zap.String("normalized_name", group.NormalizedName),
			zap.Int("removed", len(removedIDs)),
			zap.Int64("disclosures_moved", moved))

		return nil
	})
	if err != nil {
		return false, fmt.Errorf("merging group %q for holder %q: %w", group.NormalizedName, group.HolderID, err)
	}

	return true, nil
}

func (s *dedupService) MergeAll(ctx context.Context) (MergeStats, error) {
	groups, err := s.FindDuplicateGroups(ctx)
	if err != nil {
		return MergeStats{}, err
	}

	stats := MergeStats{Groups: len(groups)}
	for _, group := range groups {
		merged, err := s.Merge(ctx, group)
		if err != nil {
			return stats, err
		}
		if merged {
			stats.Merged++
			stats.EntitiesRemoved += len(group.Members) - 1
		}
	}

	return stats, nil
}

// chooseSurvivor prefers a member of the privileged entity type; otherwise
// the first member wins.
func chooseSurvivor(members []*models.Entity) *models.Entity {
	for _, m := range members {
		if strings.EqualFold(m.EntityType, privilegedEntityType) {
			return m
		}
	}
	return members[0]
}
