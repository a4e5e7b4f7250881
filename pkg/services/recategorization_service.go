package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/classify"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
)

// RecategorizationService reprocesses disclosures left in the Unknown
// category: first with the rule classifier (patterns grow over time), then
// optionally with an external model for the residue.
type RecategorizationService interface {
	// RunRules re-runs the pattern classifier over Unknown rows. With dryRun
	// set, changes are counted but not written.
	RunRules(ctx context.Context, dryRun bool) (RecatStats, error)

	// RunLLM sends remaining Unknown rows to the model in batches. maxEntries
	// of zero or less means no cap.
	RunLLM(ctx context.Context, batchSize, maxEntries int, dryRun bool) (RecatStats, error)

	// RefineItems rewrites disclosures whose item merely duplicates the
	// entity name with a more specific description derived from the details
	// text. maxEntries of zero or less means no cap.
	RefineItems(ctx context.Context, maxEntries int, dryRun bool) (RefineStats, error)
}

// RefineStats reports one item-refinement pass.
type RefineStats struct {
	Total     int
	Refined   int
	Unchanged int
}

// RecatStats reports one recategorization pass.
type RecatStats struct {
	Total         int
	Recategorized int
	Ignored       int
	Unchanged     int
	ByCategory    map[models.Category]int
}

type recategorizationService struct {
	disclosures repositories.DisclosureRepository
	classifier  *classify.RuleClassifier
	llm         *classify.LLMClassifier // nil disables RunLLM
	logger      *zap.Logger
}

// NewRecategorizationService creates a new RecategorizationService. llm may
// be nil when no model endpoint is configured.
func NewRecategorizationService(
	disclosures repositories.DisclosureRepository,
	classifier *classify.RuleClassifier,
	llm *classify.LLMClassifier,
	logger *zap.Logger,
) RecategorizationService {
	return &recategorizationService{
		disclosures: disclosures,
		classifier:  classifier,
		llm:         llm,
		logger:      logger.Named("recategorization"),
	}
}

var _ RecategorizationService = (*recategorizationService)(nil)

func (s *recategorizationService) RunRules(ctx context.Context, dryRun bool) (RecatStats, error) {
	entries, err := s.disclosures.ListUnknown(ctx, 0)
	if err != nil {
		return RecatStats{}, fmt.Errorf("listing unknown disclosures: %w", err)
	}

	stats := RecatStats{Total: len(entries), ByCategory: make(map[models.Category]int)}

	for _, d := range entries {
		combined := strings.ToLower(strings.TrimSpace(d.Item + " " + d.FreeTextDetails))
		if classify.IsEmptyEntry(combined) {
			stats.Ignored++
			continue
		}

		cl := s.classifier.Classify(d.Item, d.FreeTextDetails)
		if cl.Category == models.CategoryUnknown {
			stats.Unchanged++
			continue
		}

		if !dryRun {
			if err := s.disclosures.UpdateClassification(ctx, d.ID, cl.Category, cl.SubCategory, cl.TemporalType); err != nil {
				return stats, fmt.Errorf("updating disclosure %s: %w", d.ID, err)
			}
		}
		stats.Recategorized++
		stats.ByCategory[cl.Category]++
	}

	s.logRun("rule pass", stats, dryRun)
	return stats, nil
}

func (s *recategorizationService) RunLLM(ctx context.Context, batchSize, maxEntries int, dryRun bool) (RecatStats, error) {
	if s.llm == nil {
		return RecatStats{}, fmt.Errorf("no llm classifier configured")
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	entries, err := s.disclosures.ListUnknown(ctx, maxEntries)
	if err != nil {
		return RecatStats{}, fmt.Errorf("listing unknown disclosures: %w", err)
	}

	stats := RecatStats{Total: len(entries), ByCategory: make(map[models.Category]int)}

	var pending []classify.UnknownEntry
	for _, d := range entries {
		combined := strings.ToLower(strings.TrimSpace(d.Item + " " + d.FreeTextDetails))
		if classify.IsEmptyEntry(combined) {
			stats.Ignored++
			continue
		}
		pending = append(pending, classify.UnknownEntry{ID: d.ID, Item: d.Item, Details: d.FreeTextDetails})
	}

	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		results, err := s.llm.ClassifyBatch(ctx, batch)
		if err != nil {
			// One failed batch should not discard the progress of earlier
			// batches; report what was applied so far.
			s.logger.Error("llm batch failed", zap.Int("batch_start", start), zap.Error(err))
			stats.Unchanged += len(pending) - start
			return stats, fmt.Errorf("llm batch at offset %d: %w", start, err)
		}

		answered := make(map[string]bool, len(results))
		for _, res := range results {
			answered[res.ID.String()] = true
			if res.Classification.Category == models.CategoryUnknown {
				stats.Unchanged++
				continue
			}
			if !dryRun {
				cl := res.Classification
				if err := s.disclosures.UpdateClassification(ctx, res.ID, cl.Category, cl.SubCategory, cl.TemporalType); err != nil {
					return stats, fmt.Errorf("updating disclosure %s: %w", res.ID, err)
				}
			}
			stats.Recategorized++
			stats.ByCategory[res.Classification.Category]++
		}

		for _, e := range batch {
			if !answered[e.ID.String()] {
				stats.Unchanged++
			}
		}
	}

	s.logRun("llm pass", stats, dryRun)
	return stats, nil
}

func (s *recategorizationService) RefineItems(ctx context.Context, maxEntries int, dryRun bool) (RefineStats, error) {
	entries, err := s.disclosures.ListItemEqualsEntity(ctx, maxEntries)
	if err != nil {
		return RefineStats{}, fmt.Errorf("listing identical-item disclosures: %w", err)
	}

	stats := RefineStats{Total: len(entries)}

	for _, d := range entries {
		refined := classify.RefineItem(d.Category, d.Item, d.FreeTextDetails)
		if refined == d.Item {
			stats.Unchanged++
			continue
		}

		if !dryRun {
			if err := s.disclosures.UpdateItem(ctx, d.ID, refined); err != nil {
				return stats, fmt.Errorf("updating item for disclosure %s: %w", d.ID, err)
			}
		}
		stats.Refined++
	}

	s.logger.Info("item refinement complete",
		zap.Bool("dry_run", dryRun),
		zap.Int("total", stats.Total),
		zap.Int("refined", stats.Refined),
		zap.Int("unchanged", stats.Unchanged))
	return stats, nil
}

func (s *recategorizationService) logRun(pass string, stats RecatStats, dryRun bool) {
	s.logger.Info("recategorization complete",
		zap.String("pass", pass),
		zap.Bool("dry_run", dryRun),
		zap.Int("total", stats.Total),
		zap.Int("recategorized", stats.Recategorized),
		zap.Int("ignored", stats.Ignored),
		zap.Int("unchanged", stats.Unchanged))
}
