package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicledger/disclosure-engine/pkg/classify"
	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
)

// IngestionService writes extracted documents into the disclosure store.
// Each document is one atomic unit: entity resolution, disclosure inserts,
// and relationship inserts all commit or roll back together.
type IngestionService interface {
	// Ingest stores one document and returns the ids of the disclosures
	// written. Malformed individual lines are logged and skipped; a storage
	// failure rolls the whole document back.
	Ingest(ctx context.Context, doc *models.ExtractedDocument) ([]uuid.UUID, error)

	// IngestBatch stores documents sequentially, continuing past per-document
	// failures.
	IngestBatch(ctx context.Context, docs []*models.ExtractedDocument) BatchResult
}

// BatchResult reports per-document accounting for one batch run.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	// FailedHolders names the holder of each failed document, in input order.
	FailedHolders []string
}

type ingestionService struct {
	tx            database.TxRunner
	registry      EntityRegistry
	disclosures   repositories.DisclosureRepository
	relationships repositories.RelationshipRepository
	classifier    *classify.RuleClassifier
	docTimeout    time.Duration
	logger        *zap.Logger
}

// NewIngestionService creates a new IngestionService. docTimeout bounds one
// document's transaction; zero means no bound.
func NewIngestionService(
	tx database.TxRunner,
	registry EntityRegistry,
	disclosures repositories.DisclosureRepository,
	relationships repositories.RelationshipRepository,
	classifier *classify.RuleClassifier,
	docTimeout time.Duration,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		tx:            tx,
		registry:      registry,
		disclosures:   disclosures,
		relationships: relationships,
		classifier:    classifier,
		docTimeout:    docTimeout,
		logger:        logger.Named("ingestion"),
	}
}

var _ IngestionService = (*ingestionService)(nil)

func (s *ingestionService) Ingest(ctx context.Context, doc *models.ExtractedDocument) ([]uuid.UUID, error) {
	holder := defaultString(doc.HolderName, "Unknown")

	s.logger.Info("ingesting document",
		zap.String("holder_name", holder),
		zap.Int("disclosures", len(doc.Disclosures)),
		zap.Int("relationships", len(doc.Relationships)))

	if s.docTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.docTimeout)
		defer cancel()
	}

	var ids []uuid.UUID
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i := range doc.Disclosures {
			id, ok, err := s.ingestLine(ctx, doc, holder, &doc.Disclosures[i])
			if err != nil {
				return fmt.Errorf("disclosure %d: %w", i, err)
			}
			if ok {
				ids = append(ids, id)
			}
		}

		for i := range doc.Relationships {
			if err := s.ingestRelationship(ctx, holder, &doc.Relationships[i]); err != nil {
				return fmt.Errorf("relationship %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingesting document for %q: %w", holder, err)
	}

	return ids, nil
}

// ingestLine stores one disclosure line. Returns ok=false for malformed
// lines, which are skipped without failing the document.
func (s *ingestionService) ingestLine(ctx context.Context, doc *models.ExtractedDocument, holder string, line *models.RawDisclosure) (uuid.UUID, bool, error) {
	entity := line.Entity
	item := defaultString(line.Item, entity)

	if item == "" && line.Details == "" {
		s.logger.Warn("skipping malformed disclosure line",
			zap.String("holder_name", holder),
			zap.String("declaration_date", line.DeclarationDate))
		return uuid.Nil, false, nil
	}

	declarationDate := defaultString(line.DeclarationDate, models.UnknownDate)
	category := models.CoerceCategory(line.Category)
	subCategory := line.SubCategory
	temporal := models.TemporalType(line.TemporalType)

	combined := strings.ToLower(strings.TrimSpace(item + " " + line.Details))
	emptyEntry := classify.IsEmptyEntry(combined)

	// Null-equivalent placeholders keep whatever category coercion produced;
	// running pattern rules over "self: n/a" would only invent categories.
	if !emptyEntry {
		category, subCategory, temporal = s.resolveClassification(item, line.Details, category, subCategory, temporal)
	}

	if subCategory == "" {
		subCategory = models.DefaultSubcategory(category)
	}
	if !temporal.Valid() {
		temporal = models.DefaultTemporalType(category, subCategory)
	}

	// Raw extraction often copies the organization into both fields; derive a
	// more specific item from the details when that happens. Advisory only.
	if item != "" && item == entity {
		if refined := classify.RefineItem(category, entity, line.Details); refined != "" {
			item = refined
		}
	}

	entityID, err := s.registry.FindOrCreate(ctx, holder, category, entity, declarationDate)
	if err != nil {
		return uuid.Nil, false, err
	}

	d := &models.Disclosure{
		ID:                      uuid.New(),
		HolderName:              holder,
		Affiliation:             defaultString(doc.Affiliation, "Unknown"),
		Constituency:            defaultString(doc.Constituency, "Unknown"),
		DeclarationDate:         declarationDate,
		Category:                category,
		SubCategory:             subCategory,
		Item:                    item,
		TemporalType:            temporal,
		StartDate:               defaultString(line.StartDate, declarationDate),
		EndDate:                 line.EndDate,
		FreeTextDetails:         line.Details,
		SourceDocumentReference: defaultString(line.SourceDocumentReference, doc.SourceDocumentReference),
		EntityName:              entity,
		EntityID:                entityID,
	}
	if err := s.disclosures.Create(ctx, d); err != nil {
		return uuid.Nil, false, err
	}

	return d.ID, true, nil
}

// resolveClassification fills in missing classification fields with the rule
// classifier. An Unknown category adopts the classifier's full answer; a
// known category only takes the subcategory/temporal when the classifier
// agrees on the category.
func (s *ingestionService) resolveClassification(item, details string, category models.Category, subCategory string, temporal models.TemporalType) (models.Category, string, models.TemporalType) {
	if category != models.CategoryUnknown && subCategory != "" && temporal.Valid() {
		return category, subCategory, temporal
	}

	cl := s.classifier.Classify(item, details)

	if category == models.CategoryUnknown {
		if cl.Category != models.CategoryUnknown {
			category = cl.Category
			if subCategory == "" {
				subCategory = cl.SubCategory
			}
			if !temporal.Valid() {
				temporal = cl.TemporalType
			}
		}
		return category, subCategory, temporal
	}

	if cl.Category == category {
		if subCategory == "" {
			subCategory = cl.SubCategory
		}
		if !temporal.Valid() {
			temporal = cl.TemporalType
		}
	}
	return category, subCategory, temporal
}

func (s *ingestionService) ingestRelationship(ctx context.Context, holder string, raw *models.RawRelationship) error {
	rel := &models.Relationship{
		ID:               uuid.New(),
		HolderName:       holder,
		Entity:           defaultString(raw.Entity, "Unknown"),
		RelationshipType: defaultString(raw.RelationshipType, "Unknown"),
		Value:            defaultString(raw.Value, "Undisclosed"),
		DateLogged:       defaultString(raw.DateLogged, models.UnknownDate),
	}
	return s.relationships.Create(ctx, rel)
}

func (s *ingestionService) IngestBatch(ctx context.Context, docs []*models.ExtractedDocument) BatchResult {
	result := BatchResult{Total: len(docs)}

	for _, doc := range docs {
		if _, err := s.Ingest(ctx, doc); err != nil {
			holder := defaultString(doc.HolderName, "Unknown")
			result.Failed++
			result.FailedHolders = append(result.FailedHolders, holder)
			s.logger.Error("document ingestion failed",
				zap.String("holder_name", holder),
				zap.Error(err))
			continue
		}
		result.Succeeded++
	}

	s.logger.Info("batch ingestion complete",
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
