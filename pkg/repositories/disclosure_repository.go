package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/models"
)

// Declaration dates are stored as text ('YYYY-MM-DD' or 'Unknown'). This
// expression sorts unknown dates after every real date.
const declarationDateOrder = `CASE WHEN declaration_date = 'Unknown' THEN 1 ELSE 0 END, declaration_date`

// DisclosureRepository provides data access for disclosure rows.
// All methods run against the transaction in ctx when one is present.
type DisclosureRepository interface {
	Create(ctx context.Context, d *models.Disclosure) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Disclosure, error)
	// ListByEntity returns an entity's disclosures ordered by declaration
	// date, unknown dates last.
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Disclosure, error)
	List(ctx context.Context, filter models.DisclosureFilter) ([]*models.Disclosure, error)
	ListUnknown(ctx context.Context, limit int) ([]*models.Disclosure, error)
	// ListItemEqualsEntity returns disclosures whose item merely duplicates
	// the entity name, oldest first.
	ListItemEqualsEntity(ctx context.Context, limit int) ([]*models.Disclosure, error)
	// RepointEntity moves all disclosures from the given entities onto one
	// survivor and returns the number of rows moved.
	RepointEntity(ctx context.Context, from []uuid.UUID, to uuid.UUID) (int64, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, category models.Category, subCategory string, temporal models.TemporalType) error
	UpdateItem(ctx context.Context, id uuid.UUID, item string) error
}

type disclosureRepository struct {
	pool *pgxpool.Pool
}

// NewDisclosureRepository creates a new DisclosureRepository.
func NewDisclosureRepository(pool *pgxpool.Pool) DisclosureRepository {
	return &disclosureRepository{pool: pool}
}

var _ DisclosureRepository = (*disclosureRepository)(nil)

const disclosureColumns = `id, holder_name, affiliation, constituency, declaration_date,
	category, sub_category, item, temporal_type, start_date, end_date,
	free_text_details, source_document_reference, entity_name, entity_id, created_at`

func (r *disclosureRepository) Create(ctx context.Context, d *models.Disclosure) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	d.CreatedAt = time.Now()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	query := `
		INSERT INTO disclosures (
			id, holder_name, affiliation, constituency, declaration_date,
			category, sub_category, item, temporal_type, start_date, end_date,
			free_text_details, source_document_reference, entity_name, entity_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := q.Exec(ctx, query,
		d.ID, d.HolderName, d.Affiliation, d.Constituency, d.DeclarationDate,
		d.Category, d.SubCategory, d.Item, d.TemporalType, d.StartDate, d.EndDate,
		d.FreeTextDetails, d.SourceDocumentReference, d.EntityName, d.EntityID, d.CreatedAt,
	)
	if err != nil {
		return database.MapError(err, "create disclosure")
	}

	return nil
}

func (r *disclosureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Disclosure, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + disclosureColumns + ` FROM disclosures WHERE id = $1`

	d, err := scanDisclosure(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.MapError(err, "get disclosure")
	}
	return d, nil
}

func (r *disclosureRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*models.Disclosure, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + disclosureColumns + ` FROM disclosures
		WHERE entity_id = $1
		ORDER BY ` + declarationDateOrder

	rows, err := q.Query(ctx, query, entityID)
	if err != nil {
		return nil, database.MapError(err, "list disclosures by entity")
	}
	defer rows.Close()

	return scanDisclosures(rows)
}

func (r *disclosureRepository) List(ctx context.Context, filter models.DisclosureFilter) ([]*models.Disclosure, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	builder := sq.Select(disclosureColumns).
		From("disclosures").
		PlaceholderFormat(sq.Dollar).
		OrderBy(declarationDateOrder)

	if filter.HolderName != "" {
		builder = builder.Where(sq.Eq{"holder_name": filter.HolderName})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.FromDate != "" {
		builder = builder.Where(sq.And{
			sq.NotEq{"declaration_date": models.UnknownDate},
			sq.GtOrEq{"declaration_date": filter.FromDate},
		})
	}
	if filter.ToDate != "" {
		builder = builder.Where(sq.And{
			sq.NotEq{"declaration_date": models.UnknownDate},
			sq.LtOrEq{"declaration_date": filter.ToDate},
		})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building disclosure query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "list disclosures")
	}
	defer rows.Close()

	return scanDisclosures(rows)
}

func (r *disclosureRepository) ListUnknown(ctx context.Context, limit int) ([]*models.Disclosure, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + disclosureColumns + ` FROM disclosures
		WHERE category = $1
		ORDER BY created_at`
	args := []any{models.CategoryUnknown}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "list unknown disclosures")
	}
	defer rows.Close()

	return scanDisclosures(rows)
}

func (r *disclosureRepository) ListItemEqualsEntity(ctx context.Context, limit int) ([]*models.Disclosure, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + disclosureColumns + ` FROM disclosures
		WHERE entity_name <> '' AND item = entity_name
		ORDER BY created_at`
	var args []any

	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapError(err, "list identical-item disclosures")
	}
	defer rows.Close()

	return scanDisclosures(rows)
}

func (r *disclosureRepository) RepointEntity(ctx context.Context, from []uuid.UUID, to uuid.UUID) (int64, error) {
	if len(from) == 0 {
		return 0, nil
	}
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `UPDATE disclosures SET entity_id = $1 WHERE entity_id = ANY($2)`

	tag, err := q.Exec(ctx, query, to, from)
	if err != nil {
		return 0, database.MapError(err, "repoint disclosures")
	}
	return tag.RowsAffected(), nil
}

func (r *disclosureRepository) UpdateClassification(ctx context.Context, id uuid.UUID, category models.Category, subCategory string, temporal models.TemporalType) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `UPDATE disclosures
		SET category = $2, sub_category = $3, temporal_type = $4
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, category, subCategory, temporal)
	if err != nil {
		return database.MapError(err, "update disclosure classification")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "update disclosure classification")
	}
	return nil
}

func (r *disclosureRepository) UpdateItem(ctx context.Context, id uuid.UUID, item string) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `UPDATE disclosures SET item = $2 WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, item)
	if err != nil {
		return database.MapError(err, "update disclosure item")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "update disclosure item")
	}
	return nil
}

func scanDisclosure(row pgx.Row) (*models.Disclosure, error) {
	var d models.Disclosure
	err := row.Scan(
		&d.ID, &d.HolderName, &d.Affiliation, &d.Constituency, &d.DeclarationDate,
		&d.Category, &d.SubCategory, &d.Item, &d.TemporalType, &d.StartDate, &d.EndDate,
		&d.FreeTextDetails, &d.SourceDocumentReference, &d.EntityName, &d.EntityID, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDisclosures(rows pgx.Rows) ([]*models.Disclosure, error) {
	var disclosures []*models.Disclosure
	for rows.Next() {
		d, err := scanDisclosure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disclosure: %w", err)
		}
		disclosures = append(disclosures, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate disclosures: %w", err)
	}
	return disclosures, nil
}
