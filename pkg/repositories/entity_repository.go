package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/models"
)

// EntityRepository provides data access for resolved entities.
// All methods run against the transaction in ctx when one is present.
type EntityRepository interface {
	Create(ctx context.Context, entity *models.Entity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	// GetByNormalizedName returns (nil, nil) when no entity matches.
	GetByNormalizedName(ctx context.Context, holderID, normalizedName string) (*models.Entity, error)
	ListByHolder(ctx context.Context, holderID string) ([]*models.Entity, error)
	ListAll(ctx context.Context) ([]*models.Entity, error)
	UpdateAppearanceDates(ctx context.Context, id uuid.UUID, firstAppearance, lastAppearance string) error
	Rename(ctx context.Context, id uuid.UUID, canonicalName, normalizedName string) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type entityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) EntityRepository {
	return &entityRepository{pool: pool}
}

var _ EntityRepository = (*entityRepository)(nil)

const entityColumns = `id, holder_id, entity_type, canonical_name, normalized_name,
	first_appearance_date, last_appearance_date, created_at, updated_at`

func (r *entityRepository) Create(ctx context.Context, entity *models.Entity) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	now := time.Now()
	entity.CreatedAt = now
	entity.UpdatedAt = now

	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	query := `
		INSERT INTO entities (
			id, holder_id, entity_type, canonical_name, normalized_name,
			first_appearance_date, last_appearance_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := q.Exec(ctx, query,
		entity.ID, entity.HolderID, entity.EntityType, entity.CanonicalName, entity.NormalizedName,
		entity.FirstAppearanceDate, entity.LastAppearanceDate, entity.CreatedAt, entity.UpdatedAt,
	)
	if err != nil {
		return database.MapError(err, "create entity")
	}

	return nil
}

func (r *entityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`

	entity, err := scanEntity(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, database.MapError(err, "get entity")
	}
	return entity, nil
}

func (r *entityRepository) GetByNormalizedName(ctx context.Context, holderID, normalizedName string) (*models.Entity, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + entityColumns + ` FROM entities
		WHERE holder_id = $1 AND normalized_name = $2`

	entity, err := scanEntity(q.QueryRow(ctx, query, holderID, normalizedName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.MapError(err, "get entity by normalized name")
	}
	return entity, nil
}

func (r *entityRepository) ListByHolder(ctx context.Context, holderID string) ([]*models.Entity, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + entityColumns + ` FROM entities
		WHERE holder_id = $1
		ORDER BY entity_type, canonical_name`

	rows, err := q.Query(ctx, query, holderID)
	if err != nil {
		return nil, database.MapError(err, "list entities by holder")
	}
	defer rows.Close()

	return scanEntities(rows)
}

func (r *entityRepository) ListAll(ctx context.Context) ([]*models.Entity, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT ` + entityColumns + ` FROM entities
		ORDER BY holder_id, entity_type, canonical_name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, database.MapError(err, "list entities")
	}
	defer rows.Close()

	return scanEntities(rows)
}

func (r *entityRepository) UpdateAppearanceDates(ctx context.Context, id uuid.UUID, firstAppearance, lastAppearance string) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `UPDATE entities
		SET first_appearance_date = $2, last_appearance_date = $3, updated_at = $4
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, firstAppearance, lastAppearance, time.Now())
	if err != nil {
		return database.MapError(err, "update entity appearance dates")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "update entity appearance dates")
	}
	return nil
}

func (r *entityRepository) Rename(ctx context.Context, id uuid.UUID, canonicalName, normalizedName string) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `UPDATE entities
		SET canonical_name = $2, normalized_name = $3, updated_at = $4
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, canonicalName, normalizedName, time.Now())
	if err != nil {
		return database.MapError(err, "rename entity")
	}
	if tag.RowsAffected() == 0 {
		return database.MapError(pgx.ErrNoRows, "rename entity")
	}
	return nil
}

func (r *entityRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `DELETE FROM entities WHERE id = ANY($1)`

	if _, err := q.Exec(ctx, query, ids); err != nil {
		return database.MapError(err, "delete entities")
	}
	return nil
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	err := row.Scan(
		&e.ID, &e.HolderID, &e.EntityType, &e.CanonicalName, &e.NormalizedName,
		&e.FirstAppearanceDate, &e.LastAppearanceDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntities(rows pgx.Rows) ([]*models.Entity, error) {
	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}
	return entities, nil
}
