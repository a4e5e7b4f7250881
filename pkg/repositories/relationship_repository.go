package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/models"
)

// RelationshipRepository provides data access for declared relationships.
type RelationshipRepository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	ListByHolder(ctx context.Context, holderName string) ([]*models.Relationship, error)
}

type relationshipRepository struct {
	pool *pgxpool.Pool
}

// NewRelationshipRepository creates a new RelationshipRepository.
func NewRelationshipRepository(pool *pgxpool.Pool) RelationshipRepository {
	return &relationshipRepository{pool: pool}
}

var _ RelationshipRepository = (*relationshipRepository)(nil)

func (r *relationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	q := database.QuerierFromCtx(ctx, r.pool)

	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}

	query := `
		INSERT INTO relationships (id, holder_name, entity, relationship_type, value, date_logged)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := q.Exec(ctx, query,
		rel.ID, rel.HolderName, rel.Entity, rel.RelationshipType, rel.Value, rel.DateLogged,
	)
	if err != nil {
		return database.MapError(err, "create relationship")
	}

	return nil
}

func (r *relationshipRepository) ListByHolder(ctx context.Context, holderName string) ([]*models.Relationship, error) {
	q := database.QuerierFromCtx(ctx, r.pool)

	query := `SELECT id, holder_name, entity, relationship_type, value, date_logged
		FROM relationships
		WHERE holder_name = $1
		ORDER BY date_logged, entity`

	rows, err := q.Query(ctx, query, holderName)
	if err != nil {
		return nil, database.MapError(err, "list relationships by holder")
	}
	defer rows.Close()

	var rels []*models.Relationship
	for rows.Next() {
		var rel models.Relationship
		if err := rows.Scan(&rel.ID, &rel.HolderName, &rel.Entity, &rel.RelationshipType, &rel.Value, &rel.DateLogged); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, &rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}
	return rels, nil
}
