package database

import (
	"context"
	"fmt"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	// DefaultListLimit caps nothing; it is only the limit applied when the
	// caller does not supply one.
	DefaultListLimit = 100

	createThreatsTable = `
		CREATE TABLE IF NOT EXISTS threats (
			id               BIGSERIAL PRIMARY KEY,
			title            TEXT        NOT NULL,
			region           TEXT        NOT NULL,
			category         TEXT        NOT NULL,
			description      TEXT        NOT NULL,
			potential_impact TEXT        NOT NULL DEFAULT '',
			source_urls      TEXT[]      NOT NULL DEFAULT '{}',
			date_mentioned   TEXT        NOT NULL DEFAULT 'Not specified',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	insertThreat = `
		INSERT INTO threats (title, region, category, description, potential_impact, source_urls, date_mentioned)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, region, category, description, potential_impact, source_urls, date_mentioned, created_at`

	selectThreats = `
		SELECT id, title, region, category, description, potential_impact, source_urls, date_mentioned, created_at
		FROM threats
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`
)

// Repository provides database operations for threats
type Repository struct {
	db *sqlx.DB
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new repository instance
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the threats table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createThreatsTable); err != nil {
		return fmt.Errorf("failed to create threats table: %w", err)
	}
	return nil
}

// CreateThreat inserts a new threat, letting the database assign the
// identifier and creation timestamp.
func (r *Repository) CreateThreat(ctx context.Context, report models.ThreatReport) (*models.Threat, error) {
	threat := &models.Threat{}

	err := r.db.QueryRowxContext(
		ctx, insertThreat,
		report.Title,
		report.Region,
		report.Category,
		report.Description,
		report.PotentialImpact,
		pq.StringArray(report.SourceURLs),
		report.DateMentioned,
	).StructScan(threat)

	if err != nil {
		return nil, fmt.Errorf("failed to create threat: %w", err)
	}

	return threat, nil
}

// ListThreats returns stored threats newest first with offset/limit pagination.
func (r *Repository) ListThreats(ctx context.Context, skip, limit int) ([]models.Threat, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	threats := []models.Threat{}
	if err := r.db.SelectContext(ctx, &threats, selectThreats, skip, limit); err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}

	return threats, nil
}
