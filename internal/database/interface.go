package database

import (
	"context"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
)

// RepositoryInterface defines the contract for threat persistence
type RepositoryInterface interface {
	EnsureSchema(ctx context.Context) error
	CreateThreat(ctx context.Context, report models.ThreatReport) (*models.Threat, error)
	ListThreats(ctx context.Context, skip, limit int) ([]models.Threat, error)
}
