package archive

import (
	"context"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
)

// ArchiveInterface defines the contract for the archival mirror
type ArchiveInterface interface {
	Store(ctx context.Context, threat *models.Threat) error
}
