package notifications

import "github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	NotifyThreat(threat *models.Threat) error
}
