package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/config"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testThreat() *models.Threat {
	return &models.Threat{
		ID:              7,
		Title:           "Red Sea Attacks",
		Region:          "Red Sea",
		Category:        "Piracy",
		Description:     "Attacks on commercial vessels.",
		PotentialImpact: "Rerouted shipping",
		SourceURLs:      []string{"http://example.com/red-sea-attacks/article"},
		DateMentioned:   "June 19, 2025",
		CreatedAt:       time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
	}
}

func cardBody(t *testing.T, message *TeamsMessage) []CardElement {
	t.Helper()
	require.Len(t, message.Attachments, 1)
	return message.Attachments[0].Content.Body
}

func TestBuildTeamsMessage(t *testing.T) {
	service := NewService(&config.Config{})
	threat := testThreat()

	message := service.buildTeamsMessage(threat)
	body := cardBody(t, message)

	assert.Equal(t, "message", message.Type)
	assert.Equal(t, "AdaptiveCard", message.Attachments[0].Content.Type)

	// Header, title, facts, description, one block per source URL
	require.Len(t, body, 5)
	assert.Equal(t, threat.Title, body[1].Text)

	facts := body[2].Facts
	require.Len(t, facts, 5)
	assert.Equal(t, CardFact{Title: "Region:", Value: "Red Sea"}, facts[0])
	assert.Equal(t, CardFact{Title: "Category:", Value: "Piracy"}, facts[1])
	assert.Equal(t, CardFact{Title: "Published:", Value: "June 19, 2025"}, facts[2])
	assert.Equal(t, CardFact{Title: "Impact:", Value: "Rerouted shipping"}, facts[3])
	assert.Equal(t, CardFact{Title: "Reported:", Value: "2026-08-30 06:00 UTC"}, facts[4])

	assert.Equal(t, threat.Description, body[3].Text)
	assert.Contains(t, body[4].Text, "http://example.com/red-sea-attacks/article")
	assert.Contains(t, body[4].Text, "Red Sea Attacks")
}

func TestBuildTeamsMessage_NoSourceURLs(t *testing.T) {
	service := NewService(&config.Config{})
	threat := testThreat()
	threat.SourceURLs = nil

	body := cardBody(t, service.buildTeamsMessage(threat))

	// Exactly one placeholder block instead of per-URL lines
	require.Len(t, body, 5)
	assert.Equal(t, "No source URLs provided.", body[4].Text)
}

func TestBuildTeamsMessage_MissingImpact(t *testing.T) {
	service := NewService(&config.Config{})
	threat := testThreat()
	threat.PotentialImpact = ""

	body := cardBody(t, service.buildTeamsMessage(threat))

	assert.Equal(t, CardFact{Title: "Impact:", Value: "Not specified"}, body[2].Facts[3])
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"http://example.com/red-sea-attacks/article", "Red Sea Attacks"},
		{"http://example.com/red-sea-attacks/article/", "Red Sea Attacks"},
		{"http://example.com/piracy/article", "Piracy"},
		{"plainstring", "plainstring"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, sourceLabel(tt.url))
	}
}

func TestNotifyThreat_PostsWebhook(t *testing.T) {
	var received TeamsMessage
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	service := NewService(&config.Config{TeamsWebhookURL: webhook.URL})

	err := service.NotifyThreat(testThreat())

	require.NoError(t, err)
	assert.Equal(t, "message", received.Type)
	require.Len(t, received.Attachments, 1)
}

func TestNotifyThreat_WebhookErrorIsReturned(t *testing.T) {
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer webhook.Close()

	service := NewService(&config.Config{TeamsWebhookURL: webhook.URL})

	err := service.NotifyThreat(testThreat())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Teams")
}

func TestNotifyThreat_MissingWebhookURLSkipsDelivery(t *testing.T) {
	service := NewService(&config.Config{})

	// No webhook and no email configured: nothing to send, nothing fails
	assert.NoError(t, service.NotifyThreat(testThreat()))
}
