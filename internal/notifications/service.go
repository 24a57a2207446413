package notifications

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/config"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// noSourcesPlaceholder is rendered when a threat carries no source URLs.
const noSourcesPlaceholder = "No source URLs provided."

// Service handles sending threat notifications via the configured channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage is the envelope for an Adaptive Card webhook post
type TeamsMessage struct {
	Type        string            `json:"type"`
	Attachments []TeamsAttachment `json:"attachments"`
}

type TeamsAttachment struct {
	ContentType string       `json:"contentType"`
	ContentURL  *string      `json:"contentUrl"`
	Content     AdaptiveCard `json:"content"`
}

type AdaptiveCard struct {
	Schema  string            `json:"$schema"`
	Type    string            `json:"type"`
	Version string            `json:"version"`
	MSTeams map[string]string `json:"msteams"`
	Body    []CardElement     `json:"body"`
}

type CardElement struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Weight    string     `json:"weight,omitempty"`
	Size      string     `json:"size,omitempty"`
	Color     string     `json:"color,omitempty"`
	Wrap      bool       `json:"wrap,omitempty"`
	Separator bool       `json:"separator,omitempty"`
	Spacing   string     `json:"spacing,omitempty"`
	Facts     []CardFact `json:"facts,omitempty"`
}

type CardFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// NotifyThreat sends a newly persisted threat to the configured channels.
// Channel failures are collected and reported together; the caller treats
// them as non-fatal.
func (s *Service) NotifyThreat(threat *models.Threat) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(threat); err != nil {
			logrus.Errorf("Failed to send Teams notification for threat %d: %v", threat.ID, err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Successfully sent Teams notification for threat %d", threat.ID)
		}
	} else {
		logrus.Warn("TEAMS_WEBHOOK_URL is not set, skipping webhook notification")
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(threat); err != nil {
			logrus.Errorf("Failed to send email notification for threat %d: %v", threat.ID, err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Successfully sent email notification for threat %d", threat.ID)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(threat *models.Threat) error {
	message := s.buildTeamsMessage(threat)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(threat *models.Threat) *TeamsMessage {
	impact := threat.PotentialImpact
	if impact == "" {
		impact = models.DateNotSpecified
	}

	published := threat.DateMentioned
	if published == "" {
		published = models.DateNotSpecified
	}

	body := []CardElement{
		{
			Type:   "TextBlock",
			Text:   "🚨 New Maritime Threat Detected!",
			Weight: "Bolder",
			Size:   "Large",
			Color:  "Attention",
		},
		{
			Type:   "TextBlock",
			Text:   threat.Title,
			Weight: "Bolder",
			Size:   "Medium",
			Wrap:   true,
		},
		{
			Type: "FactSet",
			Facts: []CardFact{
				{Title: "Region:", Value: threat.Region},
				{Title: "Category:", Value: threat.Category},
				{Title: "Published:", Value: published},
				{Title: "Impact:", Value: impact},
				{Title: "Reported:", Value: threat.CreatedAt.UTC().Format("2006-01-02 15:04") + " UTC"},
			},
		},
		{
			Type:      "TextBlock",
			Text:      threat.Description,
			Wrap:      true,
			Separator: true,
		},
	}

	if len(threat.SourceURLs) > 0 {
		for _, url := range threat.SourceURLs {
			body = append(body, CardElement{
				Type:      "TextBlock",
				Text:      fmt.Sprintf("[%s](%s)", sourceLabel(url), strings.TrimSpace(url)),
				Wrap:      true,
				Separator: true,
				Spacing:   "Small",
			})
		}
	} else {
		body = append(body, CardElement{
			Type:      "TextBlock",
			Text:      noSourcesPlaceholder,
			Wrap:      true,
			Separator: true,
		})
	}

	return &TeamsMessage{
		Type: "message",
		Attachments: []TeamsAttachment{
			{
				ContentType: "application/vnd.microsoft.card.adaptive",
				ContentURL:  nil,
				Content: AdaptiveCard{
					Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
					Type:    "AdaptiveCard",
					Version: "1.5",
					MSTeams: map[string]string{"width": "Full"},
					Body:    body,
				},
			},
		},
	}
}

// sourceLabel derives a readable link label from an article URL: the
// second-to-last path segment with dashes expanded and words capitalized.
// Trailing slashes are trimmed first so the slug is used, not an empty
// segment.
func sourceLabel(url string) string {
	parts := strings.Split(strings.TrimSuffix(strings.TrimSpace(url), "/"), "/")
	if len(parts) < 2 {
		return url
	}

	return titleCase(strings.ReplaceAll(parts[len(parts)-2], "-", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func (s *Service) sendEmail(threat *models.Threat) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", fmt.Sprintf("New Maritime Threat: %s", threat.Title))
	m.SetBody("text/plain", s.buildEmailText(threat))

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailText(threat *models.Threat) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("New Maritime Threat Detected: %s\n\n", threat.Title))
	text.WriteString(fmt.Sprintf("Region:    %s\n", threat.Region))
	text.WriteString(fmt.Sprintf("Category:  %s\n", threat.Category))
	text.WriteString(fmt.Sprintf("Published: %s\n", threat.DateMentioned))
	if threat.PotentialImpact != "" {
		text.WriteString(fmt.Sprintf("Impact:    %s\n", threat.PotentialImpact))
	}
	text.WriteString(fmt.Sprintf("Reported:  %s UTC\n\n", threat.CreatedAt.UTC().Format("2006-01-02 15:04")))
	text.WriteString(threat.Description)
	text.WriteString("\n\n")

	if len(threat.SourceURLs) > 0 {
		text.WriteString("Sources:\n")
		for _, url := range threat.SourceURLs {
			text.WriteString(fmt.Sprintf("  - %s\n", url))
		}
	} else {
		text.WriteString(noSourcesPlaceholder + "\n")
	}

	text.WriteString("\n---\nThis notification was generated automatically by the Maritime Threat Monitor.\n")

	return text.String()
}
