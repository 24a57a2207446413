package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// DateNotSpecified is the sentinel the agent uses when a source carries no date.
const DateNotSpecified = "Not specified"

// ThreatReport is a single threat as produced by the discovery agent,
// before it has been persisted.
type ThreatReport struct {
	Title           string   `json:"title"`
	Region          string   `json:"region"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	PotentialImpact string   `json:"potential_impact"`
	SourceURLs      []string `json:"source_urls"`
	DateMentioned   string   `json:"date_mentioned"`
}

// Validate checks that the required fields are present and fills in the
// date sentinel when the agent omitted one.
func (r *ThreatReport) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("threat report is missing a title")
	}
	if r.Region == "" {
		return fmt.Errorf("threat report %q is missing a region", r.Title)
	}
	if r.Category == "" {
		return fmt.Errorf("threat report %q is missing a category", r.Title)
	}
	if r.Description == "" {
		return fmt.Errorf("threat report %q is missing a description", r.Title)
	}
	if r.DateMentioned == "" {
		r.DateMentioned = DateNotSpecified
	}
	return nil
}

// Threat is a persisted threat report. ID and CreatedAt are assigned by the
// database and never change; the remaining fields are write-once at creation.
type Threat struct {
	ID              int64          `json:"id" db:"id"`
	Title           string         `json:"title" db:"title"`
	Region          string         `json:"region" db:"region"`
	Category        string         `json:"category" db:"category"`
	Description     string         `json:"description" db:"description"`
	PotentialImpact string         `json:"potential_impact" db:"potential_impact"`
	SourceURLs      pq.StringArray `json:"source_urls" db:"source_urls"`
	DateMentioned   string         `json:"date_mentioned" db:"date_mentioned"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// ArchiveEntry is the denormalized document written to the archival store.
// It is keyed by the relational identifier and never read back.
type ArchiveEntry struct {
	PostgresID      int64     `json:"postgres_id"`
	Title           string    `json:"title"`
	Region          string    `json:"region"`
	Category        string    `json:"category"`
	Description     string    `json:"description"`
	PotentialImpact string    `json:"potential_impact"`
	SourceURLs      []string  `json:"source_urls"`
	DateMentioned   string    `json:"date_mentioned"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewArchiveEntry builds the archival mirror of a persisted threat.
func NewArchiveEntry(t *Threat) ArchiveEntry {
	return ArchiveEntry{
		PostgresID:      t.ID,
		Title:           t.Title,
		Region:          t.Region,
		Category:        t.Category,
		Description:     t.Description,
		PotentialImpact: t.PotentialImpact,
		SourceURLs:      []string(t.SourceURLs),
		DateMentioned:   t.DateMentioned,
		CreatedAt:       t.CreatedAt,
	}
}
