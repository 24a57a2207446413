package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReports_FencedJSON(t *testing.T) {
	raw := "Here is what I found:\n```json\n{\"reports\": [{\"title\": \"Red Sea Attacks\", \"region\": \"Red Sea\", \"category\": \"Piracy\", \"description\": \"Attacks on commercial vessels.\", \"potential_impact\": \"Rerouted shipping\", \"source_urls\": [\"http://example.com/red-sea-attacks/article\"], \"date_mentioned\": \"June 19, 2025\"}]}\n```\nLet me know if you need more."

	reports := ExtractReports(raw)

	assert.Len(t, reports, 1)
	assert.Equal(t, "Red Sea Attacks", reports[0].Title)
	assert.Equal(t, "Red Sea", reports[0].Region)
	assert.Equal(t, "Piracy", reports[0].Category)
	assert.Equal(t, []string{"http://example.com/red-sea-attacks/article"}, reports[0].SourceURLs)
	assert.Equal(t, "June 19, 2025", reports[0].DateMentioned)
}

func TestExtractReports_FenceWithoutLanguage(t *testing.T) {
	raw := "```\n{\"reports\": [{\"title\": \"Strait Closure\", \"region\": \"Strait of Hormuz\", \"category\": \"Military Conflict\", \"description\": \"Naval exercises close the strait.\"}]}\n```"

	reports := ExtractReports(raw)

	assert.Len(t, reports, 1)
	assert.Equal(t, "Strait Closure", reports[0].Title)
}

func TestExtractReports_BareJSON(t *testing.T) {
	raw := `{"reports": [{"title": "Port Strike", "region": "Global", "category": "Labor Dispute", "description": "Dock workers on strike."}]}`

	reports := ExtractReports(raw)

	assert.Len(t, reports, 1)
	assert.Equal(t, "Port Strike", reports[0].Title)
}

func TestExtractReports_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "Plain prose", raw: "I could not find any threats this week."},
		{name: "Truncated object", raw: `{"reports": [{"title": "Broken`},
		{name: "Fenced garbage", raw: "```json\n{not valid json}\n```"},
		{name: "Empty input", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ExtractReports(tt.raw))
		})
	}
}

func TestExtractReports_EmptyReportsList(t *testing.T) {
	raw := "```json\n{\"reports\": []}\n```"

	reports := ExtractReports(raw)

	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestExtractReports_SkipsInvalidElements(t *testing.T) {
	// The second element is missing required fields; only it should be dropped.
	raw := `{"reports": [
		{"title": "First", "region": "Red Sea", "category": "Piracy", "description": "First description."},
		{"title": "No Region"},
		{"title": "Third", "region": "Baltic Sea", "category": "Sanctions", "description": "Third description."}
	]}`

	reports := ExtractReports(raw)

	assert.Len(t, reports, 2)
	assert.Equal(t, "First", reports[0].Title)
	assert.Equal(t, "Third", reports[1].Title)
}

func TestExtractReports_PreservesOrder(t *testing.T) {
	raw := `{"reports": [
		{"title": "A", "region": "r", "category": "c", "description": "d"},
		{"title": "B", "region": "r", "category": "c", "description": "d"},
		{"title": "C", "region": "r", "category": "c", "description": "d"}
	]}`

	reports := ExtractReports(raw)

	assert.Len(t, reports, 3)
	assert.Equal(t, "A", reports[0].Title)
	assert.Equal(t, "B", reports[1].Title)
	assert.Equal(t, "C", reports[2].Title)
}

func TestExtractReports_DefaultsDateMentioned(t *testing.T) {
	raw := `{"reports": [{"title": "No Date", "region": "Global", "category": "Tariffs", "description": "Tariff change."}]}`

	reports := ExtractReports(raw)

	assert.Len(t, reports, 1)
	assert.Equal(t, "Not specified", reports[0].DateMentioned)
}
