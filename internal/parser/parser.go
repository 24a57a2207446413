package parser

import (
	"encoding/json"
	"regexp"

	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/sirupsen/logrus"
)

// fencedJSON matches a brace-delimited object inside a ``` or ```json fence.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

type agentPayload struct {
	Reports []models.ThreatReport `json:"reports"`
}

// ExtractReports pulls the JSON payload out of the agent's raw response and
// returns the valid threat reports it contains, in the agent's order.
//
// The parser fails open: malformed JSON yields an empty slice (the raw text is
// logged for diagnosis), and an element missing a required field is skipped
// individually rather than discarding the whole batch.
func ExtractReports(raw string) []models.ThreatReport {
	candidate := raw
	if match := fencedJSON.FindStringSubmatch(raw); match != nil {
		candidate = match[1]
	}

	var payload agentPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		logrus.Errorf("Could not parse agent response: %v", err)
		logrus.Debugf("Raw agent response: %s", raw)
		return nil
	}

	reports := make([]models.ThreatReport, 0, len(payload.Reports))
	for i := range payload.Reports {
		report := payload.Reports[i]
		if err := report.Validate(); err != nil {
			logrus.Warnf("Skipping invalid report at index %d: %v", i, err)
			continue
		}
		reports = append(reports, report)
	}

	return reports
}
