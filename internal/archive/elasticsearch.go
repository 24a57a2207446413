package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/grakowskiMarcura/maritime-threat-monitor/internal/models"
	"github.com/sirupsen/logrus"
)

// ElasticsearchWriter mirrors persisted threats into an Elasticsearch index.
// Documents are written once and never read back by this system.
type ElasticsearchWriter struct {
	client *es.Client
	index  string
}

// Ensure ElasticsearchWriter implements ArchiveInterface
var _ ArchiveInterface = (*ElasticsearchWriter)(nil)

// NewElasticsearchWriter creates a new archival writer
func NewElasticsearchWriter(url, index string) (*ElasticsearchWriter, error) {
	client, err := es.NewClient(es.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticsearchWriter{
		client: client,
		index:  index,
	}, nil
}

// Store indexes the archival copy of a threat, keyed by its relational id.
func (w *ElasticsearchWriter) Store(ctx context.Context, threat *models.Threat) error {
	entry := models.NewArchiveEntry(threat)

	docBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal archive entry: %w", err)
	}

	res, err := w.client.Index(
		w.index,
		bytes.NewReader(docBytes),
		w.client.Index.WithContext(ctx),
		w.client.Index.WithDocumentID(strconv.FormatInt(threat.ID, 10)),
	)
	if err != nil {
		return fmt.Errorf("failed to index archive entry %d: %w", threat.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing archive entry %d: %s", threat.ID, res.String())
	}

	logrus.Debugf("Archived threat %d to index %s", threat.ID, w.index)
	return nil
}
