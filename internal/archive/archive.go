package archive

import (
	"fmt"
	"log"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/mapping"
)

// Article is the indexed form of a generated piece of content.
type Article struct {
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Hit is one full-text search match from the archive.
type Hit struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Topic     string              `json:"topic"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Archive maintains a full-text index over generated articles so past runs
// stay searchable without a database round trip.
type Archive struct {
	index  bleve.Index
	logger *log.Logger
}

// Open opens the index at path, creating it on first use.
func Open(path string) (*Archive, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("creating article index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("opening article index: %w", err)
	}
	return &Archive{
		index:  index,
		logger: log.New(log.Writer(), "[ARCHIVE] ", log.LstdFlags),
	}, nil
}

// OpenMem builds an in-memory index, used by tests and ephemeral runs.
func OpenMem() (*Archive, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating in-memory article index: %w", err)
	}
	return &Archive{
		index:  index,
		logger: log.New(log.Writer(), "[ARCHIVE] ", log.LstdFlags),
	}, nil
}

func buildMapping() mapping.IndexMapping {
	articleMapping := bleve.NewDocumentMapping()

	topicField := bleve.NewTextFieldMapping()
	topicField.Store = true
	articleMapping.AddFieldMappingsAt("topic", topicField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = true
	articleMapping.AddFieldMappingsAt("content", contentField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = articleMapping
	return m
}

// Index adds or replaces an article under the given run ID.
func (a *Archive) Index(id string, article Article) error {
	if err := a.index.Index(id, article); err != nil {
		return fmt.Errorf("indexing article %s: %w", id, err)
	}
	return nil
}

// Search runs a query-string search with highlighted fragments.
func (a *Archive) Search(q string, limit int) ([]Hit, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"topic"}
	req.Highlight = bleve.NewHighlightWithStyle("html")

	res, err := a.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching articles: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score, Fragments: h.Fragments}
		if topic, ok := h.Fields["topic"].(string); ok {
			hit.Topic = topic
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count reports how many articles the index holds.
func (a *Archive) Count() (uint64, error) {
	return a.index.DocCount()
}

// Close releases the underlying index.
func (a *Archive) Close() error {
	return a.index.Close()
}
