package search

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/logging"
)

const defaultLimit = 10

// Indexer manages the search index for the schedule.
type Indexer struct {
	bleveIndex bleve.Index
	courses    map[string]course.Course
	scorer     Scorer
	mu         sync.RWMutex
}

// NewIndexer creates an empty in-memory index. scorer may be nil, in which
// case hybrid search falls back to BM25.
func NewIndexer(scorer Scorer) (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{
		bleveIndex: index,
		courses:    make(map[string]course.Course),
		scorer:     scorer,
	}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	courseMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = cjk.AnalyzerName
	courseMapping.AddFieldMappingsAt("name", nameFieldMapping)

	locationFieldMapping := bleve.NewTextFieldMapping()
	locationFieldMapping.Analyzer = cjk.AnalyzerName
	courseMapping.AddFieldMappingsAt("location", locationFieldMapping)

	// Teacher IDs are single letters; match them exactly.
	teacherFieldMapping := bleve.NewKeywordFieldMapping()
	courseMapping.AddFieldMappingsAt("teacher", teacherFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName
	indexMapping.AddDocumentMapping("_default", courseMapping)

	return indexMapping
}

// Reindex replaces the index contents with courses.
func (i *Indexer) Reindex(courses []course.Course) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for id := range i.courses {
		batch.Delete(id)
	}
	i.courses = make(map[string]course.Course, len(courses))

	for pos, c := range courses {
		docID := strconv.Itoa(pos)
		doc := map[string]interface{}{
			"name":     c.Name,
			"location": c.Location,
			"teacher":  c.TeacherID,
		}
		if err := batch.Index(docID, doc); err != nil {
			logging.Warn().Err(err).Str("course", c.Name).Msg("failed to index course")
			continue
		}
		i.courses[docID] = c
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index courses: %w", err)
	}
	return nil
}

// Count returns the total number of indexed courses.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}

// SearchBM25 performs keyword search over course names, locations and
// teacher IDs.
func (i *Indexer) SearchBM25(text string, limit int) ([]SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildMatchQuery(text), limit, 0, false)
	results, err := i.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	out := make([]SearchResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		c, ok := i.courses[hit.ID]
		if !ok {
			continue
		}
		out = append(out, SearchResult{Course: c, Score: hit.Score, docID: hit.ID})
	}
	return out, nil
}

// buildMatchQuery matches text against every searchable field.
func buildMatchQuery(text string) query.Query {
	name := bleve.NewMatchQuery(text)
	name.SetField("name")
	name.SetBoost(2)

	location := bleve.NewMatchQuery(text)
	location.SetField("location")

	teacher := bleve.NewTermQuery(text)
	teacher.SetField("teacher")

	return bleve.NewDisjunctionQuery(name, location, teacher)
}
