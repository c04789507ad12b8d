/*
Package search implements keyword and hybrid course search.

Courses are indexed in an in-memory Bleve index. Names and locations are
analyzed with the CJK analyzer so that Chinese course names are matched by
bigram. Hybrid search fuses normalized BM25 scores with the recommender's
name similarity.
*/
package search

import "github.com/khanglvm/course-hub/internal/course"

// SearchResult is a matched course with its relevance score.
type SearchResult struct {
	Course course.Course `json:"course"`
	Score  float64       `json:"score"`

	docID string
}
