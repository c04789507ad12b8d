package search

import (
	"errors"
	"sort"
)

// ErrNoScorer is returned by SearchSemantic when no similarity scorer is set.
var ErrNoScorer = errors.New("search: no similarity scorer configured")

// Scorer rates how similar two course names are. The recommender engine
// satisfies it.
type Scorer interface {
	Similarity(a, b string) (float64, error)
}

// SearchSemantic scores every indexed course name against text and returns
// the best matches.
func (i *Indexer) SearchSemantic(text string, limit int) ([]SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.scorer == nil {
		return nil, ErrNoScorer
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	results := make([]SearchResult, 0, len(i.courses))
	for docID, c := range i.courses {
		score, err := i.scorer.Similarity(text, c.Name)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Course: c, Score: score, docID: docID})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// sortResults orders by descending score, then by document ID so that map
// iteration order never leaks into results.
func sortResults(results []SearchResult) {
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return docLess(results[a].docID, results[b].docID)
	})
}

// docLess compares numeric document IDs.
func docLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
