package search

import (
	"github.com/samber/lo"

	"github.com/khanglvm/course-hub/internal/logging"
)

// FusionConfig configures how BM25 and semantic scores are combined.
type FusionConfig struct {
	// SemanticWeight is the weight for semantic similarity scores (0.0-1.0).
	SemanticWeight float64

	// KeywordWeight is the weight for BM25 keyword scores (0.0-1.0).
	KeywordWeight float64
}

// DefaultFusionConfig provides 70% semantic, 30% keyword weighting.
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// SearchHybrid combines BM25 and semantic search. Both result lists are
// normalized to [0, 1] before fusion. Without a scorer, or if the scorer
// fails, BM25 results are returned.
func (i *Indexer) SearchHybrid(text string, limit int, config FusionConfig) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	bm25Results, err := i.SearchBM25(text, limit*2)
	if err != nil {
		return nil, err
	}

	semanticResults, err := i.SearchSemantic(text, limit*2)
	if err != nil {
		logging.Debug().Err(err).Msg("semantic search unavailable, using BM25 only")
		return lo.Subset(bm25Results, 0, uint(limit)), nil
	}

	fused := fuseScores(normalizeScores(bm25Results), normalizeScores(semanticResults), config)
	sortResults(fused)

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// fuseScores merges two result lists by document. A course found by both
// gets the weighted sum; a course found by one keeps that score.
func fuseScores(bm25Results, semanticResults []SearchResult, config FusionConfig) []SearchResult {
	byID := func(r SearchResult) string { return r.docID }
	bm25Map := lo.KeyBy(bm25Results, byID)
	semanticMap := lo.KeyBy(semanticResults, byID)

	allIDs := lo.Uniq(append(lo.Map(bm25Results, func(r SearchResult, _ int) string { return r.docID }),
		lo.Map(semanticResults, func(r SearchResult, _ int) string { return r.docID })...))

	fused := make([]SearchResult, 0, len(allIDs))
	for _, id := range allIDs {
		bm25Result, hasBM25 := bm25Map[id]
		semanticResult, hasSemantic := semanticMap[id]

		switch {
		case hasBM25 && hasSemantic:
			semanticResult.Score = config.SemanticWeight*semanticResult.Score +
				config.KeywordWeight*bm25Result.Score
			fused = append(fused, semanticResult)
		case hasBM25:
			fused = append(fused, bm25Result)
		case hasSemantic:
			fused = append(fused, semanticResult)
		}
	}

	return fused
}

// normalizeScores rescales scores to [0, 1] using min-max normalization.
// When every score is equal they all become 1.
func normalizeScores(results []SearchResult) []SearchResult {
	if len(results) == 0 {
		return results
	}

	minScore := lo.MinBy(results, func(a, b SearchResult) bool { return a.Score < b.Score }).Score
	maxScore := lo.MaxBy(results, func(a, b SearchResult) bool { return a.Score > b.Score }).Score

	normalized := make([]SearchResult, len(results))
	for i, result := range results {
		normalized[i] = result
		if maxScore == minScore {
			normalized[i].Score = 1.0
			continue
		}
		normalized[i].Score = (result.Score - minScore) / (maxScore - minScore)
	}
	return normalized
}
