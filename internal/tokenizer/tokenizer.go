/*
Package tokenizer segments course names into sub-word tokens.

The default segmenter runs bleve's CJK analyzer: unicode word boundaries,
full/half width folding, lowercasing, and overlapping bigrams for runs of
CJK ideographs ("人工智能" → 人工, 工智, 智能). Latin words pass through as
whole lowercase words. Output is deterministic for identical input.
*/
package tokenizer

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
)

// Segmenter splits text into an ordered sequence of tokens.
type Segmenter interface {
	Segment(text string) []string
}

// Bleve segments text with a named bleve analyzer.
type Bleve struct {
	analyzer analysis.Analyzer
}

// NewCJK returns a segmenter backed by bleve's "cjk" analyzer.
func NewCJK() (*Bleve, error) {
	return NewBleve(cjk.AnalyzerName)
}

// NewBleve returns a segmenter for any analyzer registered with bleve.
func NewBleve(analyzerName string) (*Bleve, error) {
	a := bleve.NewIndexMapping().AnalyzerNamed(analyzerName)
	if a == nil {
		return nil, fmt.Errorf("bleve analyzer %q not registered", analyzerName)
	}
	return &Bleve{analyzer: a}, nil
}

// Segment returns the token terms in stream order. Empty input yields nil.
func (b *Bleve) Segment(text string) []string {
	if text == "" {
		return nil
	}
	stream := b.analyzer.Analyze([]byte(text))
	if len(stream) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}
