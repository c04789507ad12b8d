package recommend

import "github.com/khanglvm/course-hub/internal/tokenizer"

const (
	// UnknownIndex is the row every out-of-vocabulary token maps to.
	UnknownIndex = 0

	// UnknownToken is the display form of UnknownIndex.
	UnknownToken = "<unk>"
)

// Vocabulary maps tokens to embedding rows. Row 0 is reserved for unknown
// tokens; real tokens are numbered from 1 in first-seen order.
type Vocabulary struct {
	index  map[string]int
	tokens []string
}

// BuildVocabulary segments every name and collects the union of tokens.
// Names that produce no tokens are skipped.
func BuildVocabulary(seg tokenizer.Segmenter, names []string) (*Vocabulary, error) {
	v := &Vocabulary{
		index:  map[string]int{UnknownToken: UnknownIndex},
		tokens: []string{UnknownToken},
	}
	for _, name := range names {
		for _, tok := range seg.Segment(name) {
			if _, ok := v.index[tok]; ok {
				continue
			}
			v.index[tok] = len(v.tokens)
			v.tokens = append(v.tokens, tok)
		}
	}
	if len(v.tokens) == 1 {
		return nil, ErrEmptyVocabulary
	}
	return v, nil
}

// Size is the number of embedding rows, including the unknown row.
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// Contains reports whether tok was seen while building the vocabulary.
func (v *Vocabulary) Contains(tok string) bool {
	i, ok := v.index[tok]
	return ok && i != UnknownIndex
}

// Index returns the row for tok, or UnknownIndex.
func (v *Vocabulary) Index(tok string) int {
	if i, ok := v.index[tok]; ok {
		return i
	}
	return UnknownIndex
}

// Encode maps tokens to rows. An empty sequence encodes as a single unknown
// token so that every input has a defined embedding.
func (v *Vocabulary) Encode(tokens []string) []int {
	if len(tokens) == 0 {
		return []int{UnknownIndex}
	}
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = v.Index(tok)
	}
	return ids
}

// Tokens returns the known tokens in index order, excluding the unknown token.
func (v *Vocabulary) Tokens() []string {
	out := make([]string, len(v.tokens)-1)
	copy(out, v.tokens[1:])
	return out
}
