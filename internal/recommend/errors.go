package recommend

import "errors"

var (
	// ErrEmptyVocabulary is returned when training input yields no tokens,
	// including the case of zero courses.
	ErrEmptyVocabulary = errors.New("recommend: empty vocabulary")

	// ErrEngineNotTrained is returned when ranking is attempted before Train.
	ErrEngineNotTrained = errors.New("recommend: engine not trained")
)
