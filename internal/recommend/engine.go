/*
Package recommend trains a small text-embedding model over course names and
ranks courses by cosine similarity to a query course.

Lifecycle:

	Uninitialized → VocabBuilt → Trained → Ready

Train moves an engine through VocabBuilt to Trained; the first successful
Rank marks it Ready. Ranking an untrained engine returns ErrEngineNotTrained.
Calling Train again discards the previous vocabulary and weights.

Training pairs every course i with course (i+1) mod N as a positive example
and course (i+N/2) mod N as a negative example. The pairing is positional, a
placeholder for a real similarity heuristic, and is kept as is.
*/
package recommend

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/khanglvm/course-hub/internal/logging"
	"github.com/khanglvm/course-hub/internal/tokenizer"
)

// State is the engine lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateVocabBuilt
	StateTrained
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateVocabBuilt:
		return "vocab_built"
	case StateTrained:
		return "trained"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures an Engine.
type Options struct {
	// Dimension is the embedding size D.
	Dimension int

	// Epochs is the number of passes used when Train is given epochs <= 0.
	Epochs int

	// LearningRate is the Adam step size.
	LearningRate float64

	// Seed makes weight initialisation reproducible.
	Seed uint64

	// LogEvery controls how often (in epochs) the running loss is logged.
	// Zero disables progress logging.
	LogEvery int
}

// DefaultOptions returns D=32, 100 epochs, lr=1e-3, progress every 10 epochs.
func DefaultOptions() Options {
	return Options{
		Dimension:    32,
		Epochs:       100,
		LearningRate: 1e-3,
		Seed:         1,
		LogEvery:     10,
	}
}

// Stats summarises the last training run.
type Stats struct {
	Courses   int     `json:"courses"`
	VocabSize int     `json:"vocab_size"`
	Epochs    int     `json:"epochs"`
	Loss      float64 `json:"loss"`
}

// Match is one ranked candidate: its position in the candidate list and its
// cosine similarity to the query.
type Match struct {
	Index int
	Score float64
}

// Engine owns a vocabulary and model. It is safe for concurrent use; training
// and ranking are serialised.
type Engine struct {
	mu    sync.Mutex
	seg   tokenizer.Segmenter
	opts  Options
	state State
	vocab *Vocabulary
	model *model
	stats Stats
}

// NewEngine creates an untrained engine. Zero-valued options fall back to
// DefaultOptions.
func NewEngine(seg tokenizer.Segmenter, opts Options) *Engine {
	def := DefaultOptions()
	if opts.Dimension <= 0 {
		opts.Dimension = def.Dimension
	}
	if opts.Epochs <= 0 {
		opts.Epochs = def.Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.LogEvery < 0 {
		opts.LogEvery = 0
	}
	return &Engine{seg: seg, opts: opts}
}

// State returns the current lifecycle stage.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns the summary of the last successful Train.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Vocabulary returns the frozen vocabulary, or nil before training.
func (e *Engine) Vocabulary() *Vocabulary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vocab
}

// Reset discards the vocabulary, weights and stats. Ranking fails with
// ErrEngineNotTrained until the next successful Train.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.state = StateUninitialized
	e.vocab = nil
	e.model = nil
	e.stats = Stats{}
}

// Train builds the vocabulary from names and fits the model for the given
// number of epochs (Options.Epochs when epochs <= 0). On error the engine
// is left uninitialized.
func (e *Engine) Train(names []string, epochs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if epochs <= 0 {
		epochs = e.opts.Epochs
	}

	e.reset()

	if len(names) == 0 {
		return ErrEmptyVocabulary
	}
	vocab, err := BuildVocabulary(e.seg, names)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(e.opts.Seed, e.opts.Seed^0x9e3779b97f4a7c15))
	e.vocab = vocab
	e.model = newModel(vocab.Size(), e.opts.Dimension, rng)
	e.state = StateVocabBuilt

	encoded := make([][]int, len(names))
	for i, name := range names {
		encoded[i] = vocab.Encode(e.seg.Segment(name))
	}

	loss := e.fit(encoded, epochs)

	e.stats = Stats{
		Courses:   len(names),
		VocabSize: vocab.Size(),
		Epochs:    epochs,
		Loss:      loss,
	}
	e.state = StateTrained
	return nil
}

// fit runs the training loop and returns the average loss of the last epoch.
func (e *Engine) fit(encoded [][]int, epochs int) float64 {
	n := len(encoded)
	grads := e.model.newGradients()
	opt := newAdam(e.opts.LearningRate, e.model.params())

	var avg float64
	for epoch := 0; epoch < epochs; epoch++ {
		var total float64
		for i := range encoded {
			pos := (i + 1) % n
			neg := (i + n/2) % n

			grads.zero()
			total += e.step(encoded[i], encoded[pos], encoded[neg], grads)
			opt.step(e.model.params(), grads.slices())
		}
		avg = total / float64(n)

		if e.opts.LogEvery > 0 && (epoch+1)%e.opts.LogEvery == 0 {
			logging.Debug().
				Int("epoch", epoch+1).
				Int("epochs", epochs).
				Float64("loss", avg).
				Msg("recommender training")
		}
	}
	return avg
}

// step computes the pair loss for one anchor and accumulates its gradients.
//
//	loss = (1 - cos(a, p)) + max(0, cos(a, n))
func (e *Engine) step(anchor, positive, negative []int, g *gradients) float64 {
	meanA, outA := e.model.forward(anchor)
	meanP, outP := e.model.forward(positive)
	meanN, outN := e.model.forward(negative)

	cosP, dAP, dPA := cosineWithGrad(outA, outP)
	cosN, dAN, dNA := cosineWithGrad(outA, outN)

	loss := 1 - cosP
	gradA := make([]float64, len(outA))
	gradP := make([]float64, len(outP))
	for i := range gradA {
		gradA[i] = -dAP[i]
		gradP[i] = -dPA[i]
	}

	e.model.backward(anchor, meanA, gradA, g)
	e.model.backward(positive, meanP, gradP, g)

	if cosN > 0 {
		loss += cosN
		e.model.backward(anchor, meanA, dAN, g)
		e.model.backward(negative, meanN, dNA, g)
	}
	return loss
}

// Embed returns the model output for text. Text that yields no tokens is
// embedded as a single unknown token.
func (e *Engine) Embed(text string) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state < StateTrained {
		return nil, ErrEngineNotTrained
	}
	return e.embed(text), nil
}

func (e *Engine) embed(text string) []float64 {
	_, out := e.model.forward(e.vocab.Encode(e.seg.Segment(text)))
	return out
}

// Similarity returns the cosine similarity between the embeddings of a and b.
func (e *Engine) Similarity(a, b string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state < StateTrained {
		return 0, ErrEngineNotTrained
	}
	return cosineSimilarity(e.embed(a), e.embed(b)), nil
}

// Rank scores every name that is not exactly query and returns the k best
// by descending similarity. Ties keep their input order. Fewer than k
// matches are returned when fewer candidates remain; k <= 0 returns none.
func (e *Engine) Rank(query string, names []string, k int) ([]Match, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state < StateTrained {
		return nil, ErrEngineNotTrained
	}
	e.state = StateReady

	if k <= 0 {
		return []Match{}, nil
	}

	q := e.embed(query)
	matches := make([]Match, 0, len(names))
	for i, name := range names {
		if name == query {
			continue
		}
		score := cosineSimilarity(q, e.embed(name))
		if math.IsNaN(score) {
			score = -1
		}
		matches = append(matches, Match{Index: i, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
