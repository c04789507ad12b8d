package recommend

import (
	"math"
	"math/rand/v2"
)

// model is the embedding table followed by mean pooling and one affine
// projection: y = W·mean(E[ids]) + b. Parameters are flat row-major slices.
type model struct {
	dim int
	emb []float64 // rows × dim
	w   []float64 // dim × dim, y[i] = Σ_j w[i*dim+j]·x[j]
	b   []float64 // dim
}

// gradients mirrors the parameter layout of model.
type gradients struct {
	emb []float64
	w   []float64
	b   []float64
}

// newModel draws embedding rows from N(0,1) and the projection from
// U(-1/√dim, 1/√dim).
func newModel(rows, dim int, rng *rand.Rand) *model {
	m := &model{
		dim: dim,
		emb: make([]float64, rows*dim),
		w:   make([]float64, dim*dim),
		b:   make([]float64, dim),
	}
	for i := range m.emb {
		m.emb[i] = rng.NormFloat64()
	}
	bound := 1 / math.Sqrt(float64(dim))
	for i := range m.w {
		m.w[i] = (rng.Float64()*2 - 1) * bound
	}
	for i := range m.b {
		m.b[i] = (rng.Float64()*2 - 1) * bound
	}
	return m
}

func (m *model) newGradients() *gradients {
	return &gradients{
		emb: make([]float64, len(m.emb)),
		w:   make([]float64, len(m.w)),
		b:   make([]float64, len(m.b)),
	}
}

func (g *gradients) zero() {
	clear(g.emb)
	clear(g.w)
	clear(g.b)
}

// forward returns the pooled mean and the projected output for ids.
// ids must be non-empty.
func (m *model) forward(ids []int) (mean, out []float64) {
	d := m.dim
	mean = make([]float64, d)
	for _, id := range ids {
		row := m.emb[id*d : (id+1)*d]
		for j, x := range row {
			mean[j] += x
		}
	}
	n := float64(len(ids))
	for j := range mean {
		mean[j] /= n
	}

	out = make([]float64, d)
	for i := 0; i < d; i++ {
		s := m.b[i]
		row := m.w[i*d : (i+1)*d]
		for j, x := range mean {
			s += row[j] * x
		}
		out[i] = s
	}
	return mean, out
}

// backward accumulates into g the gradients of a scalar loss whose gradient
// with respect to forward(ids)'s output is gradOut.
func (m *model) backward(ids []int, mean, gradOut []float64, g *gradients) {
	d := m.dim
	gradMean := make([]float64, d)
	for i := 0; i < d; i++ {
		gi := gradOut[i]
		if gi == 0 {
			continue
		}
		g.b[i] += gi
		row := m.w[i*d : (i+1)*d]
		grow := g.w[i*d : (i+1)*d]
		for j := 0; j < d; j++ {
			grow[j] += gi * mean[j]
			gradMean[j] += row[j] * gi
		}
	}

	scale := 1 / float64(len(ids))
	for _, id := range ids {
		grow := g.emb[id*d : (id+1)*d]
		for j := range grow {
			grow[j] += gradMean[j] * scale
		}
	}
}

// params returns the parameter slices in a fixed order matching grads.
func (m *model) params() [][]float64 {
	return [][]float64{m.emb, m.w, m.b}
}

func (g *gradients) slices() [][]float64 {
	return [][]float64{g.emb, g.w, g.b}
}
