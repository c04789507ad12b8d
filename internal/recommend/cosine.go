package recommend

import "math"

const (
	// lossEpsilon stabilises the cosine inside the training loss.
	lossEpsilon = 1e-12

	// similarityEpsilon bounds the norm product when ranking.
	similarityEpsilon = 1e-8
)

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// cosineSimilarity is used for ranking: a·b / max(|a||b|, ε).
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	denom := math.Sqrt(dot(a, a)) * math.Sqrt(dot(b, b))
	if denom < similarityEpsilon {
		denom = similarityEpsilon
	}
	return dot(a, b) / denom
}

// cosineWithGrad returns cos(u, v) as computed by the training loss together
// with its gradients with respect to u and v.
func cosineWithGrad(u, v []float64) (cos float64, du, dv []float64) {
	p := dot(u, v)
	mu := dot(u, u) + lossEpsilon
	mv := dot(v, v) + lossEpsilon
	denom := math.Sqrt(mu * mv)
	cos = p / denom

	du = make([]float64, len(u))
	dv = make([]float64, len(v))
	for i := range u {
		du[i] = v[i]/denom - cos*u[i]/mu
		dv[i] = u[i]/denom - cos*v[i]/mv
	}
	return cos, du, dv
}
