package recommend

// Named is anything that carries a course name.
type Named interface {
	CourseName() string
}

// Names extracts the course name of every item, preserving order.
func Names[T Named](items []T) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.CourseName()
	}
	return names
}

// Train fits e on the names of courses.
func Train[T Named](e *Engine, courses []T, epochs int) error {
	return e.Train(Names(courses), epochs)
}

// Recommend returns up to k candidates most similar to name, excluding any
// candidate whose name equals it exactly.
func Recommend[T Named](e *Engine, name string, candidates []T, k int) ([]T, error) {
	matches, err := e.Rank(name, Names(candidates), k)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = candidates[m.Index]
	}
	return out, nil
}
