package assessment

// Rand is the entropy source for shuffling. *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// Selection is one drawn session of questions.
type Selection struct {
	Questions []Question `json:"questions"`
	// NeedsReset is set when the unseen pool could not fill the session and
	// the draw fell back to the whole bank. The caller should clear the
	// user's seen set for this stream.
	NeedsReset bool `json:"needs_reset"`
}

// SelectQuestionsForUser draws up to count non-repeating questions in random
// order, skipping seen ones. When fewer than count unseen questions remain it
// draws from all questions and sets NeedsReset. If the whole bank is smaller
// than count the session is short. Neither input is modified.
func SelectQuestionsForUser(all []Question, seen SeenSet, count int, rng Rand) Selection {
	if count <= 0 {
		return Selection{Questions: []Question{}}
	}

	available := make([]Question, 0, len(all))
	for _, q := range all {
		if !seen.Has(q.ID) {
			available = append(available, q)
		}
	}

	needsReset := false
	if len(available) < count {
		available = make([]Question, len(all))
		copy(available, all)
		needsReset = true
	}

	shuffle(available, rng)
	if len(available) > count {
		available = available[:count]
	}

	return Selection{Questions: available, NeedsReset: needsReset}
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(qs []Question, rng Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
