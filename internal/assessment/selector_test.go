package assessment_test

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

func makeQuestions(n int) []assessment.Question {
	qs := make([]assessment.Question, n)
	for i := range qs {
		id := fmt.Sprintf("Q%03d", i+1)
		qs[i] = assessment.Question{
			ID:       id,
			Scenario: "Scenario " + id,
			Options: []assessment.Option{
				{ID: "A", Text: "a", Traits: []string{"analytical", "logical"}},
				{ID: "B", Text: "b", Traits: []string{"creative", "expressive"}},
				{ID: "C", Text: "c", Traits: []string{"leadership", "social"}},
				{ID: "D", Text: "d", Traits: []string{"practical", "analytical"}},
			},
		}
	}
	return qs
}

func ids(qs []assessment.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestSelectQuestionsForUser_NoDuplicatesNoSeen(t *testing.T) {
	all := makeQuestions(100)
	seen := assessment.NewSeenSet(ids(all[:30])...)

	for seed := uint64(0); seed < 50; seed++ {
		sel := assessment.SelectQuestionsForUser(all, seen, 20, seededRand(seed))
		if sel.NeedsReset {
			t.Fatalf("seed %d: NeedsReset = true, want false", seed)
		}
		if len(sel.Questions) != 20 {
			t.Fatalf("seed %d: got %d questions, want 20", seed, len(sel.Questions))
		}
		got := make(map[string]bool)
		for _, q := range sel.Questions {
			if got[q.ID] {
				t.Errorf("seed %d: duplicate question %s", seed, q.ID)
			}
			got[q.ID] = true
			if seen.Has(q.ID) {
				t.Errorf("seed %d: seen question %s was selected", seed, q.ID)
			}
		}
	}
}

func TestSelectQuestionsForUser_FillGuarantee(t *testing.T) {
	all := makeQuestions(25)

	tests := []struct {
		name string
		seen int
	}{
		{"nothing seen", 0},
		{"exactly enough unseen", 5},
		{"one short", 6},
		{"all seen", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := assessment.NewSeenSet(ids(all[:tt.seen])...)
			sel := assessment.SelectQuestionsForUser(all, seen, 20, seededRand(7))
			if len(sel.Questions) != 20 {
				t.Errorf("len(Questions) = %d, want 20", len(sel.Questions))
			}
		})
	}
}

func TestSelectQuestionsForUser_ResetWhenExhausted(t *testing.T) {
	all := makeQuestions(100)
	seen := assessment.NewSeenSet(ids(all)...)

	sel := assessment.SelectQuestionsForUser(all, seen, 20, seededRand(42))
	if !sel.NeedsReset {
		t.Fatal("NeedsReset = false, want true when every question was seen")
	}
	if len(sel.Questions) != 20 {
		t.Fatalf("len(Questions) = %d, want 20", len(sel.Questions))
	}

	bank := assessment.NewSeenSet(ids(all)...)
	picked := make(map[string]bool)
	for _, q := range sel.Questions {
		if !bank.Has(q.ID) {
			t.Errorf("question %s not from the bank", q.ID)
		}
		if picked[q.ID] {
			t.Errorf("duplicate question %s after reset", q.ID)
		}
		picked[q.ID] = true
	}
}

func TestSelectQuestionsForUser_ResetDrawsFromFullBank(t *testing.T) {
	all := makeQuestions(30)
	// 12 unseen left, session of 20: the draw must include seen questions.
	seen := assessment.NewSeenSet(ids(all[:18])...)

	sel := assessment.SelectQuestionsForUser(all, seen, 20, seededRand(3))
	if !sel.NeedsReset {
		t.Fatal("NeedsReset = false, want true")
	}
	seenPicked := 0
	for _, q := range sel.Questions {
		if seen.Has(q.ID) {
			seenPicked++
		}
	}
	if seenPicked < 8 {
		t.Errorf("picked %d seen questions, want at least 8", seenPicked)
	}
}

func TestSelectQuestionsForUser_ShortBank(t *testing.T) {
	all := makeQuestions(7)

	sel := assessment.SelectQuestionsForUser(all, nil, 20, seededRand(1))
	if len(sel.Questions) != 7 {
		t.Errorf("len(Questions) = %d, want 7", len(sel.Questions))
	}
	if !sel.NeedsReset {
		t.Error("NeedsReset = false, want true when the bank cannot fill the session")
	}
}

func TestSelectQuestionsForUser_ZeroCount(t *testing.T) {
	sel := assessment.SelectQuestionsForUser(makeQuestions(5), nil, 0, seededRand(1))
	if len(sel.Questions) != 0 || sel.NeedsReset {
		t.Errorf("got %d questions, reset=%v; want empty selection", len(sel.Questions), sel.NeedsReset)
	}
}

func TestSelectQuestionsForUser_DoesNotMutateInput(t *testing.T) {
	all := makeQuestions(10)
	before := ids(all)

	assessment.SelectQuestionsForUser(all, nil, 5, seededRand(9))
	assessment.SelectQuestionsForUser(all, assessment.NewSeenSet(before...), 5, seededRand(9))

	if !reflect.DeepEqual(ids(all), before) {
		t.Errorf("input order changed: %v", ids(all))
	}
}

func TestSelectQuestionsForUser_DeterministicForSeed(t *testing.T) {
	all := makeQuestions(50)

	a := assessment.SelectQuestionsForUser(all, nil, 20, seededRand(11))
	b := assessment.SelectQuestionsForUser(all, nil, 20, seededRand(11))
	if !reflect.DeepEqual(ids(a.Questions), ids(b.Questions)) {
		t.Errorf("same seed gave different draws:\n%v\n%v", ids(a.Questions), ids(b.Questions))
	}
}

// fixedRand always returns 0, which makes Fisher-Yates a known rotation.
type fixedRand struct{}

func (fixedRand) IntN(int) int { return 0 }

func TestSelectQuestionsForUser_ExactPermutation(t *testing.T) {
	all := makeQuestions(4)

	// i=3 swap(3,0): 4 2 3 1; i=2 swap(2,0): 3 2 4 1; i=1 swap(1,0): 2 3 4 1
	sel := assessment.SelectQuestionsForUser(all, nil, 4, fixedRand{})
	want := []string{"Q002", "Q003", "Q004", "Q001"}
	if got := ids(sel.Questions); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSelectQuestionsForUser_UniformShuffle(t *testing.T) {
	const n = 4
	const trials = 40000
	all := makeQuestions(n)
	rng := seededRand(2024)

	// counts[question][position]
	var counts [n][n]int
	index := map[string]int{}
	for i, q := range all {
		index[q.ID] = i
	}

	for range trials {
		sel := assessment.SelectQuestionsForUser(all, nil, n, rng)
		for pos, q := range sel.Questions {
			counts[index[q.ID]][pos]++
		}
	}

	expected := trials / n
	tolerance := expected / 20 // 5%
	for q := range n {
		for pos := range n {
			if diff := counts[q][pos] - expected; diff > tolerance || diff < -tolerance {
				t.Errorf("question %d at position %d: %d times, want %d ± %d", q, pos, counts[q][pos], expected, tolerance)
			}
		}
	}
}
