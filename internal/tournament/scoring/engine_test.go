package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRuleTable(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	correct := Triple{"A", "B", "C"}

	cases := []struct {
		name  string
		guess Triple
		want  int
	}{
		{"exact order", Triple{"A", "B", "C"}, 6},
		{"same set wrong order", Triple{"B", "A", "C"}, 4},
		{"same set fully rotated", Triple{"C", "A", "B"}, 4},
		{"top two match", Triple{"A", "B", "D"}, 3},
		{"two common wrong positions", Triple{"C", "A", "D"}, 2},
		{"first position only", Triple{"A", "D", "E"}, 1},
		{"nothing shared", Triple{"D", "E", "F"}, 0},
		{"second position only", Triple{"D", "B", "E"}, 0}, // one shared label, pick 1 wrong
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.Score(correct, tc.guess))
		})
	}
}

func TestScoreSecondPositionOnlyScoresByIntersection(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// Pick 2 matching by position without pick 1 is worth nothing on its
	// own; only the shared-label count applies.
	assert.Equal(t, 0, engine.Score(Triple{"A", "B", "C"}, Triple{"D", "B", "E"}))
	assert.Equal(t, 2, engine.Score(Triple{"A", "B", "C"}, Triple{"D", "B", "C"}))
}

func TestScorePerfectForAnyValidTriple(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	triples := []Triple{
		{"A", "B", "C"},
		{"horse-3", "horse-7", "horse-1"},
		{"x", "y", "z"},
	}
	for _, correct := range triples {
		assert.Equal(t, 6, engine.Score(correct, correct))
	}
}

func TestScoreAllPermutationsOfCorrectSet(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	correct := Triple{"A", "B", "C"}

	perms := []Triple{
		{"A", "B", "C"},
		{"A", "C", "B"},
		{"B", "A", "C"},
		{"B", "C", "A"},
		{"C", "A", "B"},
		{"C", "B", "A"},
	}
	for _, guess := range perms {
		want := 4
		if guess == correct {
			want = 6
		}
		assert.Equal(t, want, engine.Score(correct, guess), "guess %v", guess)
	}
}

func TestScoreIncompleteTriplesScoreZero(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	valid := Triple{"A", "B", "C"}

	invalid := []Triple{
		{},
		{"A", "", "C"},
		{"A", "A", "B"},
		{"A", "B", ""},
		{"A", "B", "B"},
	}
	for _, bad := range invalid {
		assert.Zero(t, engine.Score(valid, bad), "guess %v", bad)
		assert.Zero(t, engine.Score(bad, valid), "correct %v", bad)
		assert.Zero(t, engine.Score(bad, bad))
	}
}

func TestScoreCustomConfig(t *testing.T) {
	engine := NewEngine(Config{ExactOrder: 60, SameSet: 40, TopTwo: 30, TwoCommon: 20, FirstOnly: 10})
	correct := Triple{"A", "B", "C"}

	assert.Equal(t, 60, engine.Score(correct, Triple{"A", "B", "C"}))
	assert.Equal(t, 40, engine.Score(correct, Triple{"C", "B", "A"}))
	assert.Equal(t, 30, engine.Score(correct, Triple{"A", "B", "D"}))
	assert.Equal(t, 20, engine.Score(correct, Triple{"B", "C", "D"}))
	assert.Equal(t, 10, engine.Score(correct, Triple{"A", "D", "E"}))
}
