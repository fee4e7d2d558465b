package scoring

// Config holds the point values awarded by each rule of the sanrentan table
// (defaults match the canonical rules).
type Config struct {
	ExactOrder int // all three picks in exact order
	SameSet    int // same three picks, order wrong
	TopTwo     int // picks 1 and 2 in exact position
	TwoCommon  int // exactly two picks shared, any position
	FirstOnly  int // pick 1 in exact position
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		ExactOrder: 6,
		SameSet:    4,
		TopTwo:     3,
		TwoCommon:  2,
		FirstOnly:  1,
	}
}

// Triple is a ranked 1st/2nd/3rd prediction (duplicated here to avoid import cycle).
type Triple [3]string

// complete reports whether all three entries are filled and pairwise distinct.
// Incomplete triples never score.
func (t Triple) complete() bool {
	for i, label := range t {
		if label == "" {
			return false
		}
		for j := i + 1; j < len(t); j++ {
			if label == t[j] {
				return false
			}
		}
	}
	return true
}

// Engine computes scores for guesses against a published correct triple.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Score evaluates guess against correct under the fixed rule table.
// Rules are checked in priority order and the first match wins:
//  1. exact order-and-value match on all three positions
//  2. same three labels in any order
//  3. positions 1 and 2 both exact
//  4. exactly two labels in common, regardless of position
//  5. position 1 exact
//  6. nothing
//
// Either side being incomplete (empty or duplicated labels) scores 0;
// the function never fails.
func (e *Engine) Score(correct, guess Triple) int {
	if !correct.complete() || !guess.complete() {
		return 0
	}

	if correct == guess {
		return e.config.ExactOrder
	}

	common := intersectionSize(correct, guess)
	if common == 3 {
		return e.config.SameSet
	}
	if correct[0] == guess[0] && correct[1] == guess[1] {
		return e.config.TopTwo
	}
	if common == 2 {
		return e.config.TwoCommon
	}
	if correct[0] == guess[0] {
		return e.config.FirstOnly
	}
	return 0
}

// intersectionSize counts labels shared between the two triples by identity,
// not position. Inputs are distinct within each triple, so a nested scan is enough.
func intersectionSize(a, b Triple) int {
	count := 0
	for _, la := range a {
		for _, lb := range b {
			if la == lb {
				count++
				break
			}
		}
	}
	return count
}
