package tournament

import (
	"strings"
	"time"
)

// Question lifecycle phases.
const (
	PhaseOpen     = "open"     // accepting submissions, answer hidden
	PhaseClosed   = "closed"   // not accepting submissions, answer hidden
	PhaseRevealed = "revealed" // not accepting submissions, answer shown
)

// Triple is an ordered 1st/2nd/3rd prediction over the active option set.
type Triple [3]string

// Labels returns the triple as a slice for storage layers.
func (t Triple) Labels() []string {
	return []string{t[0], t[1], t[2]}
}

// Complete reports whether all three entries are filled and pairwise distinct.
func (t Triple) Complete() bool {
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

// TripleFromLabels builds a Triple from a slice, padding with empty strings.
// Validation is separate; this is a plain shape conversion.
func TripleFromLabels(labels []string) Triple {
	var t Triple
	for i := 0; i < len(t) && i < len(labels); i++ {
		t[i] = labels[i]
	}
	return t
}

// Submission is one participant's guess for one question, keyed by
// (question id, name). Score stays 0 until the answer is published.
type Submission struct {
	QuestionID  int       `json:"question_id"`
	Name        string    `json:"name"`
	Guess       Triple    `json:"guess"`
	Score       int       `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// State is the singleton question lifecycle record. Correct is nil until the
// first publish for the current question.
type State struct {
	QuestionID int       `json:"question_id"`
	Prompt     string    `json:"prompt"`
	Options    []string  `json:"options"`
	Phase      string    `json:"phase"`
	Correct    *Triple   `json:"correct,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AcceptingSubmissions reports whether participants may submit.
func (s State) AcceptingSubmissions() bool {
	return s.Phase == PhaseOpen
}

// Revealed reports whether the correct answer is published for the current question.
func (s State) Revealed() bool {
	return s.Phase == PhaseRevealed
}

// RankingEntry is one leaderboard row: total score across all questions.
type RankingEntry struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// ValidateOptions checks an organizer-supplied option set: at least three
// labels (a triple must be expressible), all non-empty and distinct.
func ValidateOptions(labels []string) error {
	if len(labels) < 3 {
		return validationf(ReasonInvalidTriple, "option set needs at least 3 labels, got %d", len(labels))
	}
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return validationf(ReasonEmptyLabel, "option labels must be non-empty")
		}
		if _, dup := seen[label]; dup {
			return validationf(ReasonDuplicateLabel, "option label %q appears more than once", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// ValidateTriple checks a guess or answer triple against the active option
// set: three non-empty pairwise-distinct labels, each a configured option.
func ValidateTriple(t Triple, options []string) error {
	for i, label := range t {
		if label == "" {
			return validationf(ReasonInvalidTriple, "pick %d is empty", i+1)
		}
		for j := i + 1; j < len(t); j++ {
			if label == t[j] {
				return validationf(ReasonDuplicateLabel, "label %q picked more than once", label)
			}
		}
		if !containsLabel(options, label) {
			return validationf(ReasonOutOfRangeLabel, "label %q is not in the option set", label)
		}
	}
	return nil
}

func containsLabel(options []string, label string) bool {
	for _, opt := range options {
		if opt == label {
			return true
		}
	}
	return false
}
