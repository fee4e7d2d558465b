package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/predictlive/sanrentan/internal/tournament"
)

type submissionKey struct {
	questionID int
	name       string
}

// Store is an in-memory implementation of tournament.Store, used by the
// memory storage driver and the test suite. Data does not survive restarts.
type Store struct {
	mu         sync.RWMutex
	rows       map[submissionKey]tournament.Submission
	state      tournament.State
	stateSaved bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		rows: make(map[submissionKey]tournament.Submission),
	}
}

// Upsert inserts or overwrites the (question id, name) row. The map write is
// a single critical section, so guess and zeroed score land together.
func (s *Store) Upsert(ctx context.Context, sub tournament.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.Score = 0
	s.rows[submissionKey{sub.QuestionID, sub.Name}] = sub
	return nil
}

// Get returns the row for (questionID, name) or a *tournament.NotFoundError.
func (s *Store) Get(ctx context.Context, questionID int, name string) (tournament.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.rows[submissionKey{questionID, name}]
	if !ok {
		return tournament.Submission{}, &tournament.NotFoundError{QuestionID: questionID, Name: name}
	}
	return sub, nil
}

// ListByQuestion returns every submission for a question, ordered by name.
func (s *Store) ListByQuestion(ctx context.Context, questionID int) ([]tournament.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]tournament.Submission, 0)
	for key, sub := range s.rows {
		if key.questionID == questionID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

// ApplyScores overwrites the score of every submission for questionID under
// one lock, so the pass sees a stable snapshot.
func (s *Store) ApplyScores(ctx context.Context, questionID int, score func(guess tournament.Triple) int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scored := 0
	for key, sub := range s.rows {
		if key.questionID != questionID {
			continue
		}
		sub.Score = score(sub.Guess)
		s.rows[key] = sub
		scored++
	}
	return scored, nil
}

// AggregateRanking sums scores per name across all questions, ordered by
// total descending then name ascending.
func (s *Store) AggregateRanking(ctx context.Context) ([]tournament.RankingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int)
	for key, sub := range s.rows {
		totals[key.name] += sub.Score
	}

	entries := make([]tournament.RankingEntry, 0, len(totals))
	for name, total := range totals {
		entries = append(entries, tournament.RankingEntry{Name: name, Total: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Reset deletes all submissions.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[submissionKey]tournament.Submission)
	return nil
}

// LoadState returns the stored singleton state, if one was saved.
func (s *Store) LoadState(ctx context.Context) (tournament.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.stateSaved {
		return tournament.State{}, false, nil
	}
	return s.state, true, nil
}

// SaveState overwrites the singleton state.
func (s *Store) SaveState(ctx context.Context, state tournament.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.stateSaved = true
	return nil
}
