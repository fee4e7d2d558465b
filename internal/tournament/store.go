package tournament

import "context"

// SubmissionStore persists one row per (question id, participant name).
type SubmissionStore interface {
	// Upsert inserts or overwrites the row for (sub.QuestionID, sub.Name).
	// The guess and a zeroed score must land together; concurrent calls for
	// the same key resolve to last write wins.
	Upsert(ctx context.Context, sub Submission) error

	// Get returns the row for (questionID, name) or a *NotFoundError.
	Get(ctx context.Context, questionID int, name string) (Submission, error)

	// ListByQuestion returns every submission for a question. Ordering is
	// implementation-defined.
	ListByQuestion(ctx context.Context, questionID int) ([]Submission, error)

	// ApplyScores overwrites the score of every submission for questionID
	// with score(guess), as one atomic pass over a point-in-time snapshot.
	// Returns the number of rows scored.
	ApplyScores(ctx context.Context, questionID int, score func(guess Triple) int) (int, error)

	// AggregateRanking sums scores across all questions grouped by name,
	// ordered by total descending then name ascending.
	AggregateRanking(ctx context.Context) ([]RankingEntry, error)

	// Reset deletes all rows.
	Reset(ctx context.Context) error
}

// StateStore persists the singleton question lifecycle record.
type StateStore interface {
	// LoadState returns the stored state, or found=false when none exists yet.
	LoadState(ctx context.Context) (State, bool, error)

	// SaveState overwrites the singleton record.
	SaveState(ctx context.Context, state State) error
}

// Store combines both persistence concerns; the concrete drivers implement it.
type Store interface {
	SubmissionStore
	StateStore
}
