package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/predictlive/sanrentan/internal/tournament"
)

// Store is the pgx-backed implementation of tournament.Store. Submissions
// live in one row per (question_id, name); the question lifecycle record is
// a single-row table enforced by a CHECK on its id.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Upsert inserts or overwrites the (question_id, name) row. The single
// INSERT ... ON CONFLICT statement lands guess and zeroed score atomically;
// concurrent submits for the same key resolve to last write wins.
func (s *Store) Upsert(ctx context.Context, sub tournament.Submission) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO submissions (question_id, name, rank1, rank2, rank3, score, submitted_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		ON CONFLICT (question_id, name) DO UPDATE
		SET rank1 = EXCLUDED.rank1,
		    rank2 = EXCLUDED.rank2,
		    rank3 = EXCLUDED.rank3,
		    score = 0,
		    submitted_at = EXCLUDED.submitted_at
	`, sub.QuestionID, sub.Name, sub.Guess[0], sub.Guess[1], sub.Guess[2], sub.SubmittedAt)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// scanSubmission scans a row selected as (question_id, name, rank1, rank2,
// rank3, score, submitted_at) into a tournament.Submission.
func scanSubmission(row pgx.Row) (tournament.Submission, error) {
	var sub tournament.Submission
	err := row.Scan(&sub.QuestionID, &sub.Name, &sub.Guess[0], &sub.Guess[1], &sub.Guess[2], &sub.Score, &sub.SubmittedAt)
	if err != nil {
		return tournament.Submission{}, err
	}
	return sub, nil
}

// Get returns the row for (questionID, name) or a *tournament.NotFoundError.
func (s *Store) Get(ctx context.Context, questionID int, name string) (tournament.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT question_id, name, rank1, rank2, rank3, score, submitted_at
		FROM submissions
		WHERE question_id = $1 AND name = $2
	`, questionID, name)

	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return tournament.Submission{}, &tournament.NotFoundError{QuestionID: questionID, Name: name}
	}
	if err != nil {
		return tournament.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// ListByQuestion returns every submission for a question, ordered by name.
func (s *Store) ListByQuestion(ctx context.Context, questionID int) ([]tournament.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT question_id, name, rank1, rank2, rank3, score, submitted_at
		FROM submissions
		WHERE question_id = $1
		ORDER BY name
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := make([]tournament.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ApplyScores locks the question's rows, computes each score in Go and
// writes them back in one transaction, so the pass scores exactly the
// snapshot it read and late submits wait for the row locks.
func (s *Store) ApplyScores(ctx context.Context, questionID int, score func(guess tournament.Triple) int) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin scoring tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT name, rank1, rank2, rank3
		FROM submissions
		WHERE question_id = $1
		FOR UPDATE
	`, questionID)
	if err != nil {
		return 0, fmt.Errorf("snapshot submissions: %w", err)
	}

	type scoredRow struct {
		name  string
		score int
	}
	var updates []scoredRow
	for rows.Next() {
		var name string
		var guess tournament.Triple
		if err := rows.Scan(&name, &guess[0], &guess[1], &guess[2]); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan guess: %w", err)
		}
		updates = append(updates, scoredRow{name: name, score: score(guess)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("snapshot submissions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`
			UPDATE submissions SET score = $1
			WHERE question_id = $2 AND name = $3
		`, u.score, questionID, u.name)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("write scores: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit scoring tx: %w", err)
	}
	return len(updates), nil
}

// AggregateRanking sums scores per name across all questions, ordered by
// total descending then name ascending.
func (s *Store) AggregateRanking(ctx context.Context) ([]tournament.RankingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, COALESCE(SUM(score), 0) AS total
		FROM submissions
		GROUP BY name
		ORDER BY total DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregate ranking: %w", err)
	}
	defer rows.Close()

	entries := make([]tournament.RankingEntry, 0)
	for rows.Next() {
		var entry tournament.RankingEntry
		if err := rows.Scan(&entry.Name, &entry.Total); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Reset deletes all submissions.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM submissions`); err != nil {
		return fmt.Errorf("reset submissions: %w", err)
	}
	return nil
}

// LoadState returns the singleton lifecycle record, found=false when the
// table is empty (fresh database).
func (s *Store) LoadState(ctx context.Context) (tournament.State, bool, error) {
	var (
		state   tournament.State
		correct []string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT question_id, prompt, options, phase, correct, updated_at
		FROM question_state
		WHERE id = 1
	`).Scan(&state.QuestionID, &state.Prompt, &state.Options, &state.Phase, &correct, &state.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return tournament.State{}, false, nil
	}
	if err != nil {
		return tournament.State{}, false, fmt.Errorf("load question state: %w", err)
	}

	if len(correct) == 3 {
		answer := tournament.TripleFromLabels(correct)
		state.Correct = &answer
	}
	return state, true, nil
}

// SaveState overwrites the singleton lifecycle record.
func (s *Store) SaveState(ctx context.Context, state tournament.State) error {
	var correct []string
	if state.Correct != nil {
		correct = state.Correct.Labels()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO question_state (id, question_id, prompt, options, phase, correct, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET question_id = EXCLUDED.question_id,
		    prompt = EXCLUDED.prompt,
		    options = EXCLUDED.options,
		    phase = EXCLUDED.phase,
		    correct = EXCLUDED.correct,
		    updated_at = EXCLUDED.updated_at
	`, state.QuestionID, state.Prompt, state.Options, state.Phase, correct, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save question state: %w", err)
	}
	return nil
}
