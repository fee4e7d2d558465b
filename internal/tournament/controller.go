package tournament

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/tournament/scoring"
)

// Controller orchestrates the question lifecycle, submissions and scoring.
// It is the only component that mutates State or triggers a scoring pass.
type Controller struct {
	// mu serializes organizer transitions against each other and against
	// submissions. Participant submits take the read side so they can run
	// concurrently; a publish pass therefore observes a stable snapshot.
	mu sync.RWMutex

	state  State
	subs   SubmissionStore
	states StateStore
	engine *scoring.Engine
	opts   Options
	logger zerolog.Logger
}

// Options configures event defaults and the scoring table.
type Options struct {
	DefaultPrompt  string
	DefaultOptions []string
	Scoring        scoring.Config
}

// NewController loads persisted state (seeding the initial record when the
// store is empty) and returns a ready controller.
func NewController(ctx context.Context, store Store, opts Options, logger zerolog.Logger) (*Controller, error) {
	if opts.Scoring == (scoring.Config{}) {
		opts.Scoring = scoring.DefaultConfig()
	}

	c := &Controller{
		subs:   store,
		states: store,
		engine: scoring.NewEngine(opts.Scoring),
		opts:   opts,
		logger: logger.With().Str("component", "tournament").Logger(),
	}

	state, found, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question state: %w", err)
	}
	if !found {
		state = c.initialState()
		if err := store.SaveState(ctx, state); err != nil {
			return nil, fmt.Errorf("seed question state: %w", err)
		}
		c.logger.Info().Int("question_id", state.QuestionID).Msg("seeded initial question state")
	}
	c.state = state
	return c, nil
}

func (c *Controller) initialState() State {
	return State{
		QuestionID: 1,
		Prompt:     c.opts.DefaultPrompt,
		Options:    append([]string(nil), c.opts.DefaultOptions...),
		Phase:      PhaseClosed,
		UpdatedAt:  time.Now().UTC(),
	}
}

// SubmitGuess validates and stores a participant's ranked guess for the
// current question. Resubmission overwrites the earlier guess and zeroes
// its score until the next publish.
func (c *Controller) SubmitGuess(ctx context.Context, questionID int, name string, guess Triple) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationf(ReasonEmptyName, "participant name must be non-empty")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if questionID != c.state.QuestionID {
		return validationf(ReasonSubmissionsClosed, "question %d is not live", questionID)
	}
	if !c.state.AcceptingSubmissions() {
		return validationf(ReasonSubmissionsClosed, "submissions are closed for question %d", questionID)
	}
	if err := ValidateTriple(guess, c.state.Options); err != nil {
		return err
	}

	sub := Submission{
		QuestionID:  questionID,
		Name:        name,
		Guess:       guess,
		Score:       0,
		SubmittedAt: time.Now().UTC(),
	}
	if err := c.subs.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("store submission: %w", err)
	}

	c.logger.Debug().Int("question_id", questionID).Str("name", name).Msg("submission accepted")
	return nil
}

// SetOptions replaces the option set for the current question. Stored
// submissions are left untouched even if they reference removed labels.
func (c *Controller) SetOptions(ctx context.Context, labels []string) error {
	if err := ValidateOptions(labels); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state
	next.Options = append([]string(nil), labels...)
	next.UpdatedAt = time.Now().UTC()
	if err := c.states.SaveState(ctx, next); err != nil {
		return fmt.Errorf("save question state: %w", err)
	}
	c.state = next
	return nil
}

// SetQuestion rotates the event to a new question. The revealed flag is
// always cleared; open decides whether submissions start accepted.
// Submissions of other question ids are not touched.
func (c *Controller) SetQuestion(ctx context.Context, id int, prompt string, options []string, open bool) error {
	if id <= 0 {
		return validationf(ReasonInvalidQuestionID, "question id must be positive, got %d", id)
	}
	if err := ValidateOptions(options); err != nil {
		return err
	}

	phase := PhaseClosed
	if open {
		phase = PhaseOpen
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := State{
		QuestionID: id,
		Prompt:     prompt,
		Options:    append([]string(nil), options...),
		Phase:      phase,
		Correct:    nil,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := c.states.SaveState(ctx, next); err != nil {
		return fmt.Errorf("save question state: %w", err)
	}
	c.state = next

	c.logger.Info().Int("question_id", id).Bool("open", open).Msg("question advanced")
	return nil
}

// OpenSubmissions starts accepting submissions for the current question.
// Reopening after a reveal hides the answer again.
func (c *Controller) OpenSubmissions(ctx context.Context) error {
	return c.setPhase(ctx, PhaseOpen)
}

// CloseSubmissions stops accepting submissions; the answer stays hidden
// until publish. Closing an already closed or revealed question is a no-op.
func (c *Controller) CloseSubmissions(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseOpen {
		return nil
	}
	return c.savePhaseLocked(ctx, PhaseClosed)
}

func (c *Controller) setPhase(ctx context.Context, phase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == phase {
		return nil
	}
	return c.savePhaseLocked(ctx, phase)
}

func (c *Controller) savePhaseLocked(ctx context.Context, phase string) error {
	next := c.state
	next.Phase = phase
	next.UpdatedAt = time.Now().UTC()
	if err := c.states.SaveState(ctx, next); err != nil {
		return fmt.Errorf("save question state: %w", err)
	}
	c.state = next
	return nil
}

// PublishAnswer records the correct triple for the current question, scores
// every stored submission in one atomic pass and reveals the answer.
// Publishing while submissions are open is rejected; republishing after a
// reveal re-scores deterministically (scores are overwritten, not added).
func (c *Controller) PublishAnswer(ctx context.Context, correct Triple) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseOpen {
		return 0, validationf(ReasonSubmissionsStillOpen, "close submissions before publishing the answer")
	}
	if err := ValidateTriple(correct, c.state.Options); err != nil {
		return 0, err
	}

	scored, err := c.subs.ApplyScores(ctx, c.state.QuestionID, func(guess Triple) int {
		return c.engine.Score(scoring.Triple(correct), scoring.Triple(guess))
	})
	if err != nil {
		return 0, fmt.Errorf("apply scores: %w", err)
	}

	next := c.state
	answer := correct
	next.Correct = &answer
	next.Phase = PhaseRevealed
	next.UpdatedAt = time.Now().UTC()
	if err := c.states.SaveState(ctx, next); err != nil {
		return 0, fmt.Errorf("save question state: %w", err)
	}
	c.state = next

	c.logger.Info().
		Int("question_id", next.QuestionID).
		Int("scored", scored).
		Msg("answer published")
	return scored, nil
}

// GetState returns a snapshot of the current question state.
func (c *Controller) GetState(ctx context.Context) State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := c.state
	snapshot.Options = append([]string(nil), c.state.Options...)
	if c.state.Correct != nil {
		answer := *c.state.Correct
		snapshot.Correct = &answer
	}
	return snapshot
}

// GetRanking returns the cumulative leaderboard: total score per name,
// ordered by total descending then name ascending.
func (c *Controller) GetRanking(ctx context.Context) ([]RankingEntry, error) {
	return c.subs.AggregateRanking(ctx)
}

// ListSubmissions returns every submission for a question, for organizer
// views such as loading a participant's guess as the answer shortcut.
func (c *Controller) ListSubmissions(ctx context.Context, questionID int) ([]Submission, error) {
	return c.subs.ListByQuestion(ctx, questionID)
}

// GetSubmission returns one participant's submission for a question, or a
// *NotFoundError when they have not submitted yet.
func (c *Controller) GetSubmission(ctx context.Context, questionID int, name string) (Submission, error) {
	return c.subs.Get(ctx, questionID, name)
}

// ResetAll deletes every submission and restores the initial question state.
func (c *Controller) ResetAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.subs.Reset(ctx); err != nil {
		return fmt.Errorf("reset submissions: %w", err)
	}

	next := c.initialState()
	if err := c.states.SaveState(ctx, next); err != nil {
		return fmt.Errorf("save question state: %w", err)
	}
	c.state = next

	c.logger.Warn().Msg("tournament reset")
	return nil
}
