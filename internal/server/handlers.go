package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/predictlive/sanrentan/internal/leaderboard"
	"github.com/predictlive/sanrentan/internal/logging"
	"github.com/predictlive/sanrentan/internal/tournament"
	httperrors "github.com/predictlive/sanrentan/pkg/http/errors"
)

// Handlers exposes the tournament core over JSON endpoints.
type Handlers struct {
	controller  *tournament.Controller
	leaderboard *leaderboard.Service
	logger      zerolog.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(controller *tournament.Controller, lb *leaderboard.Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		controller:  controller,
		leaderboard: lb,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

type submitRequest struct {
	QuestionID int      `json:"question_id"`
	Name       string   `json:"name"`
	Guess      []string `json:"guess"`
}

// SubmitGuess handles POST /v1/submissions.
func (h *Handlers) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}

	err := h.controller.SubmitGuess(r.Context(), req.QuestionID, req.Name, tournament.TripleFromLabels(req.Guess))
	if err != nil {
		submissionsTotal.WithLabelValues("rejected").Inc()
		h.respondDomainError(w, r, err, httperrors.ErrCodeSubmitFailed)
		return
	}

	submissionsTotal.WithLabelValues("accepted").Inc()
	// An upsert resets the stored score, so a snapshot taken after a reveal
	// must not outlive it.
	h.leaderboard.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"accepted": true})
}

// GetState handles GET /v1/state.
func (h *Handlers) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.GetState(r.Context()))
}

// GetRanking handles GET /v1/ranking.
func (h *Handlers) GetRanking(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Ranking(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("ranking fetch failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeRankingFailed, "could not compute ranking")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranking": entries})
}

// ListSubmissions handles GET /v1/submissions?question_id=N[&name=X].
// With a name it returns that participant's single submission (404 when they
// have not submitted yet); without it, every submission for the question.
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.Atoi(r.URL.Query().Get("question_id"))
	if err != nil || questionID <= 0 {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeMissingField, "question_id must be a positive integer")
		return
	}

	if name := r.URL.Query().Get("name"); name != "" {
		sub, err := h.controller.GetSubmission(r.Context(), questionID, name)
		if err != nil {
			h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
			return
		}
		writeJSON(w, http.StatusOK, sub)
		return
	}

	subs, err := h.controller.ListSubmissions(r.Context(), questionID)
	if err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

type setQuestionRequest struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Open    bool     `json:"open"`
}

// SetQuestion handles POST /v1/organizer/question.
func (h *Handlers) SetQuestion(w http.ResponseWriter, r *http.Request) {
	var req setQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}

	if err := h.controller.SetQuestion(r.Context(), req.ID, req.Prompt, req.Options, req.Open); err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

type setOptionsRequest struct {
	Options []string `json:"options"`
}

// SetOptions handles POST /v1/organizer/options.
func (h *Handlers) SetOptions(w http.ResponseWriter, r *http.Request) {
	var req setOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}

	if err := h.controller.SetOptions(r.Context(), req.Options); err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

// OpenSubmissions handles POST /v1/organizer/open.
func (h *Handlers) OpenSubmissions(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.OpenSubmissions(r.Context()); err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

// CloseSubmissions handles POST /v1/organizer/close.
func (h *Handlers) CloseSubmissions(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.CloseSubmissions(r.Context()); err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeInternalError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

type publishRequest struct {
	Correct []string `json:"correct"`
}

// PublishAnswer handles POST /v1/organizer/publish.
func (h *Handlers) PublishAnswer(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed JSON body")
		return
	}

	scored, err := h.controller.PublishAnswer(r.Context(), tournament.TripleFromLabels(req.Correct))
	if err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodePublishFailed)
		return
	}

	answersPublishedTotal.Inc()
	submissionsScored.Add(float64(scored))
	h.leaderboard.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true, "scored_count": scored})
}

// ResetAll handles POST /v1/organizer/reset.
func (h *Handlers) ResetAll(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.ResetAll(r.Context()); err != nil {
		h.respondDomainError(w, r, err, httperrors.ErrCodeResetFailed)
		return
	}
	h.leaderboard.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

func (h *Handlers) respondDomainError(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	if verr, ok := tournament.AsValidation(err); ok {
		httperrors.RespondValidationError(w, verr.Reason, verr.Message)
		return
	}
	if tournament.IsNotFound(err) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
		return
	}
	logger := logging.FromContext(r.Context())
	logger.Error().Err(err).Msg("request failed")
	httperrors.RespondError(w, http.StatusInternalServerError, fallbackCode, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
