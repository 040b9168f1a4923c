// internal/api/exam_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/question"
)

const (
	// FullExamSize is the default question count for full exams.
	FullExamSize = 60
	// DrillSize is the default count for category and review drills.
	DrillSize = 20
)

// ── Request / Response types ────────────────────────────────────────────────

type StartExamRequest struct {
	Mode     string `json:"mode" example:"random"`
	Category string `json:"category,omitempty" example:"machines"`
	Count    int    `json:"count,omitempty" example:"60"`
}

// ExamQuestion is a question as shown during an exam: the correct option
// and the explanation stay server-side until submission.
type ExamQuestion struct {
	ID       int      `json:"id"`
	Category string   `json:"category"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	ImageRef string   `json:"image_ref,omitempty"`
}

type ExamStateResponse struct {
	Mode            string         `json:"mode"`
	Category        string         `json:"category,omitempty"`
	Questions       []ExamQuestion `json:"questions"`
	Answers         map[int]int    `json:"answers"`
	StartedAt       time.Time      `json:"started_at"`
	Resumed         bool           `json:"resumed"`
	RequestedCount  int            `json:"requested_count"`
	SelectedCount   int            `json:"selected_count"`
	UnansweredCount int            `json:"unanswered_count"`
}

type TimeResponse struct {
	ElapsedSeconds   int64          `json:"elapsed_seconds"`
	TimeBoxed        bool           `json:"time_boxed"`
	RemainingSeconds *int64         `json:"remaining_seconds,omitempty"`
	AutoSubmitted    bool           `json:"auto_submitted"`
	Result           *ResultPayload `json:"result,omitempty"`
}

type ResultPayload struct {
	Mode       string            `json:"mode"`
	Category   string            `json:"category,omitempty"`
	Total      int               `json:"total"`
	Correct    int               `json:"correct"`
	Wrong      int               `json:"wrong"`
	Unanswered int               `json:"unanswered"`
	Score      int               `json:"score"`
	Passed     bool              `json:"passed"`
	Auto       bool              `json:"auto"`
	TakenAt    time.Time         `json:"taken_at"`
	Missed     []QuestionPayload `json:"missed,omitempty"`
}

func resultPayload(r examsession.Result) ResultPayload {
	p := ResultPayload{
		Mode:       string(r.Mode),
		Category:   string(r.Category),
		Total:      r.Total,
		Correct:    r.Correct,
		Wrong:      r.Wrong,
		Unanswered: r.Unanswered,
		Score:      r.Score,
		Passed:     r.Passed,
		Auto:       r.Auto,
		TakenAt:    r.TakenAt,
	}
	for _, q := range r.Missed {
		p.Missed = append(p.Missed, payloadFrom(q))
	}
	return p
}

func examState(s *examsession.Session, requested int, resumed bool) ExamStateResponse {
	questions := make([]ExamQuestion, len(s.Questions))
	for i, q := range s.Questions {
		questions[i] = ExamQuestion{
			ID:       q.ID,
			Category: string(q.Category),
			Text:     q.Text,
			Options:  q.Options,
			ImageRef: q.ImageRef,
		}
	}
	return ExamStateResponse{
		Mode:            string(s.Mode),
		Category:        string(s.Category),
		Questions:       questions,
		Answers:         s.Answers,
		StartedAt:       s.StartedAt,
		Resumed:         resumed,
		RequestedCount:  requested,
		SelectedCount:   len(s.Questions),
		UnansweredCount: s.UnansweredCount(),
	}
}

// ── Handlers ────────────────────────────────────────────────────────────────

// startExam begins (or resumes) an exam attempt.
// @Summary      Start an exam
// @Description  Selects questions for the requested mode and starts the
// @Description  session. A persisted session over the same question set and
// @Description  mode is resumed instead. A selected count lower than the
// @Description  requested one signals catalog shortage, not an error.
// @Tags         Exams
// @Accept       json
// @Produce      json
// @Param        body  body      StartExamRequest  true  "Exam to start"
// @Success      201   {object}  ExamStateResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "no questions available"
// @Router       /exams [post]
func (h *Handler) startExam(w http.ResponseWriter, r *http.Request) {
	var req StartExamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode := examsession.Mode(req.Mode)
	if !mode.Valid() {
		respondError(w, http.StatusBadRequest, "mode must be random, timed, category, or review")
		return
	}

	userID := h.userID(w, r)

	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := h.store.GetExamConfig()
	if err != nil {
		h.logger.Error("failed to load config, using defaults", "error", err)
	}

	var (
		selected  []question.Question
		requested int
		cat       question.Category
	)

	switch mode {
	case examsession.ModeRandom, examsession.ModeTimed:
		requested = defaultCount(req.Count, FullExamSize)
		all, err := h.store.ListQuestions()
		if err != nil {
			h.logger.Error("failed to load catalog", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to load catalog")
			return
		}
		selected = h.selector.SelectBalanced(all, requested, cfg)

	case examsession.ModeCategory:
		cat = question.Category(req.Category)
		if !cat.Valid() {
			respondError(w, http.StatusBadRequest, "category drill requires a valid category")
			return
		}
		requested = defaultCount(req.Count, DrillSize)
		all, err := h.store.ListQuestions()
		if err != nil {
			h.logger.Error("failed to load catalog", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to load catalog")
			return
		}
		selected = h.selector.SelectCategory(all, cat, requested, cfg)

	case examsession.ModeReview:
		requested = defaultCount(req.Count, DrillSize)
		for _, e := range h.tracker.PickForReview(requested, nil) {
			selected = append(selected, e.Question)
		}
	}

	if len(selected) == 0 {
		respondError(w, http.StatusConflict, "no questions available for this mode")
		return
	}

	prev := h.machine.Current()
	s, err := h.machine.Start(selected, mode, cat, userID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, examState(s, requested, prev != nil && s == prev))
}

// GET /exams/current
func (h *Handler) getCurrentExam(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.machine.Current()
	if s == nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}
	respondJSON(w, http.StatusOK, examState(s, len(s.Questions), false))
}

type SubmitAnswerRequest struct {
	QuestionID int `json:"question_id" example:"101"`
	Option     int `json:"option" example:"3"`
}

// POST /exams/current/answers
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.machine.Answer(req.QuestionID, req.Option)
	switch {
	case errors.Is(err, examsession.ErrNoSession):
		respondError(w, http.StatusNotFound, "no current exam")
	case errors.Is(err, examsession.ErrUnknownQuestion):
		respondError(w, http.StatusNotFound, "question is not part of this exam")
	case errors.Is(err, examsession.ErrInvalidOption):
		respondError(w, http.StatusBadRequest, "option must be between 1 and 4")
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to record answer")
	default:
		respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
	}
}

// getTime reports elapsed and remaining time. The browser polls this once
// per second; when a time-boxed exam's budget hits zero the poll forces the
// submission and carries the result back.
// @Summary      Query exam timer
// @Tags         Exams
// @Produce      json
// @Success      200  {object}  TimeResponse
// @Failure      404  {object}  map[string]string
// @Router       /exams/current/time [get]
func (h *Handler) getTime(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.machine.Current()
	if s == nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}

	if result, fired := h.machine.Tick(); fired {
		h.syncer.PushResult(result)
		payload := resultPayload(result)
		respondJSON(w, http.StatusOK, TimeResponse{
			TimeBoxed:     true,
			AutoSubmitted: true,
			Result:        &payload,
		})
		return
	}

	now := time.Now()
	resp := TimeResponse{ElapsedSeconds: int64(s.Elapsed(now).Seconds())}
	if rem, boxed := s.Remaining(now); boxed {
		secs := int64(rem.Seconds())
		resp.TimeBoxed = true
		resp.RemainingSeconds = &secs
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /exams/current/time/reset
func (h *Handler) resetTime(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.machine.ResetTime(); err != nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// peekScore grades the session without side effects: the ledger, the
// statistics, and the session itself stay untouched.
// @Summary      Peek at the current score
// @Tags         Exams
// @Produce      json
// @Success      200  {object}  ResultPayload
// @Failure      404  {object}  map[string]string
// @Router       /exams/current/score [get]
func (h *Handler) peekScore(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.machine.Score()
	if err != nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}
	respondJSON(w, http.StatusOK, resultPayload(result))
}

// POST /exams/current/submit
func (h *Handler) submitExam(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.machine.Submit(false)
	if err != nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}

	h.syncer.PushResult(result)
	respondJSON(w, http.StatusOK, resultPayload(result))
}

// saveExam persists the session for the save-then-exit flow; it stays
// resumable.
func (h *Handler) saveExam(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.machine.Save(); err != nil {
		respondError(w, http.StatusNotFound, "no current exam")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DELETE /exams/current
func (h *Handler) discardExam(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.machine.Discard(); err != nil {
		h.logger.Error("failed to discard exam", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to discard exam")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func defaultCount(requested, fallback int) int {
	if requested > 0 {
		return requested
	}
	return fallback
}
