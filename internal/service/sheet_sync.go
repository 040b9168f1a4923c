// internal/service/sheet_sync.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/question"
	"github.com/denken-cbt/backend/internal/id"
	"github.com/denken-cbt/backend/internal/worker"
)

// SheetSyncService pushes completed results and bulk question rows to the
// external spreadsheet-backed API. Delivery is strictly best-effort: jobs
// run on a worker pool so submissions never wait on the network, and a
// failed delivery is logged and dropped. An empty endpoint disables the
// service entirely.
type SheetSyncService struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	pool     *worker.Pool[error]
}

// NewSheetSyncService creates the service and starts a goroutine draining
// delivery outcomes into the log.
func NewSheetSyncService(endpoint string, logger *slog.Logger) *SheetSyncService {
	s := &SheetSyncService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		pool:     worker.NewPool[error](2, 16),
	}
	go s.drain()
	return s
}

// Enabled reports whether an endpoint is configured.
func (s *SheetSyncService) Enabled() bool {
	return s.endpoint != ""
}

// resultRow is the row shape the spreadsheet API expects for one result.
type resultRow struct {
	TakenAt  string `json:"taken_at"`
	Mode     string `json:"mode"`
	Category string `json:"category,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Total    int    `json:"total"`
	Correct  int    `json:"correct"`
	Score    int    `json:"score"`
	Passed   bool   `json:"passed"`
}

// PushResult enqueues one completed result for delivery.
func (s *SheetSyncService) PushResult(r examsession.Result) {
	if !s.Enabled() {
		return
	}
	row := resultRow{
		TakenAt:  r.TakenAt.UTC().Format(time.RFC3339),
		Mode:     string(r.Mode),
		Category: string(r.Category),
		UserID:   r.UserID,
		Total:    r.Total,
		Correct:  r.Correct,
		Score:    r.Score,
		Passed:   r.Passed,
	}
	s.pool.Submit(id.GenerateID(), func() error {
		return s.post("/results", row)
	})
}

// PushQuestions enqueues a bulk export of the question catalog.
func (s *SheetSyncService) PushQuestions(questions []question.Question) {
	if !s.Enabled() {
		return
	}
	s.pool.Submit(id.GenerateID(), func() error {
		return s.post("/questions", questions)
	})
}

// post delivers one payload. It uses context.Background because deliveries
// run asynchronously and must not be cancelled when the originating HTTP
// request ends.
func (s *SheetSyncService) post(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sheet API returned %s", resp.Status)
	}
	return nil
}

func (s *SheetSyncService) drain() {
	for res := range s.pool.Results() {
		if res.Output != nil {
			s.logger.Warn("sheet sync delivery failed", "job_id", res.JobID, "error", res.Output)
		}
	}
}

// Close stops accepting deliveries and lets queued ones finish.
func (s *SheetSyncService) Close() {
	s.pool.Close()
}
