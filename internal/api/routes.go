// internal/api/routes.go
package api

import "net/http"

// RegisterRoutes attaches every API route to the mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Questions
	mux.HandleFunc("POST /questions", h.createQuestion)
	mux.HandleFunc("GET /questions", h.listQuestions)
	mux.HandleFunc("GET /questions/{questionID}", h.getQuestion)
	mux.HandleFunc("PUT /questions/{questionID}", h.updateQuestion)
	mux.HandleFunc("DELETE /questions/{questionID}", h.deleteQuestion)

	// Weighting configuration
	mux.HandleFunc("GET /config", h.getConfig)
	mux.HandleFunc("PUT /config", h.updateConfig)
	mux.HandleFunc("POST /config/reset", h.resetConfig)

	// Exam session
	mux.HandleFunc("POST /exams", h.startExam)
	mux.HandleFunc("GET /exams/current", h.getCurrentExam)
	mux.HandleFunc("POST /exams/current/answers", h.submitAnswer)
	mux.HandleFunc("GET /exams/current/time", h.getTime)
	mux.HandleFunc("POST /exams/current/time/reset", h.resetTime)
	mux.HandleFunc("GET /exams/current/score", h.peekScore)
	mux.HandleFunc("POST /exams/current/submit", h.submitExam)
	mux.HandleFunc("POST /exams/current/save", h.saveExam)
	mux.HandleFunc("DELETE /exams/current", h.discardExam)

	// Wrong-answer ledger
	mux.HandleFunc("GET /review", h.listReview)

	// Results and statistics
	mux.HandleFunc("GET /results", h.listResults)
	mux.HandleFunc("GET /stats", h.getStats)

	// Bulk rows for the spreadsheet surface
	mux.HandleFunc("GET /export/questions", h.exportQuestions)
	mux.HandleFunc("POST /import/questions", h.importQuestions)
}
