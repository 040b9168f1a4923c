// internal/store/sqlite.go
package store

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/denken-cbt/backend/internal/domain/examconfig"
	examsession "github.com/denken-cbt/backend/internal/domain/exam_session"
	"github.com/denken-cbt/backend/internal/domain/question"
	"github.com/denken-cbt/backend/internal/domain/statistics"
	wronganswer "github.com/denken-cbt/backend/internal/domain/wrong_answer"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
    id INTEGER PRIMARY KEY,
    category TEXT NOT NULL,
    text TEXT NOT NULL,
    options TEXT NOT NULL,
    correct INTEGER NOT NULL,
    explanation TEXT NOT NULL DEFAULT '',
    image_ref TEXT NOT NULL DEFAULT '',
    weight INTEGER NOT NULL DEFAULT 0,
    standard TEXT NOT NULL DEFAULT '',
    sub_item TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS corrupt_questions (
    question_id INTEGER NOT NULL,
    raw TEXT NOT NULL,
    noted_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS exam_config (
    slot INTEGER PRIMARY KEY CHECK (slot = 1),
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS current_session (
    slot INTEGER PRIMARY KEY CHECK (slot = 1),
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS wrong_answers (
    question_id INTEGER PRIMARY KEY,
    data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    mode TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    user_id TEXT NOT NULL DEFAULT '',
    total INTEGER NOT NULL,
    correct INTEGER NOT NULL,
    wrong INTEGER NOT NULL,
    unanswered INTEGER NOT NULL,
    score INTEGER NOT NULL,
    passed INTEGER NOT NULL,
    auto INTEGER NOT NULL,
    taken_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aggregate (
    slot INTEGER PRIMARY KEY CHECK (slot = 1),
    data TEXT NOT NULL
);
`

// SQLiteStore backs every persistence port of the core: the question
// catalog, the weighting config, the single current-session slot, the
// wrong-answer ledger, and the result log plus rolling aggregate.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLite(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Questions
// ============================================================================

func (s *SQLiteStore) SaveQuestion(q question.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO questions (id, category, text, options, correct, explanation, image_ref, weight, standard, sub_item)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, string(q.Category), q.Text, string(options), q.Correct,
		q.Explanation, q.ImageRef, q.Weight, q.Standard, q.SubItem,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateID
	}
	return err
}

func (s *SQLiteStore) GetQuestion(id int) (question.Question, error) {
	row := s.db.QueryRow(
		`SELECT id, category, text, options, correct, explanation, image_ref, weight, standard, sub_item
		 FROM questions WHERE id = ?`, id)
	q, raw, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return question.Question{}, ErrNotFound
	}
	if err != nil {
		return question.Question{}, err
	}
	if parseErr := parseOptions(&q, raw); parseErr != nil {
		s.quarantine(q.ID, raw, parseErr)
		return question.Question{}, ErrNotFound
	}
	return q, nil
}

func (s *SQLiteStore) ListQuestions() ([]question.Question, error) {
	return s.listQuestions(`SELECT id, category, text, options, correct, explanation, image_ref, weight, standard, sub_item FROM questions ORDER BY id`)
}

func (s *SQLiteStore) ListQuestionsByCategory(cat question.Category) ([]question.Question, error) {
	return s.listQuestions(
		`SELECT id, category, text, options, correct, explanation, image_ref, weight, standard, sub_item
		 FROM questions WHERE category = ? ORDER BY id`, string(cat))
}

// listQuestions tolerates corrupt rows: a question whose options column no
// longer parses is copied to the backup table and skipped, so a damaged
// catalog degrades instead of failing every read.
func (s *SQLiteStore) listQuestions(query string, args ...any) ([]question.Question, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		q, raw, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		if parseErr := parseOptions(&q, raw); parseErr != nil {
			s.quarantine(q.ID, raw, parseErr)
			continue
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) UpdateQuestion(q question.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	result, err := s.db.Exec(
		`UPDATE questions SET category = ?, text = ?, options = ?, correct = ?, explanation = ?,
		 image_ref = ?, weight = ?, standard = ?, sub_item = ? WHERE id = ?`,
		string(q.Category), q.Text, string(options), q.Correct,
		q.Explanation, q.ImageRef, q.Weight, q.Standard, q.SubItem, q.ID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteQuestion(id int) error {
	result, err := s.db.Exec("DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (question.Question, string, error) {
	var q question.Question
	var cat, raw string
	err := r.Scan(&q.ID, &cat, &q.Text, &raw, &q.Correct,
		&q.Explanation, &q.ImageRef, &q.Weight, &q.Standard, &q.SubItem)
	q.Category = question.Category(cat)
	return q, raw, err
}

func parseOptions(q *question.Question, raw string) error {
	return json.Unmarshal([]byte(raw), &q.Options)
}

// quarantine preserves the raw options payload of an unparseable row so a
// catalog repair can recover it later.
func (s *SQLiteStore) quarantine(id int, raw string, cause error) {
	s.logger.Error("corrupt question row quarantined", "question_id", id, "error", cause)
	if _, err := s.db.Exec("INSERT INTO corrupt_questions (question_id, raw) VALUES (?, ?)", id, raw); err != nil {
		s.logger.Error("failed to back up corrupt row", "question_id", id, "error", err)
	}
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// ============================================================================
// Exam config
// ============================================================================

// GetExamConfig returns the stored config, or the documented defaults when
// none has been saved yet. A corrupt stored config also falls back to
// defaults rather than failing.
func (s *SQLiteStore) GetExamConfig() (examconfig.ExamConfig, error) {
	var raw string
	err := s.db.QueryRow("SELECT data FROM exam_config WHERE slot = 1").Scan(&raw)
	if err == sql.ErrNoRows {
		return examconfig.Default(), nil
	}
	if err != nil {
		return examconfig.Default(), err
	}

	var cfg examconfig.ExamConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.logger.Error("corrupt exam config, using defaults", "error", err)
		return examconfig.Default(), nil
	}
	return cfg.Normalize(), nil
}

func (s *SQLiteStore) SaveExamConfig(cfg examconfig.ExamConfig) error {
	data, err := json.Marshal(cfg.Normalize())
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO exam_config (slot, data) VALUES (1, ?) ON CONFLICT (slot) DO UPDATE SET data = excluded.data",
		string(data),
	)
	return err
}

func (s *SQLiteStore) ResetExamConfig() error {
	_, err := s.db.Exec("DELETE FROM exam_config WHERE slot = 1")
	return err
}

// ============================================================================
// Current session (single slot)
// ============================================================================

// GetCurrentSession returns (nil, nil) when no session is stored; absence
// is a valid state, not an error.
func (s *SQLiteStore) GetCurrentSession() (*examsession.Session, error) {
	var raw string
	err := s.db.QueryRow("SELECT data FROM current_session WHERE slot = 1").Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session examsession.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.logger.Error("corrupt stored session discarded", "error", err)
		return nil, nil
	}
	if session.Answers == nil {
		session.Answers = make(map[int]int)
	}
	return &session, nil
}

func (s *SQLiteStore) SaveCurrentSession(session *examsession.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO current_session (slot, data) VALUES (1, ?) ON CONFLICT (slot) DO UPDATE SET data = excluded.data",
		string(data),
	)
	return err
}

func (s *SQLiteStore) ClearCurrentSession() error {
	_, err := s.db.Exec("DELETE FROM current_session WHERE slot = 1")
	return err
}

// ============================================================================
// Wrong-answer ledger
// ============================================================================

func (s *SQLiteStore) GetAllWrongAnswers() ([]wronganswer.Entry, error) {
	rows, err := s.db.Query("SELECT data FROM wrong_answers ORDER BY question_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []wronganswer.Entry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e wronganswer.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			s.logger.Error("corrupt ledger entry skipped", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) UpsertWrongAnswer(e wronganswer.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO wrong_answers (question_id, data) VALUES (?, ?) ON CONFLICT (question_id) DO UPDATE SET data = excluded.data",
		e.QuestionID, string(data),
	)
	return err
}

func (s *SQLiteStore) RemoveWrongAnswer(questionID int) error {
	_, err := s.db.Exec("DELETE FROM wrong_answers WHERE question_id = ?", questionID)
	return err
}

// ============================================================================
// Results and aggregate
// ============================================================================

const timeLayout = time.RFC3339

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) AppendResult(r examsession.Result) error {
	_, err := s.db.Exec(
		`INSERT INTO results (mode, category, user_id, total, correct, wrong, unanswered, score, passed, auto, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(r.Mode), string(r.Category), r.UserID,
		r.Total, r.Correct, r.Wrong, r.Unanswered, r.Score,
		boolInt(r.Passed), boolInt(r.Auto), r.TakenAt.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteStore) ListResults(limit int) ([]examsession.Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT mode, category, user_id, total, correct, wrong, unanswered, score, passed, auto, taken_at
		 FROM results ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []examsession.Result
	for rows.Next() {
		var r examsession.Result
		var mode, cat, takenAt string
		var passed, auto int
		if err := rows.Scan(&mode, &cat, &r.UserID, &r.Total, &r.Correct, &r.Wrong,
			&r.Unanswered, &r.Score, &passed, &auto, &takenAt); err != nil {
			return nil, err
		}
		r.Mode = examsession.Mode(mode)
		r.Category = question.Category(cat)
		r.Passed = passed != 0
		r.Auto = auto != 0
		r.TakenAt = parseTime(takenAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// UpdateAggregate folds a result into the single-row rolling aggregate.
func (s *SQLiteStore) UpdateAggregate(r examsession.Result) error {
	agg, err := s.GetAggregate()
	if err != nil {
		return err
	}
	agg.Apply(r)

	data, err := json.Marshal(agg)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO aggregate (slot, data) VALUES (1, ?) ON CONFLICT (slot) DO UPDATE SET data = excluded.data",
		string(data),
	)
	return err
}

func (s *SQLiteStore) GetAggregate() (statistics.Aggregate, error) {
	var raw string
	err := s.db.QueryRow("SELECT data FROM aggregate WHERE slot = 1").Scan(&raw)
	if err == sql.ErrNoRows {
		return statistics.NewAggregate(), nil
	}
	if err != nil {
		return statistics.NewAggregate(), err
	}

	var agg statistics.Aggregate
	if err := json.Unmarshal([]byte(raw), &agg); err != nil {
		s.logger.Error("corrupt aggregate reset", "error", err)
		return statistics.NewAggregate(), nil
	}
	return agg, nil
}
