package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/talentflow/talentflow/internal/api"
	"github.com/talentflow/talentflow/internal/services"
)

// timeLayout is fixed width so text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", filepath.ToSlash(path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Parse(time.RFC3339Nano, v)
	}
	return t, nil
}

func (s *SQLiteStore) AddAssessment(ctx context.Context, a *services.Assessment) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, job_title, title, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobTitle, a.Title, string(doc), formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		s.logErr("insert assessment", err)
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAssessment(ctx context.Context, a *services.Assessment) (bool, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode assessment: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET job_title = ?, title = ?, document = ?, updated_at = ? WHERE id = ?`,
		a.JobTitle, a.Title, string(doc), formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		s.logErr("update assessment", err)
		return false, fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	return n > 0, nil
}

// DeleteAssessment removes the responses explicitly as well, so the cascade
// holds even on a connection opened without foreign keys.
func (s *SQLiteStore) DeleteAssessment(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM assessment_responses WHERE assessment_id = ?`, id); err != nil {
		s.logErr("delete responses", err)
		return false, fmt.Errorf("delete responses of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete assessment", err)
		return false, fmt.Errorf("delete assessment %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM assessments WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logErr("get assessment", err)
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	var a services.Assessment
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context) ([]*services.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document FROM assessments ORDER BY id`)
	if err != nil {
		s.logErr("list assessments", err)
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()
	out := []*services.Assessment{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		var a services.Assessment
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("decode assessment %s: %w", id, err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PutResponse(ctx context.Context, r *services.AssessmentResponse) error {
	answers, err := json.Marshal(r.Responses)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_responses (id, assessment_id, candidate_name, candidate_email, responses, score, max_score, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.AssessmentID, r.CandidateName, r.CandidateEmail, string(answers), r.Score, r.MaxScore, formatTime(r.SubmittedAt))
	if err != nil {
		s.logErr("insert response", err)
		return fmt.Errorf("insert response %s: %w", r.ID, err)
	}
	return nil
}

const responseColumns = `id, assessment_id, candidate_name, candidate_email, responses, score, max_score, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResponse(sc rowScanner) (*services.AssessmentResponse, error) {
	var (
		r                  services.AssessmentResponse
		answers, submitted string
	)
	if err := sc.Scan(&r.ID, &r.AssessmentID, &r.CandidateName, &r.CandidateEmail, &answers, &r.Score, &r.MaxScore, &submitted); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &r.Responses); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	t, err := parseTime(submitted)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at of %s: %w", r.ID, err)
	}
	r.SubmittedAt = t
	return &r, nil
}

func (s *SQLiteStore) GetResponse(ctx context.Context, id string) (*services.AssessmentResponse, error) {
	r, err := scanResponse(s.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM assessment_responses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logErr("get response", err)
		return nil, fmt.Errorf("get response %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteStore) ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + responseColumns + ` FROM assessment_responses WHERE assessment_id = ?`)
	args := []any{assessmentID}
	if from != nil {
		b.WriteString(` AND submitted_at >= ?`)
		args = append(args, formatTime(*from))
	}
	if to != nil {
		b.WriteString(` AND submitted_at <= ?`)
		args = append(args, formatTime(*to))
	}
	b.WriteString(` ORDER BY submitted_at, id`)
	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		s.logErr("list responses", err)
		return nil, fmt.Errorf("list responses of %s: %w", assessmentID, err)
	}
	defer rows.Close()
	out := []*services.AssessmentResponse{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountResponses(ctx context.Context, assessmentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessment_responses WHERE assessment_id = ?`, assessmentID).Scan(&n)
	if err != nil {
		s.logErr("count responses", err)
		return 0, fmt.Errorf("count responses of %s: %w", assessmentID, err)
	}
	return n, nil
}

func (s *SQLiteStore) AddAudit(ctx context.Context, e services.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_log (at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		formatTime(e.Time), e.Actor, e.Action, e.Target, e.Note)
	if err != nil {
		s.logErr("insert audit", err)
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]services.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT at, actor, action, target, note FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		s.logErr("list audit", err)
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	out := []services.AuditEntry{}
	for rows.Next() {
		var (
			e  services.AuditEntry
			at string
		)
		if err := rows.Scan(&at, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if e.Time, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("parse audit time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var _ api.Store = (*SQLiteStore)(nil)
