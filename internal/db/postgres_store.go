package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentflow/talentflow/internal/api"
	"github.com/talentflow/talentflow/internal/services"
)

// PostgresStore keeps documents and answers in jsonb columns.
type PostgresStore struct {
	pool *pgxpool.Pool
}

type poolExecer struct{ pool *pgxpool.Pool }

func (e poolExecer) ExecContext(ctx context.Context, query string) error {
	_, err := e.pool.Exec(ctx, query)
	return err
}

// OpenPostgres connects, pings and applies the postgres migrations.
func OpenPostgres(ctx context.Context, dsn, migrationsDir string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applyMigrations(ctx, poolExecer{pool: pool}, DialectPostgres, migrationsDir); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("postgres store: %s: %v", prefix, err)
	}
}

func (s *PostgresStore) AddAssessment(ctx context.Context, a *services.Assessment) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, job_title, title, document, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JobTitle, a.Title, doc, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		s.logErr("insert assessment", err)
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateAssessment(ctx context.Context, a *services.Assessment) (bool, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("encode assessment: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE assessments SET job_title = $1, title = $2, document = $3, updated_at = $4 WHERE id = $5`,
		a.JobTitle, a.Title, doc, a.UpdatedAt.UTC(), a.ID)
	if err != nil {
		s.logErr("update assessment", err)
		return false, fmt.Errorf("update assessment %s: %w", a.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteAssessment(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		s.logErr("delete assessment", err)
		return false, fmt.Errorf("delete assessment %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM assessments WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logErr("get assessment", err)
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	var a services.Assessment
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode assessment %s: %w", id, err)
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context) ([]*services.Assessment, error) {
	rows, err := s.pool.Query(ctx, `SELECT document FROM assessments ORDER BY id`)
	if err != nil {
		s.logErr("list assessments", err)
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]*services.Assessment, 0, len(docs))
	for _, doc := range docs {
		var a services.Assessment
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, fmt.Errorf("decode assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}

func (s *PostgresStore) PutResponse(ctx context.Context, r *services.AssessmentResponse) error {
	answers, err := json.Marshal(r.Responses)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessment_responses (`+responseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.AssessmentID, r.CandidateName, r.CandidateEmail, answers, r.Score, r.MaxScore, r.SubmittedAt.UTC())
	if err != nil {
		s.logErr("insert response", err)
		return fmt.Errorf("insert response %s: %w", r.ID, err)
	}
	return nil
}

func scanPgResponse(row pgx.Row) (*services.AssessmentResponse, error) {
	var (
		r       services.AssessmentResponse
		answers []byte
	)
	if err := row.Scan(&r.ID, &r.AssessmentID, &r.CandidateName, &r.CandidateEmail, &answers, &r.Score, &r.MaxScore, &r.SubmittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &r.Responses); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	r.SubmittedAt = r.SubmittedAt.UTC()
	return &r, nil
}

func (s *PostgresStore) GetResponse(ctx context.Context, id string) (*services.AssessmentResponse, error) {
	r, err := scanPgResponse(s.pool.QueryRow(ctx, `SELECT `+responseColumns+` FROM assessment_responses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logErr("get response", err)
		return nil, fmt.Errorf("get response %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresStore) ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	q := `SELECT ` + responseColumns + ` FROM assessment_responses WHERE assessment_id = $1`
	args := []any{assessmentID}
	if from != nil {
		args = append(args, from.UTC())
		q += ` AND submitted_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, to.UTC())
		q += ` AND submitted_at <= $` + strconv.Itoa(len(args))
	}
	q += ` ORDER BY submitted_at, id`
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		s.logErr("list responses", err)
		return nil, fmt.Errorf("list responses of %s: %w", assessmentID, err)
	}
	defer rows.Close()
	out := []*services.AssessmentResponse{}
	for rows.Next() {
		r, err := scanPgResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountResponses(ctx context.Context, assessmentID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessment_responses WHERE assessment_id = $1`, assessmentID).Scan(&n); err != nil {
		s.logErr("count responses", err)
		return 0, fmt.Errorf("count responses of %s: %w", assessmentID, err)
	}
	return n, nil
}

func (s *PostgresStore) AddAudit(ctx context.Context, e services.AuditEntry) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO audit_log (at, actor, action, target, note) VALUES ($1, $2, $3, $4, $5)`,
		e.Time.UTC(), e.Actor, e.Action, e.Target, e.Note)
	if err != nil {
		s.logErr("insert audit", err)
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]services.AuditEntry, error) {
	q := `SELECT at, actor, action, target, note FROM audit_log ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		s.logErr("list audit", err)
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	out := []services.AuditEntry{}
	for rows.Next() {
		var e services.AuditEntry
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.Time = e.Time.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ api.Store = (*PostgresStore)(nil)
