package services

import (
	"context"
	"fmt"
	"time"
)

type ExportStore interface {
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*AssessmentResponse, error)
}

const (
	ExportLong      = "long"
	ExportWide      = "wide"
	ExportScore     = "score"
	ExportQuestions = "questions"
)

type ExportParams struct {
	AssessmentID string
	Format       string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

const csvContentType = "text/csv; charset=utf-8"

// ExportCSV renders the assessment's responses, oldest first, or its
// question definitions.
func (s *ExportService) ExportCSV(ctx context.Context, params ExportParams) (*ExportResult, error) {
	if params.AssessmentID == "" {
		return nil, NewInvalidError("assessment id required")
	}
	format := params.Format
	if format == "" {
		format = ExportLong
	}
	switch format {
	case ExportLong, ExportWide, ExportScore, ExportQuestions:
	default:
		return nil, NewInvalidError("unsupported format")
	}
	a, err := s.store.GetAssessment(ctx, params.AssessmentID)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s-%s.csv", a.ID, format)
	if format == ExportQuestions {
		b, err := ExportQuestionsCSV(a)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: filename, ContentType: csvContentType, Data: b}, nil
	}

	rs, err := s.store.ListResponses(ctx, a.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	var b []byte
	switch format {
	case ExportLong:
		b, err = ExportLongCSV(buildLongRows(a, rs))
	case ExportWide:
		ids, columns, cells := buildWideCells(a, rs)
		b, err = ExportWideCSV(ids, columns, cells)
	case ExportScore:
		b, err = ExportScoreCSV(buildScoreRows(rs))
	}
	if err != nil {
		return nil, err
	}
	return &ExportResult{Filename: filename, ContentType: csvContentType, Data: b}, nil
}

func buildLongRows(a *Assessment, rs []*AssessmentResponse) []LongRow {
	out := []LongRow{}
	for _, r := range rs {
		for _, q := range a.Questions() {
			ans, ok := r.Responses[q.ID]
			if !ok {
				continue
			}
			row := LongRow{
				ResponseID:     r.ID,
				CandidateEmail: r.CandidateEmail,
				QuestionID:     q.ID,
				Answer:         ans.String(),
				SubmittedAt:    r.SubmittedAt,
			}
			if correct, graded := IsCorrect(q, ans); graded {
				row.Correct = &correct
			}
			out = append(out, row)
		}
	}
	return out
}

func buildWideCells(a *Assessment, rs []*AssessmentResponse) ([]string, []string, map[string]map[string]string) {
	columns := []string{}
	for _, q := range a.Questions() {
		columns = append(columns, q.ID)
	}
	ids := make([]string, 0, len(rs))
	cells := map[string]map[string]string{}
	for _, r := range rs {
		ids = append(ids, r.ID)
		row := map[string]string{}
		for qid, ans := range r.Responses {
			row[qid] = ans.String()
		}
		cells[r.ID] = row
	}
	return ids, columns, cells
}

func buildScoreRows(rs []*AssessmentResponse) []ScoreRow {
	out := make([]ScoreRow, 0, len(rs))
	for _, r := range rs {
		out = append(out, ScoreRow{
			ResponseID:     r.ID,
			CandidateName:  r.CandidateName,
			CandidateEmail: r.CandidateEmail,
			Score:          r.Score,
			MaxScore:       r.MaxScore,
			SubmittedAt:    r.SubmittedAt,
		})
	}
	return out
}
