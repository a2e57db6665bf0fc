package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

type LongRow struct {
	ResponseID     string
	CandidateEmail string
	QuestionID     string
	Answer         string
	Correct        *bool
	SubmittedAt    time.Time
}

type ScoreRow struct {
	ResponseID     string
	CandidateName  string
	CandidateEmail string
	Score          float64
	MaxScore       float64
	SubmittedAt    time.Time
}

// ExportLongCSV renders one row per answer.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	return writeCSV([]string{"response_id", "candidate_email", "question_id", "answer", "correct", "submitted_at"}, len(rows), func(i int) []string {
		r := rows[i]
		return []string{r.ResponseID, r.CandidateEmail, r.QuestionID, r.Answer, formatCorrect(r.Correct), r.SubmittedAt.UTC().Format(time.RFC3339)}
	})
}

// ExportWideCSV renders one row per response and one column per question.
// columns fixes the question order; cells maps response id to question id to value.
func ExportWideCSV(responseIDs, columns []string, cells map[string]map[string]string) ([]byte, error) {
	header := append([]string{"response_id"}, columns...)
	return writeCSV(header, len(responseIDs), func(i int) []string {
		rid := responseIDs[i]
		row := make([]string, 0, len(header))
		row = append(row, rid)
		for _, qid := range columns {
			row = append(row, cells[rid][qid])
		}
		return row
	})
}

// ExportScoreCSV renders the score of each response.
func ExportScoreCSV(rows []ScoreRow) ([]byte, error) {
	return writeCSV([]string{"response_id", "candidate_name", "candidate_email", "score", "max_score", "percent", "submitted_at"}, len(rows), func(i int) []string {
		r := rows[i]
		pct := ScoreResult{Earned: r.Score, Max: r.MaxScore}.Percent()
		return []string{
			r.ResponseID, r.CandidateName, r.CandidateEmail,
			formatNumber(r.Score), formatNumber(r.MaxScore), strconv.Itoa(pct),
			r.SubmittedAt.UTC().Format(time.RFC3339),
		}
	})
}

// ExportQuestionsCSV renders the assessment definition to aid review.
func ExportQuestionsCSV(a *Assessment) ([]byte, error) {
	type entry struct {
		section string
		pos     int
		q       Question
	}
	var entries []entry
	for _, sec := range a.Sections {
		for i, q := range sec.Questions {
			entries = append(entries, entry{section: sec.Title, pos: i + 1, q: q})
		}
	}
	header := []string{
		"section", "position", "question_id", "type", "title", "required", "points",
		"options", "correct_answer", "depends_on", "condition", "condition_value",
	}
	return writeCSV(header, len(entries), func(i int) []string {
		e := entries[i]
		q := e.q
		labels := make([]string, len(q.Options))
		for j, opt := range q.Options {
			labels[j] = opt.Label + "=" + opt.Value
		}
		correct := ""
		if q.HasCorrectAnswer() {
			correct = q.CorrectAnswer.String()
		}
		var dep, cond, val string
		if cl := q.ConditionalLogic; cl != nil {
			dep, cond, val = cl.DependsOn, string(cl.Condition), cl.Value
		}
		return []string{
			e.section, strconv.Itoa(e.pos), q.ID, string(q.Type), q.Title,
			strconv.FormatBool(q.Required), formatNumber(q.PointsOrDefault()),
			strings.Join(labels, " | "), correct, dep, cond, val,
		}
	})
}

func writeCSV(header []string, n int, row func(int) []string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatCorrect(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
