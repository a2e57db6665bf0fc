package services

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DefaultPassThreshold is the share of the maximum score a response needs to pass.
const DefaultPassThreshold = 0.6

const noAnswer = "No answer provided"

type ResultsStore interface {
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	GetResponse(ctx context.Context, id string) (*AssessmentResponse, error)
	ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*AssessmentResponse, error)
}

type ResultsService struct {
	store         ResultsStore
	passThreshold float64
}

type QuestionStats struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Type     QuestionType `json:"type"`
	Answered int          `json:"answered"`
	Graded   bool         `json:"graded"`
	Correct  int          `json:"correct"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ResultsSummary struct {
	AssessmentID   string          `json:"assessmentId"`
	TotalResponses int             `json:"totalResponses"`
	MaxScore       float64         `json:"maxScore"`
	AverageScore   int             `json:"averageScore"`
	PassThreshold  float64         `json:"passThreshold"`
	PassRate       int             `json:"passRate"`
	Histogram      []int           `json:"histogram"`
	Questions      []QuestionStats `json:"questions"`
	Timeseries     []DailyCount    `json:"timeseries"`
	Reliability    float64         `json:"reliability"`
	N              int             `json:"n"`
}

type AnswerDetail struct {
	QuestionID    string       `json:"questionId"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Type          QuestionType `json:"type"`
	Answer        string       `json:"answer"`
	Answered      bool         `json:"answered"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Correct       *bool        `json:"correct,omitempty"`
	Points        float64      `json:"points"`
}

type ResponseDetail struct {
	Response        *AssessmentResponse `json:"response"`
	AssessmentTitle string              `json:"assessmentTitle"`
	JobTitle        string              `json:"jobTitle"`
	Percent         int                 `json:"percent"`
	Passed          bool                `json:"passed"`
	Answers         []AnswerDetail      `json:"answers"`
}

func NewResultsService(store ResultsStore) *ResultsService {
	return &ResultsService{store: store, passThreshold: DefaultPassThreshold}
}

// SetPassThreshold overrides the pass share; values outside (0, 1] are ignored.
func (s *ResultsService) SetPassThreshold(v float64) {
	if v > 0 && v <= 1 {
		s.passThreshold = v
	}
}

func (s *ResultsService) passed(r *AssessmentResponse) bool {
	return r.Score >= r.MaxScore*s.passThreshold
}

func (s *ResultsService) Summary(ctx context.Context, assessmentID string) (*ResultsSummary, error) {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponses(ctx, assessmentID, nil, nil)
	if err != nil {
		return nil, err
	}
	out := &ResultsSummary{
		AssessmentID:   a.ID,
		TotalResponses: len(responses),
		MaxScore:       MaxScore(a),
		PassThreshold:  s.passThreshold,
		Histogram:      make([]int, 10),
		Questions:      []QuestionStats{},
	}

	questions := a.Questions()
	idx := map[string]int{}
	graded := []Question{}
	for i, q := range questions {
		idx[q.ID] = i
		_, g := IsCorrect(q, Answer{})
		out.Questions = append(out.Questions, QuestionStats{ID: q.ID, Title: q.Title, Type: q.Type, Graded: g})
		if g {
			graded = append(graded, q)
		}
	}

	total := 0.0
	passed := 0
	counts := map[string]int{}
	rows := make([][]float64, 0, len(responses))
	for _, r := range responses {
		total += r.Score
		if s.passed(r) {
			passed++
		}
		pct := ScoreResult{Earned: r.Score, Max: r.MaxScore}.Percent()
		bucket := pct / 10
		if bucket > 9 {
			bucket = 9
		}
		if bucket < 0 {
			bucket = 0
		}
		out.Histogram[bucket]++
		counts[r.SubmittedAt.UTC().Format("2006-01-02")]++
		for qid, ans := range r.Responses {
			i, ok := idx[qid]
			if !ok || ans.Empty() {
				continue
			}
			out.Questions[i].Answered++
			if ok, _ := IsCorrect(questions[i], ans); ok {
				out.Questions[i].Correct++
			}
		}
		row := make([]float64, len(graded))
		for j, q := range graded {
			if ok, _ := IsCorrect(q, r.Responses[q.ID]); ok {
				row[j] = q.PointsOrDefault()
			}
		}
		rows = append(rows, row)
	}
	if len(responses) > 0 {
		out.AverageScore = roundInt(total / float64(len(responses)))
		out.PassRate = roundInt(float64(passed) / float64(len(responses)) * 100)
	}
	out.Timeseries = buildTimeseries(counts)
	out.Reliability = Reliability(rows)
	out.N = len(rows)
	return out, nil
}

// Detail renders one response question by question for review.
func (s *ResultsService) Detail(ctx context.Context, responseID string) (*ResponseDetail, error) {
	r, err := s.store.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssessment(ctx, r.AssessmentID)
	if err != nil {
		return nil, err
	}
	out := &ResponseDetail{
		Response:        r,
		AssessmentTitle: a.Title,
		JobTitle:        a.JobTitle,
		Percent:         ScoreResult{Earned: r.Score, Max: r.MaxScore}.Percent(),
		Passed:          s.passed(r),
		Answers:         []AnswerDetail{},
	}
	for _, q := range a.Questions() {
		d := AnswerDetail{
			QuestionID:  q.ID,
			Title:       q.Title,
			Description: q.Description,
			Type:        q.Type,
			Answer:      noAnswer,
			Points:      q.PointsOrDefault(),
		}
		ans, ok := r.Responses[q.ID]
		if ok && !ans.Empty() {
			d.Answered = true
			d.Answer = FormatAnswer(q, ans)
		}
		if q.HasCorrectAnswer() {
			d.CorrectAnswer = FormatAnswer(q, *q.CorrectAnswer)
		}
		if correct, graded := IsCorrect(q, ans); graded {
			d.Correct = &correct
		}
		out.Answers = append(out.Answers, d)
	}
	return out, nil
}

// FormatAnswer renders an answer for people: option labels instead of
// values, the file name for uploads.
func FormatAnswer(q Question, ans Answer) string {
	switch ans.Kind {
	case AnswerText:
		if q.Type.HasOptions() {
			return optionLabel(q, ans.Text)
		}
		if ans.Text == "" {
			return noAnswer
		}
		return ans.Text
	case AnswerChoices:
		labels := make([]string, len(ans.Choices))
		for i, v := range ans.Choices {
			labels[i] = optionLabel(q, v)
		}
		return strings.Join(labels, ", ")
	case AnswerNumber:
		return ans.String()
	case AnswerFile:
		if ans.File != nil && ans.File.Name != "" {
			return ans.File.Name
		}
		return "File uploaded"
	}
	return noAnswer
}

func optionLabel(q Question, value string) string {
	for _, opt := range q.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func buildTimeseries(counts map[string]int) []DailyCount {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DailyCount, 0, len(days))
	for _, d := range days {
		out = append(out, DailyCount{Date: d, Count: counts[d]})
	}
	return out
}
