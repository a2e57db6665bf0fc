package services

import (
	"context"
	"sort"
	"time"
)

func ptr[T any](v T) *T { return &v }

func choiceQuestion(id string, typ QuestionType, correct *Answer, points float64, values ...string) Question {
	q := Question{ID: id, Type: typ, Title: id, CorrectAnswer: correct, Points: points, Options: []QuestionOption{}}
	for _, v := range values {
		q.Options = append(q.Options, QuestionOption{ID: "opt-" + v, Label: "Label " + v, Value: v})
	}
	return q
}

func assessmentWith(questions ...Question) *Assessment {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &Assessment{
		ID:        "A1",
		JobTitle:  "Backend Engineer",
		Title:     "Go screening",
		Sections:  []AssessmentSection{{ID: "S1", Title: "Section 1", Questions: questions}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// memStore is a hand-written fake covering every store interface in this package.
type memStore struct {
	assessments map[string]*Assessment
	responses   map[string]*AssessmentResponse
	audit       []AuditEntry
	putErr      error
}

func newMemStore(as ...*Assessment) *memStore {
	s := &memStore{assessments: map[string]*Assessment{}, responses: map[string]*AssessmentResponse{}}
	for _, a := range as {
		s.assessments[a.ID] = a.Clone()
	}
	return s
}

func (s *memStore) GetAssessment(_ context.Context, id string) (*Assessment, error) {
	a, ok := s.assessments[id]
	if !ok {
		return nil, NewNotFoundError("assessment not found")
	}
	return a.Clone(), nil
}

func (s *memStore) ListAssessments(context.Context) ([]*Assessment, error) {
	out := make([]*Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) AddAssessment(_ context.Context, a *Assessment) error {
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *memStore) UpdateAssessment(_ context.Context, a *Assessment) error {
	if s.putErr != nil {
		return s.putErr
	}
	if _, ok := s.assessments[a.ID]; !ok {
		return NewNotFoundError("assessment not found")
	}
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *memStore) DeleteAssessment(_ context.Context, id string) error {
	delete(s.assessments, id)
	for rid, r := range s.responses {
		if r.AssessmentID == id {
			delete(s.responses, rid)
		}
	}
	return nil
}

func (s *memStore) CountResponses(_ context.Context, assessmentID string) (int, error) {
	n := 0
	for _, r := range s.responses {
		if r.AssessmentID == assessmentID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) PutResponse(_ context.Context, r *AssessmentResponse) error {
	if s.putErr != nil {
		return s.putErr
	}
	cp := *r
	s.responses[r.ID] = &cp
	return nil
}

func (s *memStore) GetResponse(_ context.Context, id string) (*AssessmentResponse, error) {
	r, ok := s.responses[id]
	if !ok {
		return nil, NewNotFoundError("response not found")
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListResponses(_ context.Context, assessmentID string, from, to *time.Time) ([]*AssessmentResponse, error) {
	out := []*AssessmentResponse{}
	for _, r := range s.responses {
		if r.AssessmentID != assessmentID {
			continue
		}
		if from != nil && r.SubmittedAt.Before(*from) {
			continue
		}
		if to != nil && r.SubmittedAt.After(*to) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *memStore) AddAudit(_ context.Context, e AuditEntry) {
	s.audit = append(s.audit, e)
}
