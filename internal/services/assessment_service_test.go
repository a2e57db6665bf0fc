package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssessmentService(store AssessmentStore, now time.Time) *AssessmentService {
	svc := NewAssessmentService(store)
	svc.now = func() time.Time { return now }
	svc.editor = testEditor(now)
	return svc
}

func TestAssessmentCreate(t *testing.T) {
	store := newMemStore()
	now := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	svc := newTestAssessmentService(store, now)

	a, err := svc.Create(context.Background(), []byte(`{
		"jobTitle": "Data Engineer",
		"title": "SQL basics",
		"sections": [{"title": "Warm-up", "questions": [
			{"type": "single-choice", "title": "Pick", "options": [{"label": "A", "value": "a"}], "correctAnswer": "a"}
		]}]
	}`), "hr@example.com")
	require.NoError(t, err)

	assert.Equal(t, now, a.CreatedAt)
	assert.Equal(t, now, a.UpdatedAt)
	assert.NotEmpty(t, a.ID)
	q := a.Sections[0].Questions[0]
	assert.NotEmpty(t, a.Sections[0].ID)
	assert.NotEmpty(t, q.ID)
	assert.NotEmpty(t, q.Options[0].ID)
	assert.Equal(t, TextAnswer("a"), *q.CorrectAnswer)

	stored, err := store.GetAssessment(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Title, stored.Title)
	require.Len(t, store.audit, 1)
	assert.Equal(t, "create_assessment", store.audit[0].Action)
}

func TestAssessmentCreateRejects(t *testing.T) {
	svc := newTestAssessmentService(newMemStore(), time.Now())

	_, err := svc.Create(context.Background(), []byte(`{"title":"x"}`), "hr")
	assert.True(t, IsInvalid(err))

	_, err = svc.Create(context.Background(), []byte(`{"jobTitle":"x","title":"y","sections":[{"questions":[
		{"id":"q1","type":"short-text","conditionalLogic":{"dependsOn":"q1"}}]}]}`), "hr")
	assert.True(t, IsInvalid(err))
}

func TestAssessmentCreateDuplicateID(t *testing.T) {
	store := newMemStore(assessmentWith())
	svc := newTestAssessmentService(store, time.Now())

	_, err := svc.Create(context.Background(), []byte(`{"id":"A1","jobTitle":"x","title":"y"}`), "hr")
	assert.True(t, IsConflict(err), "got %v", err)
	assert.Equal(t, "Go screening", store.assessments["A1"].Title)
	assert.Empty(t, store.audit)

	a, err := svc.Create(context.Background(), []byte(`{"id":"A2","jobTitle":"x","title":"y"}`), "hr")
	require.NoError(t, err)
	assert.Equal(t, "A2", a.ID)
}

func TestAssessmentGetNotFound(t *testing.T) {
	svc := newTestAssessmentService(newMemStore(), time.Now())
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	_, err = svc.Get(context.Background(), "")
	assert.True(t, IsInvalid(err))
}

func seedList() *memStore {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	titles := []struct{ title, job string }{
		{"Go fundamentals", "Backend Engineer"},
		{"React basics", "Frontend Engineer"},
		{"SQL joins", "Data Engineer"},
		{"Concurrency in Go", "Backend Engineer"},
		{"CSS layout", "Frontend Engineer"},
	}
	store := newMemStore()
	for i, tt := range titles {
		a := &Assessment{
			ID:        fmt.Sprintf("A%d", i+1),
			Title:     tt.title,
			JobTitle:  tt.job,
			Sections:  []AssessmentSection{},
			CreatedAt: base.AddDate(0, 0, i),
			UpdatedAt: base.AddDate(0, 1, -i),
		}
		store.assessments[a.ID] = a
	}
	return store
}

func ids(list []*Assessment) []string {
	out := []string{}
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestAssessmentList(t *testing.T) {
	svc := newTestAssessmentService(seedList(), time.Now())
	ctx := context.Background()
	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		p     ListParams
		want  []string
		total int
	}{
		{"default newest first", ListParams{}, []string{"A5", "A4", "A3", "A2", "A1"}, 5},
		{"search title case-insensitive", ListParams{Search: "go"}, []string{"A4", "A1"}, 2},
		{"search job title", ListParams{Search: "frontend"}, []string{"A5", "A2"}, 2},
		{"job filter", ListParams{JobTitle: "Backend Engineer", SortOrder: "asc"}, []string{"A1", "A4"}, 2},
		{"job filter all", ListParams{JobTitle: "all"}, []string{"A5", "A4", "A3", "A2", "A1"}, 5},
		{"sort title asc", ListParams{SortBy: SortTitle, SortOrder: "asc"}, []string{"A4", "A5", "A1", "A2", "A3"}, 5},
		{"sort updated desc", ListParams{SortBy: SortUpdatedAt}, []string{"A1", "A2", "A3", "A4", "A5"}, 5},
		{"page 2", ListParams{Page: 2, PageSize: 2}, []string{"A3", "A2"}, 5},
		{"page past end", ListParams{Page: 9, PageSize: 2}, []string{}, 5},
		{"date range", ListParams{DateFrom: &from, DateTo: &to, SortOrder: "asc"}, []string{"A2", "A3", "A4"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.List(ctx, tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Data))
			assert.Equal(t, tt.total, res.Total)
		})
	}

	res, err := svc.List(ctx, ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, res.PageSize)

	_, err = svc.List(ctx, ListParams{SortBy: "score"})
	assert.True(t, IsInvalid(err))
	_, err = svc.List(ctx, ListParams{SortOrder: "up"})
	assert.True(t, IsInvalid(err))
}

func TestAssessmentUpdate(t *testing.T) {
	a := assessmentWith(Question{ID: "Q1", Type: QuestionShortText})
	store := newMemStore(a)
	now := a.UpdatedAt.Add(time.Hour)
	svc := newTestAssessmentService(store, now)

	out, err := svc.Update(context.Background(), "A1", []byte(`{"title":"Renamed","id":"other"}`), "hr")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Title)
	assert.Equal(t, "A1", out.ID)
	assert.Equal(t, a.CreatedAt, out.CreatedAt)
	assert.Equal(t, now, out.UpdatedAt)
	assert.Equal(t, a.Sections, out.Sections)

	out, err = svc.Update(context.Background(), "A1", []byte(`{"sections":[{"title":"Only","questions":[{"type":"numeric"}]}]}`), "hr")
	require.NoError(t, err)
	require.Len(t, out.Sections, 1)
	assert.NotEmpty(t, out.Sections[0].Questions[0].ID)
	assert.Equal(t, "Only", store.assessments["A1"].Sections[0].Title)
}

func TestAssessmentUpdateRefusedWithResponses(t *testing.T) {
	a := assessmentWith(Question{ID: "Q1", Type: QuestionShortText})
	store := newMemStore(a)
	store.responses["R1"] = &AssessmentResponse{ID: "R1", AssessmentID: "A1"}
	svc := newTestAssessmentService(store, time.Now())

	_, err := svc.Update(context.Background(), "A1", []byte(`{"title":"Renamed"}`), "hr")
	assert.True(t, IsConflict(err))
	assert.Equal(t, "Go screening", store.assessments["A1"].Title)
}

func TestAssessmentEditLeavesStateOnFailure(t *testing.T) {
	a := assessmentWith(Question{ID: "Q1", Type: QuestionShortText})
	store := newMemStore(a)
	store.putErr = NewPersistenceError("update assessment", errors.New("disk full"))
	svc := newTestAssessmentService(store, a.UpdatedAt.Add(time.Minute))

	_, err := svc.Edit(context.Background(), "A1", "hr", func(cur *Assessment) (*Assessment, error) {
		return svc.Editor().AddSection(cur), nil
	})
	assert.True(t, IsPersistence(err))
	assert.Len(t, store.assessments["A1"].Sections, 1)

	store.putErr = nil
	_, err = svc.Edit(context.Background(), "A1", "hr", func(cur *Assessment) (*Assessment, error) {
		return svc.Editor().UpdateDetails(cur, AssessmentPatch{Title: ptr("")}), nil
	})
	assert.True(t, IsInvalid(err))
	assert.Equal(t, "Go screening", store.assessments["A1"].Title)

	out, err := svc.Edit(context.Background(), "A1", "hr", func(cur *Assessment) (*Assessment, error) {
		return svc.Editor().AddSection(cur), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Section 2", out.Sections[1].Title)
}

func TestAssessmentDeleteCascades(t *testing.T) {
	store := newMemStore(assessmentWith())
	store.responses["R1"] = &AssessmentResponse{ID: "R1", AssessmentID: "A1"}
	store.responses["R2"] = &AssessmentResponse{ID: "R2", AssessmentID: "other"}
	svc := newTestAssessmentService(store, time.Now())

	require.NoError(t, svc.Delete(context.Background(), "A1", "hr"))
	assert.Empty(t, store.assessments)
	assert.Len(t, store.responses, 1)

	assert.True(t, IsNotFound(svc.Delete(context.Background(), "A1", "hr")))
}

func TestTotalPoints(t *testing.T) {
	a := assessmentWith(
		choiceQuestion("Q1", QuestionSingleChoice, nil, 0, "a"),
		Question{ID: "Q2", Type: QuestionNumeric, Points: 2.5},
		Question{ID: "Q3", Type: QuestionLongText, Points: 10},
	)
	assert.Equal(t, 3.5, TotalPoints(a))
}
