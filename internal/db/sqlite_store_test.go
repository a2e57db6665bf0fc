package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/internal/services"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, ""))
	s, err := NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAssessment(id string, at time.Time) *services.Assessment {
	correct := services.TextAnswer("yes")
	return &services.Assessment{
		ID:       id,
		JobTitle: "Backend Engineer",
		Title:    "Go screening " + id,
		Sections: []services.AssessmentSection{{
			ID:    "S1",
			Title: "Basics",
			Questions: []services.Question{{
				ID:            "Q1",
				Type:          services.QuestionSingleChoice,
				Title:         "Used Go?",
				Options:       []services.QuestionOption{{ID: "o1", Label: "Yes", Value: "yes"}, {ID: "o2", Label: "No", Value: "no"}},
				CorrectAnswer: &correct,
				Points:        2,
			}},
		}},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func sampleResponse(id, aid string, at time.Time) *services.AssessmentResponse {
	return &services.AssessmentResponse{
		ID:             id,
		AssessmentID:   aid,
		CandidateName:  "Ada",
		CandidateEmail: "ada@example.com",
		Responses: services.Answers{
			"Q1": services.TextAnswer("yes"),
			"Q2": services.ChoicesAnswer("a", "b"),
			"Q3": services.NumberAnswer(7.5),
		},
		Score:       2,
		MaxScore:    2,
		SubmittedAt: at,
	}
}

func TestSQLiteAssessmentRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	missing, err := s.GetAssessment(ctx, "A1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	a := sampleAssessment("A1", at)
	require.NoError(t, s.AddAssessment(ctx, a))
	assert.Error(t, s.AddAssessment(ctx, a), "duplicate id")

	got, err := s.GetAssessment(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	a.Title = "Renamed"
	a.UpdatedAt = at.Add(time.Minute)
	ok, err := s.UpdateAssessment(ctx, a)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = s.GetAssessment(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	ok, err = s.UpdateAssessment(ctx, sampleAssessment("nope", at))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.AddAssessment(ctx, sampleAssessment("A2", at)))
	list, err := s.ListAssessments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A1", list[0].ID)
}

func TestSQLiteResponsesAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.AddAssessment(ctx, sampleAssessment("A1", at)))

	require.NoError(t, s.PutResponse(ctx, sampleResponse("R2", "A1", at.Add(2*time.Hour))))
	require.NoError(t, s.PutResponse(ctx, sampleResponse("R1", "A1", at.Add(time.Hour))))
	require.NoError(t, s.PutResponse(ctx, sampleResponse("R3", "A1", at.Add(3*time.Hour+500*time.Millisecond))))
	assert.Error(t, s.PutResponse(ctx, sampleResponse("RX", "missing", at)), "unknown assessment")

	r, err := s.GetResponse(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, sampleResponse("R1", "A1", at.Add(time.Hour)), r)

	all, err := s.ListResponses(ctx, "A1", nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"R1", "R2", "R3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	from, to := at.Add(90*time.Minute), at.Add(3*time.Hour)
	ranged, err := s.ListResponses(ctx, "A1", &from, &to)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "R2", ranged[0].ID)

	n, err := s.CountResponses(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := s.DeleteAssessment(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, ok)
	n, err = s.CountResponses(ctx, "A1")
	require.NoError(t, err)
	assert.Zero(t, n)
	gone, err := s.GetResponse(ctx, "R1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	ok, err = s.DeleteAssessment(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteAudit(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []string{"create_assessment", "update_assessment", "submit_response"} {
		require.NoError(t, s.AddAudit(ctx, services.AuditEntry{Time: at.Add(time.Duration(i) * time.Second), Actor: "hr", Action: action, Target: "A1"}))
	}
	latest, err := s.ListAudit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "submit_response", latest[0].Action)
	assert.Equal(t, at.Add(2*time.Second), latest[0].Time)

	all, err := s.ListAudit(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(db, ""))
	require.NoError(t, RunMigrations(db, t.TempDir()), "missing dialect dir falls back to embedded files")
}

func TestLoadMigrationsOrder(t *testing.T) {
	for _, dialect := range []string{DialectSQLite, DialectPostgres} {
		files, err := loadMigrations(dialect, "")
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "001_init.sql", files[0].name)
		assert.Equal(t, "002_audit.sql", files[1].name)
	}
}
