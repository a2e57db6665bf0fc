package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEditor(now time.Time) *Editor {
	n := 0
	return &Editor{
		now: func() time.Time { return now },
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func twoSections() *Assessment {
	a := assessmentWith(Question{ID: "Q1", Type: QuestionShortText, Title: "Name"})
	a.Sections = append(a.Sections, AssessmentSection{
		ID:    "S2",
		Title: "Section 2",
		Questions: []Question{
			choiceQuestion("Q2", QuestionSingleChoice, nil, 1, "a", "b"),
		},
	})
	return a
}

func TestAddSection(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(time.Minute))

	out := e.AddSection(a)

	require.Len(t, out.Sections, 3)
	sec := out.Sections[2]
	assert.Equal(t, "Section 3", sec.Title)
	assert.Equal(t, "id-1", sec.ID)
	assert.NotNil(t, sec.Questions)
	assert.Empty(t, sec.Questions)
	assert.True(t, out.UpdatedAt.After(a.UpdatedAt))
	assert.Len(t, a.Sections, 2)
}

func TestUpdatedAtStrictlyLaterWithStoppedClock(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(-time.Hour))

	out := e.AddSection(a)
	again := e.RemoveSection(out, "missing")

	assert.True(t, out.UpdatedAt.After(a.UpdatedAt))
	assert.True(t, again.UpdatedAt.After(out.UpdatedAt))
}

func TestRemoveQuestionMissingIsNoop(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(time.Minute))

	out := e.RemoveQuestion(a, "S1", "Q2")

	assert.Equal(t, a.Sections, out.Sections)
	assert.True(t, out.UpdatedAt.After(a.UpdatedAt))

	out = e.RemoveQuestion(a, "nope", "Q1")
	assert.Equal(t, a.Sections, out.Sections)
}

func TestRemoveQuestion(t *testing.T) {
	a := twoSections()
	out := testEditor(a.UpdatedAt).RemoveQuestion(a, "S1", "Q1")
	assert.Empty(t, out.Sections[0].Questions)
	assert.Len(t, a.Sections[0].Questions, 1)
}

func TestRemovalClearsDanglingConditions(t *testing.T) {
	a := twoSections()
	a.Sections[1].Questions[0].ConditionalLogic = &ConditionalLogic{DependsOn: "Q1", Condition: ConditionEquals, Value: "x"}
	e := testEditor(a.UpdatedAt.Add(time.Minute))

	out := e.RemoveQuestion(a, "S1", "Q1")
	assert.Nil(t, out.Sections[1].Questions[0].ConditionalLogic)
	assert.NoError(t, ValidateAssessment(out))
	require.NotNil(t, a.Sections[1].Questions[0].ConditionalLogic)

	out = e.RemoveSection(a, "S1")
	require.Len(t, out.Sections, 1)
	assert.Nil(t, out.Sections[0].Questions[0].ConditionalLogic)
	assert.NoError(t, ValidateAssessment(out))

	out = e.RemoveSection(a, "S2")
	assert.NoError(t, ValidateAssessment(out))
	out = e.RemoveOption(a, "S2", "Q2", "opt-a")
	assert.NotNil(t, out.Sections[1].Questions[0].ConditionalLogic)
}

func TestAddQuestionDefaults(t *testing.T) {
	a := twoSections()
	out := testEditor(a.UpdatedAt).AddQuestion(a, "S1")

	require.Len(t, out.Sections[0].Questions, 2)
	q := out.Sections[0].Questions[1]
	assert.Equal(t, QuestionShortText, q.Type)
	assert.Equal(t, "New Question", q.Title)
	assert.False(t, q.Required)
	assert.Equal(t, 1.0, q.Points)
}

func TestUpdateDetailsAndSection(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(time.Second))

	out := e.UpdateDetails(a, AssessmentPatch{Title: ptr("Platform screening")})
	assert.Equal(t, "Platform screening", out.Title)
	assert.Equal(t, a.JobTitle, out.JobTitle)

	out = e.UpdateSection(out, "S2", SectionPatch{Description: ptr("Choices")})
	assert.Equal(t, "Choices", out.Sections[1].Description)
	assert.Equal(t, "Section 2", out.Sections[1].Title)
	assert.Equal(t, "Go screening", a.Title)
}

func TestUpdateQuestion(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(time.Second))

	repl := Question{
		ID:      "ignored",
		Type:    QuestionNumeric,
		Title:   "Years of Go",
		Options: []QuestionOption{{ID: "o", Label: "x", Value: "x"}},
	}
	out, err := e.UpdateQuestion(a, "S2", "Q2", repl)
	require.NoError(t, err)

	q := out.Sections[1].Questions[0]
	assert.Equal(t, "Q2", q.ID)
	assert.Equal(t, QuestionNumeric, q.Type)
	assert.Nil(t, q.Options)
	assert.Equal(t, QuestionSingleChoice, a.Sections[1].Questions[0].Type)

	out, err = e.UpdateQuestion(out, "S2", "Q2", Question{Type: QuestionMultiChoice})
	require.NoError(t, err)
	assert.NotNil(t, out.Sections[1].Questions[0].Options)
}

func TestUpdateQuestionRejects(t *testing.T) {
	a := twoSections()
	a.Sections[1].Questions[0].ConditionalLogic = &ConditionalLogic{DependsOn: "Q1", Condition: ConditionEquals, Value: "x"}
	e := testEditor(a.UpdatedAt.Add(time.Second))

	tests := []struct {
		name    string
		section string
		id      string
		q       Question
	}{
		{"unknown type", "S1", "Q1", Question{Type: "essay"}},
		{"self reference", "S1", "Q1", Question{Type: QuestionShortText, ConditionalLogic: &ConditionalLogic{DependsOn: "Q1"}}},
		{"cycle", "S1", "Q1", Question{Type: QuestionShortText, ConditionalLogic: &ConditionalLogic{DependsOn: "Q2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.UpdateQuestion(a, tt.section, tt.id, tt.q)
			require.Error(t, err)
			assert.True(t, IsInvalid(err))
			assert.Same(t, a, out)
		})
	}
}

func TestOptions(t *testing.T) {
	a := twoSections()
	e := testEditor(a.UpdatedAt.Add(time.Second))

	out := e.AddOption(a, "S2", "Q2")
	opts := out.Sections[1].Questions[0].Options
	require.Len(t, opts, 3)
	assert.Equal(t, "Option 3", opts[2].Label)
	assert.Equal(t, "option-3", opts[2].Value)

	out = e.UpdateOption(out, "S2", "Q2", opts[2].ID, OptionPatch{Label: ptr("  Senior  Engineer ")})
	got := out.Sections[1].Questions[0].Options[2]
	assert.Equal(t, "  Senior  Engineer ", got.Label)
	assert.Equal(t, "senior-engineer", got.Value)

	out = e.UpdateOption(out, "S2", "Q2", got.ID, OptionPatch{Label: ptr("Staff"), Value: ptr("l7")})
	assert.Equal(t, "l7", out.Sections[1].Questions[0].Options[2].Value)

	out = e.RemoveOption(out, "S2", "Q2", "opt-a")
	values := []string{}
	for _, o := range out.Sections[1].Questions[0].Options {
		values = append(values, o.Value)
	}
	assert.Equal(t, []string{"b", "l7"}, values)
	assert.Len(t, a.Sections[1].Questions[0].Options, 2)
}

func TestEditorNeverMutatesInput(t *testing.T) {
	a := twoSections()
	before := a.Clone()
	e := testEditor(a.UpdatedAt.Add(time.Second))

	e.AddSection(a)
	e.RemoveSection(a, "S1")
	e.AddQuestion(a, "S1")
	e.RemoveQuestion(a, "S2", "Q2")
	e.AddOption(a, "S2", "Q2")
	e.UpdateOption(a, "S2", "Q2", "opt-a", OptionPatch{Label: ptr("Z")})
	e.RemoveOption(a, "S2", "Q2", "opt-b")
	_, _ = e.UpdateQuestion(a, "S2", "Q2", Question{Type: QuestionLongText})
	e.UpdateDetails(a, AssessmentPatch{JobTitle: ptr("SRE")})

	assert.Equal(t, before, a)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Yes":              "yes",
		"Very Likely":      "very-likely",
		"  Two   spaces  ": "two-spaces",
		"tab\tand\nline":   "tab-and-line",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
