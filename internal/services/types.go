package services

import (
	"strings"
	"time"
)

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFileUpload   QuestionType = "file-upload"
)

var questionTypes = []QuestionType{
	QuestionSingleChoice,
	QuestionMultiChoice,
	QuestionShortText,
	QuestionLongText,
	QuestionNumeric,
	QuestionFileUpload,
}

// ParseQuestionType returns an invalid error for anything outside the six known types.
func ParseQuestionType(s string) (QuestionType, error) {
	for _, t := range questionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", NewInvalidError("unknown question type: " + s)
}

func (t QuestionType) Valid() bool {
	_, err := ParseQuestionType(string(t))
	return err == nil
}

// Scorable reports whether answers to this type are graded automatically.
func (t QuestionType) Scorable() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice, QuestionNumeric:
		return true
	}
	return false
}

func (t QuestionType) HasOptions() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

func (t QuestionType) IsText() bool {
	return t == QuestionShortText || t == QuestionLongText
}

type QuestionOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type ValidationRule struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

type Condition string

const (
	ConditionEquals    Condition = "equals"
	ConditionNotEquals Condition = "not-equals"
	ConditionContains  Condition = "contains"
)

type ConditionalLogic struct {
	DependsOn string    `json:"dependsOn,omitempty"`
	Condition Condition `json:"condition,omitempty"`
	Value     string    `json:"value,omitempty"`
}

type Question struct {
	ID               string            `json:"id"`
	Type             QuestionType      `json:"type"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Required         bool              `json:"required"`
	Options          []QuestionOption  `json:"options,omitempty"`
	Validation       *ValidationRule   `json:"validation,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty"`
	CorrectAnswer    *Answer           `json:"correctAnswer,omitempty"`
	Points           float64           `json:"points,omitempty"`
}

// PointsOrDefault treats unset (zero) points as one.
func (q Question) PointsOrDefault() float64 {
	if q.Points == 0 {
		return 1
	}
	return q.Points
}

// HasCorrectAnswer reports whether the question can be graded.
func (q Question) HasCorrectAnswer() bool {
	if q.CorrectAnswer == nil {
		return false
	}
	if q.CorrectAnswer.Kind == AnswerText {
		return q.CorrectAnswer.Text != ""
	}
	return true
}

type AssessmentSection struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

type Assessment struct {
	ID          string              `json:"id"`
	JobTitle    string              `json:"jobTitle"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Sections    []AssessmentSection `json:"sections"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Questions returns every question across all sections in display order.
func (a *Assessment) Questions() []Question {
	if a == nil {
		return nil
	}
	out := []Question{}
	for _, sec := range a.Sections {
		out = append(out, sec.Questions...)
	}
	return out
}

func (a *Assessment) FindQuestion(id string) (Question, bool) {
	if a == nil {
		return Question{}, false
	}
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

func (a *Assessment) FindSection(id string) (AssessmentSection, bool) {
	if a == nil {
		return AssessmentSection{}, false
	}
	for _, sec := range a.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return AssessmentSection{}, false
}

// Clone deep-copies the assessment so edits never share slices or pointers.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Sections = make([]AssessmentSection, len(a.Sections))
	for i, sec := range a.Sections {
		out.Sections[i] = sec.clone()
	}
	return &out
}

func (s AssessmentSection) clone() AssessmentSection {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]QuestionOption{}, q.Options...)
	}
	if q.Validation != nil {
		v := *q.Validation
		if v.MinLength != nil {
			n := *v.MinLength
			v.MinLength = &n
		}
		if v.MaxLength != nil {
			n := *v.MaxLength
			v.MaxLength = &n
		}
		if v.Min != nil {
			n := *v.Min
			v.Min = &n
		}
		if v.Max != nil {
			n := *v.Max
			v.Max = &n
		}
		out.Validation = &v
	}
	if q.ConditionalLogic != nil {
		cl := *q.ConditionalLogic
		out.ConditionalLogic = &cl
	}
	if q.CorrectAnswer != nil {
		ca := q.CorrectAnswer.Clone()
		out.CorrectAnswer = &ca
	}
	return out
}

type AssessmentResponse struct {
	ID             string    `json:"id"`
	AssessmentID   string    `json:"assessmentId"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	Responses      Answers   `json:"responses"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"maxScore"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

// NewAssessment returns an empty assessment stamped with now.
func NewAssessment(now time.Time) *Assessment {
	return &Assessment{
		ID:        newID(),
		Sections:  []AssessmentSection{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewQuestion builds a question of the given type with the builder defaults.
func NewQuestion(typ string) (Question, error) {
	t, err := ParseQuestionType(typ)
	if err != nil {
		return Question{}, err
	}
	q := Question{ID: newID(), Type: t, Title: "New Question", Points: 1}
	if t.HasOptions() {
		q.Options = []QuestionOption{}
	}
	return q, nil
}

// NewOption derives the option value from its label.
func NewOption(label string) QuestionOption {
	return QuestionOption{ID: newID(), Label: label, Value: Slugify(label)}
}

// Slugify lowercases s and replaces every whitespace run with a single hyphen.
// Leading and trailing whitespace is trimmed first.
func Slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
