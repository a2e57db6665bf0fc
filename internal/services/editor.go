package services

import (
	"fmt"
	"time"
)

// Editor applies builder edits to assessments. Every method returns a new
// value and leaves its input untouched; UpdatedAt is always moved forward.
type Editor struct {
	now   func() time.Time
	newID func() string
}

func NewEditor() *Editor {
	return &Editor{
		now:   func() time.Time { return time.Now().UTC() },
		newID: newID,
	}
}

type AssessmentPatch struct {
	Title       *string `json:"title,omitempty"`
	JobTitle    *string `json:"jobTitle,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SectionPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type OptionPatch struct {
	Label *string `json:"label,omitempty"`
	Value *string `json:"value,omitempty"`
}

// begin clones a and stamps the clone with a strictly later UpdatedAt.
func (e *Editor) begin(a *Assessment) *Assessment {
	if a == nil {
		a = NewAssessment(e.now())
	}
	out := a.Clone()
	ts := e.now()
	if !ts.After(a.UpdatedAt) {
		ts = a.UpdatedAt.Add(time.Nanosecond)
	}
	out.UpdatedAt = ts
	return out
}

func (e *Editor) UpdateDetails(a *Assessment, p AssessmentPatch) *Assessment {
	out := e.begin(a)
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.JobTitle != nil {
		out.JobTitle = *p.JobTitle
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out
}

func (e *Editor) AddSection(a *Assessment) *Assessment {
	out := e.begin(a)
	out.Sections = append(out.Sections, AssessmentSection{
		ID:        e.newID(),
		Title:     fmt.Sprintf("Section %d", len(out.Sections)+1),
		Questions: []Question{},
	})
	return out
}

func (e *Editor) UpdateSection(a *Assessment, sectionID string, p SectionPatch) *Assessment {
	out := e.begin(a)
	for i := range out.Sections {
		if out.Sections[i].ID != sectionID {
			continue
		}
		if p.Title != nil {
			out.Sections[i].Title = *p.Title
		}
		if p.Description != nil {
			out.Sections[i].Description = *p.Description
		}
	}
	return out
}

func (e *Editor) RemoveSection(a *Assessment, sectionID string) *Assessment {
	out := e.begin(a)
	kept := make([]AssessmentSection, 0, len(out.Sections))
	for _, sec := range out.Sections {
		if sec.ID != sectionID {
			kept = append(kept, sec)
		}
	}
	out.Sections = kept
	dropDanglingConditions(out)
	return out
}

func (e *Editor) AddQuestion(a *Assessment, sectionID string) *Assessment {
	out := e.begin(a)
	e.withSection(out, sectionID, func(sec *AssessmentSection) {
		sec.Questions = append(sec.Questions, Question{
			ID:     e.newID(),
			Type:   QuestionShortText,
			Title:  "New Question",
			Points: 1,
		})
	})
	return out
}

// UpdateQuestion replaces the question wholesale, keeping its id. It refuses
// an unknown type and any conditional logic that points at the question
// itself or closes a dependency cycle; the input is returned in that case.
func (e *Editor) UpdateQuestion(a *Assessment, sectionID, questionID string, q Question) (*Assessment, error) {
	if !q.Type.Valid() {
		return a, NewInvalidError("unknown question type: " + string(q.Type))
	}
	q = q.Clone()
	q.ID = questionID
	normalizeOptions(&q)
	out := e.begin(a)
	found := false
	e.withSection(out, sectionID, func(sec *AssessmentSection) {
		for i := range sec.Questions {
			if sec.Questions[i].ID == questionID {
				sec.Questions[i] = q
				found = true
			}
		}
	})
	if found {
		if err := checkDependencies(out); err != nil {
			return a, err
		}
	}
	return out, nil
}

func (e *Editor) RemoveQuestion(a *Assessment, sectionID, questionID string) *Assessment {
	out := e.begin(a)
	e.withSection(out, sectionID, func(sec *AssessmentSection) {
		kept := make([]Question, 0, len(sec.Questions))
		for _, q := range sec.Questions {
			if q.ID != questionID {
				kept = append(kept, q)
			}
		}
		sec.Questions = kept
	})
	dropDanglingConditions(out)
	return out
}

func (e *Editor) AddOption(a *Assessment, sectionID, questionID string) *Assessment {
	out := e.begin(a)
	e.withQuestion(out, sectionID, questionID, func(q *Question) {
		n := len(q.Options) + 1
		q.Options = append(q.Options, QuestionOption{
			ID:    e.newID(),
			Label: fmt.Sprintf("Option %d", n),
			Value: fmt.Sprintf("option-%d", n),
		})
	})
	return out
}

// UpdateOption applies p to one option. A new label without an explicit
// value re-derives the value with Slugify.
func (e *Editor) UpdateOption(a *Assessment, sectionID, questionID, optionID string, p OptionPatch) *Assessment {
	out := e.begin(a)
	e.withQuestion(out, sectionID, questionID, func(q *Question) {
		for i := range q.Options {
			if q.Options[i].ID != optionID {
				continue
			}
			if p.Label != nil {
				q.Options[i].Label = *p.Label
				q.Options[i].Value = Slugify(*p.Label)
			}
			if p.Value != nil {
				q.Options[i].Value = *p.Value
			}
		}
	})
	return out
}

func (e *Editor) RemoveOption(a *Assessment, sectionID, questionID, optionID string) *Assessment {
	out := e.begin(a)
	e.withQuestion(out, sectionID, questionID, func(q *Question) {
		kept := make([]QuestionOption, 0, len(q.Options))
		for _, opt := range q.Options {
			if opt.ID != optionID {
				kept = append(kept, opt)
			}
		}
		q.Options = kept
	})
	return out
}

func (e *Editor) withSection(a *Assessment, sectionID string, fn func(*AssessmentSection)) {
	for i := range a.Sections {
		if a.Sections[i].ID == sectionID {
			fn(&a.Sections[i])
		}
	}
}

func (e *Editor) withQuestion(a *Assessment, sectionID, questionID string, fn func(*Question)) {
	e.withSection(a, sectionID, func(sec *AssessmentSection) {
		for i := range sec.Questions {
			if sec.Questions[i].ID == questionID {
				fn(&sec.Questions[i])
			}
		}
	})
}

// dropDanglingConditions clears conditional logic whose dependsOn no longer
// names a question, so removals never leave the assessment invalid.
func dropDanglingConditions(a *Assessment) {
	known := map[string]struct{}{}
	for _, q := range a.Questions() {
		known[q.ID] = struct{}{}
	}
	for i := range a.Sections {
		for j := range a.Sections[i].Questions {
			q := &a.Sections[i].Questions[j]
			if q.ConditionalLogic == nil || q.ConditionalLogic.DependsOn == "" {
				continue
			}
			if _, ok := known[q.ConditionalLogic.DependsOn]; !ok {
				q.ConditionalLogic = nil
			}
		}
	}
}

// normalizeOptions keeps options present exactly for choice questions.
func normalizeOptions(q *Question) {
	if !q.Type.HasOptions() {
		q.Options = nil
		return
	}
	if q.Options == nil {
		q.Options = []QuestionOption{}
	}
}
