package services

import (
	"regexp"
	"strings"
)

// ValidateAssessment enforces the save-time invariants and reports the first
// violation as an invalid error.
func ValidateAssessment(a *Assessment) error {
	if a == nil {
		return NewInvalidError("assessment required")
	}
	if strings.TrimSpace(a.JobTitle) == "" {
		return NewInvalidError("jobTitle required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return NewInvalidError("title required")
	}
	sectionIDs := map[string]struct{}{}
	questionIDs := map[string]struct{}{}
	for si, sec := range a.Sections {
		if sec.ID == "" {
			return invalidf("section %d: id required", si+1)
		}
		if _, dup := sectionIDs[sec.ID]; dup {
			return invalidf("duplicate section id %s", sec.ID)
		}
		sectionIDs[sec.ID] = struct{}{}
		for _, q := range sec.Questions {
			if q.ID == "" {
				return invalidf("section %s: question id required", sec.ID)
			}
			if _, dup := questionIDs[q.ID]; dup {
				return invalidf("duplicate question id %s", q.ID)
			}
			questionIDs[q.ID] = struct{}{}
			if err := validateQuestion(q); err != nil {
				return err
			}
		}
	}
	return checkDependencies(a)
}

func validateQuestion(q Question) error {
	if !q.Type.Valid() {
		return invalidf("question %s: unknown type %q", q.ID, q.Type)
	}
	if !q.Type.HasOptions() && len(q.Options) > 0 {
		return invalidf("question %s: options are only allowed on choice questions", q.ID)
	}
	values := map[string]struct{}{}
	for _, opt := range q.Options {
		if _, dup := values[opt.Value]; dup {
			return invalidf("question %s: duplicate option value %q", q.ID, opt.Value)
		}
		values[opt.Value] = struct{}{}
	}
	if q.Points < 0 {
		return invalidf("question %s: points must not be negative", q.ID)
	}
	if q.CorrectAnswer != nil && q.Type.Scorable() {
		want := map[QuestionType]AnswerKind{
			QuestionSingleChoice: AnswerText,
			QuestionMultiChoice:  AnswerChoices,
			QuestionNumeric:      AnswerNumber,
		}[q.Type]
		if q.CorrectAnswer.Kind != want {
			return invalidf("question %s: correctAnswer must be a %s value", q.ID, want)
		}
	}
	if v := q.Validation; v != nil {
		if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
			return invalidf("question %s: minLength exceeds maxLength", q.ID)
		}
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			return invalidf("question %s: min exceeds max", q.ID)
		}
		if v.Pattern != "" {
			if _, err := regexp.Compile(v.Pattern); err != nil {
				return invalidf("question %s: invalid pattern: %v", q.ID, err)
			}
		}
	}
	return nil
}

// checkDependencies rejects dependsOn references to unknown questions, to the
// question itself, and any cycle across the whole assessment.
func checkDependencies(a *Assessment) error {
	deps := map[string]string{}
	known := map[string]struct{}{}
	for _, q := range a.Questions() {
		known[q.ID] = struct{}{}
		if q.ConditionalLogic != nil && q.ConditionalLogic.DependsOn != "" {
			deps[q.ID] = q.ConditionalLogic.DependsOn
		}
	}
	for id, dep := range deps {
		if dep == id {
			return invalidf("question %s cannot depend on itself", id)
		}
		if _, ok := known[dep]; !ok {
			return invalidf("question %s depends on unknown question %s", id, dep)
		}
	}
	// Each question has at most one parent, so following the chain either
	// ends or revisits a node.
	for start := range deps {
		seen := map[string]struct{}{start: {}}
		for cur, ok := deps[start]; ok; cur, ok = deps[cur] {
			if _, loop := seen[cur]; loop {
				return invalidf("conditional logic cycle through question %s", start)
			}
			seen[cur] = struct{}{}
		}
	}
	return nil
}
