package services

import "strings"

// IsVisible decides whether q is shown given the answers collected so far.
// A question gated on an unanswered prerequisite is hidden. Unknown
// conditions fail open.
func IsVisible(q Question, answers Answers) bool {
	cl := q.ConditionalLogic
	if cl == nil {
		return true
	}
	dep, ok := answers[cl.DependsOn]
	if !ok || dep.Kind == "" {
		return false
	}
	switch cl.Condition {
	case ConditionEquals:
		return answerEquals(dep, cl.Value)
	case ConditionNotEquals:
		return !answerEquals(dep, cl.Value)
	case ConditionContains:
		return strings.Contains(dep.String(), cl.Value)
	default:
		return true
	}
}

// answerEquals is strict: only a text answer can equal the scalar value.
func answerEquals(a Answer, value string) bool {
	switch a.Kind {
	case AnswerText:
		return a.Text == value
	case AnswerChoices, AnswerNumber, AnswerFile:
		return false
	}
	return false
}

// VisibleQuestions returns the ids of the questions shown for answers, in
// display order.
func VisibleQuestions(a *Assessment, answers Answers) []string {
	out := []string{}
	for _, q := range a.Questions() {
		if IsVisible(q, answers) {
			out = append(out, q.ID)
		}
	}
	return out
}

// PruneHidden drops answers to questions that are hidden. Removing one answer
// can hide its dependants, so it repeats until nothing changes. The input map
// is not modified.
func PruneHidden(a *Assessment, answers Answers) Answers {
	out := make(Answers, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	questions := a.Questions()
	for changed := true; changed; {
		changed = false
		for _, q := range questions {
			if _, ok := out[q.ID]; !ok {
				continue
			}
			if !IsVisible(q, out) {
				delete(out, q.ID)
				changed = true
			}
		}
	}
	return out
}
