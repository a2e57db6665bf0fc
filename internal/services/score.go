package services

import "sort"

type ScoreResult struct {
	Earned float64 `json:"earned"`
	Max    float64 `json:"max"`
}

// Percent is earned over max as a whole-number percentage; zero when max is zero.
func (r ScoreResult) Percent() int {
	if r.Max <= 0 {
		return 0
	}
	return roundInt(r.Earned / r.Max * 100)
}

// Score grades answers against every scorable question that has a correct
// answer. Questions hidden at submission time still count towards Max.
func Score(a *Assessment, answers Answers) ScoreResult {
	var res ScoreResult
	for _, q := range a.Questions() {
		if !q.Type.Scorable() || !q.HasCorrectAnswer() {
			continue
		}
		points := q.PointsOrDefault()
		res.Max += points
		if correct, _ := IsCorrect(q, answers[q.ID]); correct {
			res.Earned += points
		}
	}
	return res
}

// MaxScore is the Max half of Score without needing answers.
func MaxScore(a *Assessment) float64 {
	return Score(a, nil).Max
}

// IsCorrect compares one answer with the question's correct answer. graded is
// false for free-text, file and ungraded questions.
func IsCorrect(q Question, ans Answer) (correct, graded bool) {
	if !q.HasCorrectAnswer() {
		return false, false
	}
	want := *q.CorrectAnswer
	switch q.Type {
	case QuestionSingleChoice:
		return ans.Kind == AnswerText && want.Kind == AnswerText && ans.Text == want.Text, true
	case QuestionNumeric:
		return ans.Kind == AnswerNumber && want.Kind == AnswerNumber && ans.Number == want.Number, true
	case QuestionMultiChoice:
		var got []string
		if ans.Kind == AnswerChoices {
			got = ans.Choices
		}
		return want.Kind == AnswerChoices && sameChoices(got, want.Choices), true
	case QuestionShortText, QuestionLongText, QuestionFileUpload:
		return false, false
	}
	return false, false
}

// sameChoices sorts copies of both slices and compares them element-wise.
// Duplicates are significant.
func sameChoices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string{}, a...)
	y := append([]string{}, b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func roundInt(f float64) int {
	if f < 0 {
		return -int(-f + 0.5)
	}
	return int(f + 0.5)
}
