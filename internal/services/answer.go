package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type AnswerKind string

const (
	AnswerText    AnswerKind = "text"
	AnswerChoices AnswerKind = "choices"
	AnswerNumber  AnswerKind = "number"
	AnswerFile    AnswerKind = "file"
)

// FileRef records an uploaded file by reference only.
type FileRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"type,omitempty"`
}

// Answer is a candidate's value for one question. Exactly one payload field
// is meaningful, selected by Kind.
type Answer struct {
	Kind    AnswerKind
	Text    string
	Choices []string
	Number  float64
	File    *FileRef
}

// Answers maps question id to answer.
type Answers map[string]Answer

func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }
func ChoicesAnswer(vals ...string) Answer {
	return Answer{Kind: AnswerChoices, Choices: append([]string{}, vals...)}
}
func NumberAnswer(n float64) Answer { return Answer{Kind: AnswerNumber, Number: n} }
func FileAnswer(f FileRef) Answer   { return Answer{Kind: AnswerFile, File: &f} }

func (a Answer) Clone() Answer {
	out := a
	if a.Choices != nil {
		out.Choices = append([]string{}, a.Choices...)
	}
	if a.File != nil {
		f := *a.File
		out.File = &f
	}
	return out
}

// String renders the answer the way substring conditions compare it.
func (a Answer) String() string {
	switch a.Kind {
	case AnswerText:
		return a.Text
	case AnswerChoices:
		return strings.Join(a.Choices, ",")
	case AnswerNumber:
		return strconv.FormatFloat(a.Number, 'f', -1, 64)
	case AnswerFile:
		if a.File != nil {
			return a.File.Name
		}
	}
	return ""
}

// Empty reports whether the answer carries no usable value.
func (a Answer) Empty() bool {
	switch a.Kind {
	case AnswerText:
		return strings.TrimSpace(a.Text) == ""
	case AnswerChoices:
		return len(a.Choices) == 0
	case AnswerNumber:
		return false
	case AnswerFile:
		return a.File == nil || a.File.Name == ""
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerText:
		return json.Marshal(a.Text)
	case AnswerChoices:
		if a.Choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Choices)
	case AnswerNumber:
		return json.Marshal(a.Number)
	case AnswerFile:
		return json.Marshal(a.File)
	}
	return []byte("null"), nil
}

// UnmarshalJSON infers the kind from the JSON shape. It is only used for
// stored documents; inbound answers go through DecodeAnswer.
func (a *Answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case '[':
		var vals []string
		if err := json.Unmarshal(b, &vals); err != nil {
			return err
		}
		*a = ChoicesAnswer(vals...)
	case '{':
		var f FileRef
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*a = FileAnswer(f)
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("answer: unsupported value %s", string(b))
		}
		*a = NumberAnswer(n)
	}
	return nil
}

// DecodeAnswer parses raw against the declared type of q.
func DecodeAnswer(q Question, raw json.RawMessage) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Answer{}, errNoAnswer
	}
	switch q.Type {
	case QuestionSingleChoice, QuestionShortText, QuestionLongText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Answer{}, NewInvalidError(fmt.Sprintf("question %s expects a string answer", q.ID))
		}
		return TextAnswer(s), nil
	case QuestionMultiChoice:
		var vals []string
		if err := json.Unmarshal(raw, &vals); err != nil {
			var single string
			if err2 := json.Unmarshal(raw, &single); err2 != nil {
				return Answer{}, NewInvalidError(fmt.Sprintf("question %s expects a list of values", q.ID))
			}
			vals = []string{single}
		}
		return ChoicesAnswer(vals...), nil
	case QuestionNumeric:
		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return NumberAnswer(n), nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			// ParseFloat accepts "NaN" and "Inf", which JSON cannot store.
			v, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if perr == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
				return NumberAnswer(v), nil
			}
		}
		return Answer{}, NewInvalidError(fmt.Sprintf("question %s expects a number", q.ID))
	case QuestionFileUpload:
		var f FileRef
		if err := json.Unmarshal(raw, &f); err == nil && f.Name != "" {
			return FileAnswer(f), nil
		}
		var name string
		if err := json.Unmarshal(raw, &name); err == nil && name != "" {
			return FileAnswer(FileRef{Name: name}), nil
		}
		return Answer{}, NewInvalidError(fmt.Sprintf("question %s expects a file reference", q.ID))
	}
	return Answer{}, NewInvalidError("unknown question type: " + string(q.Type))
}
