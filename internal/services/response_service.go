package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ResponseStore abstracts persistence operations required by ResponseService.
type ResponseStore interface {
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	PutResponse(ctx context.Context, r *AssessmentResponse) error
	GetResponse(ctx context.Context, id string) (*AssessmentResponse, error)
	ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*AssessmentResponse, error)
	AddAudit(ctx context.Context, entry AuditEntry)
}

// InviteClaims is the verified content of an invite token.
type InviteClaims struct {
	AssessmentID   string
	CandidateName  string
	CandidateEmail string
}

// SubmitRequest transports the sanitized handler input into the service layer.
type SubmitRequest struct {
	AssessmentID   string
	CandidateName  string
	CandidateEmail string
	Answers        map[string]json.RawMessage
	Invite         *InviteClaims
}

// Preview is what a rendering collaborator needs while a candidate is
// answering: the currently visible questions and the running score.
type Preview struct {
	Visible []string    `json:"visible"`
	Score   ScoreResult `json:"score"`
	Percent int         `json:"percent"`
}

var (
	// ErrInviteRequired is returned when submissions must carry an invite and none was given.
	ErrInviteRequired = errors.New("invite required")
	// ErrInviteMismatch flags an invite issued for another assessment.
	ErrInviteMismatch = errors.New("invite does not match assessment")

	errNoAnswer = errors.New("no answer")
)

// ResponseService hosts the submission workflow: decode, prune hidden
// answers, validate, score, persist.
type ResponseService struct {
	store         ResponseStore
	now           func() time.Time
	idGenerator   func() string
	requireInvite bool
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: newID,
	}
}

// RequireInvite makes Submit refuse requests without verified invite claims.
func (s *ResponseService) RequireInvite(on bool) { s.requireInvite = on }

func (s *ResponseService) Submit(ctx context.Context, req SubmitRequest) (*AssessmentResponse, error) {
	a, err := s.store.GetAssessment(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.CandidateName)
	email := strings.TrimSpace(req.CandidateEmail)
	if req.Invite != nil {
		if req.Invite.AssessmentID != a.ID {
			return nil, &ServiceError{Code: ErrorUnauthorized, Message: "submission refused", Err: ErrInviteMismatch}
		}
		if req.Invite.CandidateName != "" {
			name = req.Invite.CandidateName
		}
		if req.Invite.CandidateEmail != "" {
			email = req.Invite.CandidateEmail
		}
	} else if s.requireInvite {
		return nil, &ServiceError{Code: ErrorUnauthorized, Message: "submission refused", Err: ErrInviteRequired}
	}
	if name == "" {
		return nil, NewInvalidError("candidateName required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewInvalidError("valid candidateEmail required")
	}

	answers, err := decodeAnswers(a, req.Answers)
	if err != nil {
		return nil, err
	}
	answers = PruneHidden(a, answers)
	if err := ValidateAnswers(a, answers); err != nil {
		return nil, err
	}

	score := Score(a, answers)
	resp := &AssessmentResponse{
		ID:             s.idGenerator(),
		AssessmentID:   a.ID,
		CandidateName:  name,
		CandidateEmail: email,
		Responses:      answers,
		Score:          score.Earned,
		MaxScore:       score.Max,
		SubmittedAt:    s.now(),
	}
	if err := s.store.PutResponse(ctx, resp); err != nil {
		return nil, err
	}
	s.store.AddAudit(ctx, AuditEntry{
		Time:   resp.SubmittedAt,
		Actor:  email,
		Action: "submit_response",
		Target: a.ID,
		Note:   fmt.Sprintf("score %g/%g", score.Earned, score.Max),
	})
	return resp, nil
}

// Preview evaluates visibility and the running score without storing anything.
// Answers that fail to decode are ignored.
func (s *ResponseService) Preview(ctx context.Context, assessmentID string, raw map[string]json.RawMessage) (*Preview, error) {
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	answers := Answers{}
	for _, q := range a.Questions() {
		if ans, err := DecodeAnswer(q, raw[q.ID]); err == nil {
			answers[q.ID] = ans
		}
	}
	answers = PruneHidden(a, answers)
	score := Score(a, answers)
	return &Preview{
		Visible: VisibleQuestions(a, answers),
		Score:   score,
		Percent: score.Percent(),
	}, nil
}

func (s *ResponseService) Get(ctx context.Context, id string) (*AssessmentResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("id required")
	}
	return s.store.GetResponse(ctx, id)
}

// List returns the assessment's responses newest first.
func (s *ResponseService) List(ctx context.Context, assessmentID string, from, to *time.Time) ([]*AssessmentResponse, error) {
	if _, err := s.store.GetAssessment(ctx, assessmentID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, NewInvalidError("from must not be after to")
	}
	list, err := s.store.ListResponses(ctx, assessmentID, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SubmittedAt.After(list[j].SubmittedAt) })
	return list, nil
}

// decodeAnswers parses each raw answer against its question's type. Ids that
// do not belong to the assessment are dropped.
func decodeAnswers(a *Assessment, raw map[string]json.RawMessage) (Answers, error) {
	out := Answers{}
	for _, q := range a.Questions() {
		v, ok := raw[q.ID]
		if !ok {
			continue
		}
		ans, err := DecodeAnswer(q, v)
		if errors.Is(err, errNoAnswer) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[q.ID] = ans
	}
	return out, nil
}

// ValidateAnswers checks the visible questions' answers against their rules.
// Hidden questions are skipped, so a required question behind an unmet
// condition never blocks submission.
func ValidateAnswers(a *Assessment, answers Answers) error {
	for _, q := range a.Questions() {
		if !IsVisible(q, answers) {
			continue
		}
		ans, ok := answers[q.ID]
		if !ok || ans.Empty() {
			if q.Required {
				return invalidf("question %s: answer required", q.ID)
			}
			continue
		}
		if err := validateAnswer(q, ans); err != nil {
			return err
		}
	}
	return nil
}

func validateAnswer(q Question, ans Answer) error {
	if q.Type.HasOptions() {
		allowed := map[string]struct{}{}
		for _, opt := range q.Options {
			allowed[opt.Value] = struct{}{}
		}
		vals := ans.Choices
		if ans.Kind == AnswerText {
			vals = []string{ans.Text}
		}
		for _, v := range vals {
			if _, ok := allowed[v]; !ok {
				return invalidf("question %s: %q is not an option", q.ID, v)
			}
		}
	}
	v := q.Validation
	if v == nil {
		return nil
	}
	if q.Type.IsText() {
		n := utf8.RuneCountInString(ans.Text)
		if v.MinLength != nil && n < *v.MinLength {
			return invalidf("question %s: answer shorter than %d characters", q.ID, *v.MinLength)
		}
		if v.MaxLength != nil && n > *v.MaxLength {
			return invalidf("question %s: answer longer than %d characters", q.ID, *v.MaxLength)
		}
		if v.Pattern != "" {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return invalidf("question %s: invalid pattern: %v", q.ID, err)
			}
			if !re.MatchString(ans.Text) {
				return invalidf("question %s: answer does not match the required format", q.ID)
			}
		}
	}
	if q.Type == QuestionNumeric {
		if v.Min != nil && ans.Number < *v.Min {
			return invalidf("question %s: answer below minimum %g", q.ID, *v.Min)
		}
		if v.Max != nil && ans.Number > *v.Max {
			return invalidf("question %s: answer above maximum %g", q.ID, *v.Max)
		}
	}
	return nil
}
