package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// AssessmentStore is the persistence boundary AssessmentService needs.
// Missing records are reported as not-found errors by the adapter.
type AssessmentStore interface {
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	ListAssessments(ctx context.Context) ([]*Assessment, error)
	AddAssessment(ctx context.Context, a *Assessment) error
	UpdateAssessment(ctx context.Context, a *Assessment) error
	DeleteAssessment(ctx context.Context, id string) error
	CountResponses(ctx context.Context, assessmentID string) (int, error)
	AddAudit(ctx context.Context, entry AuditEntry)
}

const (
	SortCreatedAt = "createdAt"
	SortUpdatedAt = "updatedAt"
	SortTitle     = "title"
	SortJobTitle  = "jobTitle"
)

// ListParams mirrors the list query string. Zero Page and PageSize return
// the whole filtered set as a single page.
type ListParams struct {
	Search    string
	JobTitle  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type ListResult struct {
	Data     []*Assessment `json:"data"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// assessmentUpdate is the accepted shape of a partial update.
type assessmentUpdate struct {
	Title       *string              `json:"title"`
	JobTitle    *string              `json:"jobTitle"`
	Description *string              `json:"description"`
	Sections    *[]AssessmentSection `json:"sections"`
}

type AssessmentService struct {
	store  AssessmentStore
	editor *Editor
	now    func() time.Time
}

func NewAssessmentService(store AssessmentStore) *AssessmentService {
	return &AssessmentService{
		store:  store,
		editor: NewEditor(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Editor exposes the service's editor so callers build edit functions with
// the same clock and id generator.
func (s *AssessmentService) Editor() *Editor { return s.editor }

func (s *AssessmentService) Create(ctx context.Context, raw []byte, actor string) (*Assessment, error) {
	if err := ValidateAssessmentPayload(raw); err != nil {
		return nil, err
	}
	var a Assessment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, NewInvalidError(err.Error())
	}
	now := s.now()
	if a.ID == "" {
		a.ID = s.editor.newID()
	} else if _, err := s.store.GetAssessment(ctx, a.ID); err == nil {
		return nil, NewConflictError("assessment id already exists")
	} else if !IsNotFound(err) {
		return nil, err
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	s.fillIDs(&a)
	if err := ValidateAssessment(&a); err != nil {
		return nil, err
	}
	if err := s.store.AddAssessment(ctx, &a); err != nil {
		return nil, err
	}
	s.store.AddAudit(ctx, AuditEntry{Time: now, Actor: actor, Action: "create_assessment", Target: a.ID})
	return &a, nil
}

// fillIDs assigns ids to sections, questions and options that arrived
// without one, and normalises options per question type.
func (s *AssessmentService) fillIDs(a *Assessment) {
	if a.Sections == nil {
		a.Sections = []AssessmentSection{}
	}
	for i := range a.Sections {
		sec := &a.Sections[i]
		if sec.ID == "" {
			sec.ID = s.editor.newID()
		}
		if sec.Questions == nil {
			sec.Questions = []Question{}
		}
		for j := range sec.Questions {
			q := &sec.Questions[j]
			if q.ID == "" {
				q.ID = s.editor.newID()
			}
			if q.Type.HasOptions() && q.Options == nil {
				q.Options = []QuestionOption{}
			}
			for k := range q.Options {
				if q.Options[k].ID == "" {
					q.Options[k].ID = s.editor.newID()
				}
			}
		}
	}
}

func (s *AssessmentService) Get(ctx context.Context, id string) (*Assessment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("id required")
	}
	return s.store.GetAssessment(ctx, id)
}

func (s *AssessmentService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	all, err := s.store.ListAssessments(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*Assessment, 0, len(all))
	for _, a := range all {
		if matchesList(a, p) {
			filtered = append(filtered, a)
		}
	}
	if err := sortAssessments(filtered, p.SortBy, p.SortOrder); err != nil {
		return nil, err
	}
	res := &ListResult{Total: len(filtered)}
	if p.Page <= 0 && p.PageSize <= 0 {
		res.Data = filtered
		res.Page = 1
		res.PageSize = len(filtered)
		return res, nil
	}
	page, size := p.Page, p.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	res.Page, res.PageSize = page, size
	start := (page - 1) * size
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}
	res.Data = filtered[start:end]
	return res, nil
}

func matchesList(a *Assessment, p ListParams) bool {
	if q := strings.ToLower(strings.TrimSpace(p.Search)); q != "" {
		hay := strings.ToLower(a.Title + "\n" + a.JobTitle + "\n" + a.Description)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	if jt := strings.TrimSpace(p.JobTitle); jt != "" && jt != "all" && a.JobTitle != jt {
		return false
	}
	if p.DateFrom != nil && a.CreatedAt.Before(*p.DateFrom) {
		return false
	}
	if p.DateTo != nil && a.CreatedAt.After(*p.DateTo) {
		return false
	}
	return true
}

func sortAssessments(list []*Assessment, by, order string) error {
	if by == "" {
		by = SortCreatedAt
	}
	desc := true
	switch strings.ToLower(order) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return NewInvalidError("sortOrder must be asc or desc")
	}
	var less func(a, b *Assessment) bool
	switch by {
	case SortCreatedAt:
		less = func(a, b *Assessment) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortUpdatedAt:
		less = func(a, b *Assessment) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortTitle:
		less = func(a, b *Assessment) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortJobTitle:
		less = func(a, b *Assessment) bool { return strings.ToLower(a.JobTitle) < strings.ToLower(b.JobTitle) }
	default:
		return NewInvalidError("unsupported sortBy: " + by)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
	return nil
}

// Update merges a partial document into the stored assessment. The id and
// createdAt never change.
func (s *AssessmentService) Update(ctx context.Context, id string, raw []byte, actor string) (*Assessment, error) {
	if err := ValidateAssessmentPatch(raw); err != nil {
		return nil, err
	}
	var patch assessmentUpdate
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, NewInvalidError(err.Error())
	}
	return s.Edit(ctx, id, actor, func(a *Assessment) (*Assessment, error) {
		out := s.editor.UpdateDetails(a, AssessmentPatch{
			Title:       patch.Title,
			JobTitle:    patch.JobTitle,
			Description: patch.Description,
		})
		if patch.Sections != nil {
			out.Sections = *patch.Sections
			s.fillIDs(out)
		}
		return out, nil
	})
}

// Edit loads the assessment, applies fn and stores the result once it
// validates. Nothing is written when fn or validation fails.
func (s *AssessmentService) Edit(ctx context.Context, id, actor string, fn func(*Assessment) (*Assessment, error)) (*Assessment, error) {
	current, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(ctx, id); err != nil {
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	if !next.UpdatedAt.After(current.UpdatedAt) {
		next.UpdatedAt = s.editor.begin(current).UpdatedAt
	}
	if err := ValidateAssessment(next); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAssessment(ctx, next); err != nil {
		return nil, err
	}
	s.store.AddAudit(ctx, AuditEntry{Time: next.UpdatedAt, Actor: actor, Action: "update_assessment", Target: id})
	return next, nil
}

// ensureEditable refuses changes once any response references the assessment.
func (s *AssessmentService) ensureEditable(ctx context.Context, id string) error {
	n, err := s.store.CountResponses(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return NewConflictError("assessment already has responses")
	}
	return nil
}

// Delete removes the assessment together with its responses.
func (s *AssessmentService) Delete(ctx context.Context, id, actor string) error {
	if _, err := s.store.GetAssessment(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteAssessment(ctx, id); err != nil {
		return err
	}
	s.store.AddAudit(ctx, AuditEntry{Time: s.now(), Actor: actor, Action: "delete_assessment", Target: id})
	return nil
}

// TotalPoints is the builder's header figure: points of every scorable
// question, graded or not.
func TotalPoints(a *Assessment) float64 {
	total := 0.0
	for _, q := range a.Questions() {
		if q.Type.Scorable() {
			total += q.PointsOrDefault()
		}
	}
	return total
}
