package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/talentflow/talentflow/internal/services"
)

type memoryStore struct {
	mu          sync.RWMutex
	assessments map[string]*services.Assessment
	responses   map[string]*services.AssessmentResponse
	byAssess    map[string][]string
	audit       []services.AuditEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		assessments: map[string]*services.Assessment{},
		responses:   map[string]*services.AssessmentResponse{},
		byAssess:    map[string][]string{},
		audit:       []services.AuditEntry{},
	}
}

// NewMemoryStore returns the process-local store used by default and in tests.
func NewMemoryStore() Store { return newMemoryStore() }

// Snapshot is a JSON dump of every assessment and response, the shape the
// browser-side database exported.
type Snapshot struct {
	Assessments []*services.Assessment         `json:"assessments"`
	Responses   []*services.AssessmentResponse `json:"responses"`
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// ImportSnapshot writes every record of snap into store. Records already
// present, and responses whose assessment is absent, are skipped and counted.
func ImportSnapshot(ctx context.Context, store Store, snap *Snapshot) (assessments, responses, skipped int, err error) {
	known := map[string]bool{}
	for _, a := range snap.Assessments {
		if a == nil || a.ID == "" {
			skipped++
			continue
		}
		existing, err := store.GetAssessment(ctx, a.ID)
		if err != nil {
			return assessments, responses, skipped, fmt.Errorf("import assessment %s: %w", a.ID, err)
		}
		known[a.ID] = true
		if existing != nil {
			skipped++
			continue
		}
		if err := store.AddAssessment(ctx, a); err != nil {
			return assessments, responses, skipped, fmt.Errorf("import assessment %s: %w", a.ID, err)
		}
		assessments++
	}
	for _, r := range snap.Responses {
		if r == nil || !known[r.AssessmentID] {
			skipped++
			continue
		}
		existing, err := store.GetResponse(ctx, r.ID)
		if err != nil {
			return assessments, responses, skipped, fmt.Errorf("import response %s: %w", r.ID, err)
		}
		if existing != nil {
			skipped++
			continue
		}
		if err := store.PutResponse(ctx, r); err != nil {
			return assessments, responses, skipped, fmt.Errorf("import response %s: %w", r.ID, err)
		}
		responses++
	}
	return assessments, responses, skipped, nil
}

// NewMemoryStoreFromSnapshot seeds a memory store from a snapshot file.
func NewMemoryStoreFromSnapshot(ctx context.Context, path string) (Store, error) {
	snap, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	s := newMemoryStore()
	if _, _, _, err := ImportSnapshot(ctx, s, snap); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *memoryStore) AddAssessment(_ context.Context, a *services.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; ok {
		return fmt.Errorf("assessment %s already exists", a.ID)
	}
	s.assessments[a.ID] = a.Clone()
	return nil
}

func (s *memoryStore) UpdateAssessment(_ context.Context, a *services.Assessment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[a.ID]; !ok {
		return false, nil
	}
	s.assessments[a.ID] = a.Clone()
	return true, nil
}

func (s *memoryStore) DeleteAssessment(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assessments[id]; !ok {
		return false, nil
	}
	delete(s.assessments, id)
	for _, rid := range s.byAssess[id] {
		delete(s.responses, rid)
	}
	delete(s.byAssess, id)
	return true, nil
}

func (s *memoryStore) GetAssessment(_ context.Context, id string) (*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assessments[id].Clone(), nil
}

func (s *memoryStore) ListAssessments(context.Context) ([]*services.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*services.Assessment, 0, len(s.assessments))
	for _, a := range s.assessments {
		out = append(out, a.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) PutResponse(_ context.Context, r *services.AssessmentResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.responses[r.ID]; ok {
		return fmt.Errorf("response %s already exists", r.ID)
	}
	s.responses[r.ID] = cloneResponse(r)
	s.byAssess[r.AssessmentID] = append(s.byAssess[r.AssessmentID], r.ID)
	return nil
}

func (s *memoryStore) GetResponse(_ context.Context, id string) (*services.AssessmentResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, nil
	}
	return cloneResponse(r), nil
}

func (s *memoryStore) ListResponses(_ context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.AssessmentResponse{}
	for _, rid := range s.byAssess[assessmentID] {
		r := s.responses[rid]
		if from != nil && r.SubmittedAt.Before(*from) {
			continue
		}
		if to != nil && r.SubmittedAt.After(*to) {
			continue
		}
		out = append(out, cloneResponse(r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (s *memoryStore) CountResponses(_ context.Context, assessmentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAssess[assessmentID]), nil
}

func (s *memoryStore) AddAudit(_ context.Context, e services.AuditEntry) error {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
	return nil
}

// ListAudit returns the newest entries first; limit <= 0 returns all.
func (s *memoryStore) ListAudit(_ context.Context, limit int) ([]services.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.audit)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]services.AuditEntry, 0, n)
	for i := len(s.audit) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

func cloneResponse(r *services.AssessmentResponse) *services.AssessmentResponse {
	cp := *r
	cp.Responses = make(services.Answers, len(r.Responses))
	for k, v := range r.Responses {
		cp.Responses[k] = v.Clone()
	}
	return &cp
}
