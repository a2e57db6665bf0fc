package api

import (
	"context"
	"time"

	"github.com/talentflow/talentflow/internal/services"
)

type responseStoreAdapter struct {
	store Store
}

func newResponseStoreAdapter(store Store) services.ResponseStore {
	return &responseStoreAdapter{store: store}
}

func (a *responseStoreAdapter) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	return getAssessment(ctx, a.store, id)
}

func (a *responseStoreAdapter) PutResponse(ctx context.Context, r *services.AssessmentResponse) error {
	if err := a.store.PutResponse(ctx, r); err != nil {
		return services.NewPersistenceError("store response", err)
	}
	return nil
}

func (a *responseStoreAdapter) GetResponse(ctx context.Context, id string) (*services.AssessmentResponse, error) {
	return getResponse(ctx, a.store, id)
}

func (a *responseStoreAdapter) ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	return listResponses(ctx, a.store, assessmentID, from, to)
}

func (a *responseStoreAdapter) AddAudit(ctx context.Context, e services.AuditEntry) {
	addAudit(ctx, a.store, e)
}

func getResponse(ctx context.Context, store Store, id string) (*services.AssessmentResponse, error) {
	r, err := store.GetResponse(ctx, id)
	if err != nil {
		return nil, services.NewPersistenceError("get response", err)
	}
	if r == nil {
		return nil, services.NewNotFoundError("response not found")
	}
	return r, nil
}

func listResponses(ctx context.Context, store Store, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	list, err := store.ListResponses(ctx, assessmentID, from, to)
	if err != nil {
		return nil, services.NewPersistenceError("list responses", err)
	}
	return list, nil
}

var _ services.ResponseStore = (*responseStoreAdapter)(nil)
