package api

import (
	"context"
	"log"

	"github.com/talentflow/talentflow/internal/services"
)

type assessmentStoreAdapter struct {
	store Store
}

func newAssessmentStoreAdapter(store Store) services.AssessmentStore {
	return &assessmentStoreAdapter{store: store}
}

func (a *assessmentStoreAdapter) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	return getAssessment(ctx, a.store, id)
}

func (a *assessmentStoreAdapter) ListAssessments(ctx context.Context) ([]*services.Assessment, error) {
	list, err := a.store.ListAssessments(ctx)
	if err != nil {
		return nil, services.NewPersistenceError("list assessments", err)
	}
	return list, nil
}

func (a *assessmentStoreAdapter) AddAssessment(ctx context.Context, as *services.Assessment) error {
	if err := a.store.AddAssessment(ctx, as); err != nil {
		return services.NewPersistenceError("add assessment", err)
	}
	return nil
}

func (a *assessmentStoreAdapter) UpdateAssessment(ctx context.Context, as *services.Assessment) error {
	ok, err := a.store.UpdateAssessment(ctx, as)
	if err != nil {
		return services.NewPersistenceError("update assessment", err)
	}
	if !ok {
		return services.NewNotFoundError("assessment not found")
	}
	return nil
}

func (a *assessmentStoreAdapter) DeleteAssessment(ctx context.Context, id string) error {
	ok, err := a.store.DeleteAssessment(ctx, id)
	if err != nil {
		return services.NewPersistenceError("delete assessment", err)
	}
	if !ok {
		return services.NewNotFoundError("assessment not found")
	}
	return nil
}

func (a *assessmentStoreAdapter) CountResponses(ctx context.Context, assessmentID string) (int, error) {
	n, err := a.store.CountResponses(ctx, assessmentID)
	if err != nil {
		return 0, services.NewPersistenceError("count responses", err)
	}
	return n, nil
}

func (a *assessmentStoreAdapter) AddAudit(ctx context.Context, e services.AuditEntry) {
	addAudit(ctx, a.store, e)
}

// getAssessment turns a missing row into a not-found service error.
func getAssessment(ctx context.Context, store Store, id string) (*services.Assessment, error) {
	as, err := store.GetAssessment(ctx, id)
	if err != nil {
		return nil, services.NewPersistenceError("get assessment", err)
	}
	if as == nil {
		return nil, services.NewNotFoundError("assessment not found")
	}
	return as, nil
}

// addAudit never fails the calling operation; a lost audit line is logged.
func addAudit(ctx context.Context, store Store, e services.AuditEntry) {
	if err := store.AddAudit(ctx, e); err != nil {
		log.Printf("audit %s %s: %v", e.Action, e.Target, err)
	}
}

var _ services.AssessmentStore = (*assessmentStoreAdapter)(nil)
