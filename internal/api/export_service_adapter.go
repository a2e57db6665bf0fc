package api

import (
	"context"
	"time"

	"github.com/talentflow/talentflow/internal/services"
)

type exportStoreAdapter struct {
	store Store
}

func newExportStoreAdapter(store Store) services.ExportStore {
	return &exportStoreAdapter{store: store}
}

func (a *exportStoreAdapter) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	return getAssessment(ctx, a.store, id)
}

func (a *exportStoreAdapter) ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	return listResponses(ctx, a.store, assessmentID, from, to)
}

type resultsStoreAdapter struct {
	store Store
}

func newResultsStoreAdapter(store Store) services.ResultsStore {
	return &resultsStoreAdapter{store: store}
}

func (a *resultsStoreAdapter) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	return getAssessment(ctx, a.store, id)
}

func (a *resultsStoreAdapter) GetResponse(ctx context.Context, id string) (*services.AssessmentResponse, error) {
	return getResponse(ctx, a.store, id)
}

func (a *resultsStoreAdapter) ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error) {
	return listResponses(ctx, a.store, assessmentID, from, to)
}

type inviteStoreAdapter struct {
	store Store
}

func newInviteStoreAdapter(store Store) services.InviteStore {
	return &inviteStoreAdapter{store: store}
}

func (a *inviteStoreAdapter) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	return getAssessment(ctx, a.store, id)
}

func (a *inviteStoreAdapter) AddAudit(ctx context.Context, e services.AuditEntry) {
	addAudit(ctx, a.store, e)
}

var (
	_ services.ExportStore  = (*exportStoreAdapter)(nil)
	_ services.ResultsStore = (*resultsStoreAdapter)(nil)
	_ services.InviteStore  = (*inviteStoreAdapter)(nil)
)
