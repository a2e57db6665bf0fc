package api

import (
	"context"
	"time"

	"github.com/talentflow/talentflow/internal/services"
)

// Store is the persistence collaborator shared by the memory, SQLite and
// PostgreSQL backends. Lookups return nil with a nil error when the record
// does not exist; updates and deletes report whether a row was touched.
type Store interface {
	AddAssessment(ctx context.Context, a *services.Assessment) error
	UpdateAssessment(ctx context.Context, a *services.Assessment) (bool, error)
	// DeleteAssessment also removes every response to the assessment.
	DeleteAssessment(ctx context.Context, id string) (bool, error)
	GetAssessment(ctx context.Context, id string) (*services.Assessment, error)
	ListAssessments(ctx context.Context) ([]*services.Assessment, error)

	PutResponse(ctx context.Context, r *services.AssessmentResponse) error
	GetResponse(ctx context.Context, id string) (*services.AssessmentResponse, error)
	// ListResponses returns responses ordered by submission time, oldest first.
	// Nil bounds are open; both bounds are inclusive.
	ListResponses(ctx context.Context, assessmentID string, from, to *time.Time) ([]*services.AssessmentResponse, error)
	CountResponses(ctx context.Context, assessmentID string) (int, error)

	AddAudit(ctx context.Context, e services.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]services.AuditEntry, error)

	Close() error
}

var _ Store = (*memoryStore)(nil)
