package services

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

type InviteStore interface {
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	AddAudit(ctx context.Context, entry AuditEntry)
}

// InviteSigner turns claims into a token that expires at expiresAt.
type InviteSigner func(claims InviteClaims, expiresAt time.Time) (string, error)

type InviteService struct {
	store InviteStore
	now   func() time.Time
	sign  InviteSigner
	ttl   time.Duration
}

type Invite struct {
	Token        string    `json:"token"`
	AssessmentID string    `json:"assessmentId"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func NewInviteService(store InviteStore, signer InviteSigner, ttl time.Duration) *InviteService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &InviteService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		sign:  signer,
		ttl:   ttl,
	}
}

// Issue signs an invite binding one candidate to one assessment.
func (s *InviteService) Issue(ctx context.Context, assessmentID, name, email, actor string) (*Invite, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return nil, NewInvalidError("candidateName required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewInvalidError("valid candidateEmail required")
	}
	a, err := s.store.GetAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if s.sign == nil {
		return nil, NewInvalidError("invite signer not configured")
	}
	now := s.now()
	expires := now.Add(s.ttl).Truncate(time.Second)
	token, err := s.sign(InviteClaims{AssessmentID: a.ID, CandidateName: name, CandidateEmail: email}, expires)
	if err != nil {
		return nil, err
	}
	s.store.AddAudit(ctx, AuditEntry{Time: now, Actor: actor, Action: "issue_invite", Target: a.ID, Note: email})
	return &Invite{Token: token, AssessmentID: a.ID, ExpiresAt: expires}, nil
}

func (s *InviteService) TTL() time.Duration {
	return s.ttl
}
