package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInviteIssue(t *testing.T) {
	store := newMemStore(assessmentWith())
	var got InviteClaims
	svc := NewInviteService(store, func(c InviteClaims, expiresAt time.Time) (string, error) {
		got = c
		return "signed:" + c.AssessmentID + ":" + expiresAt.Format(time.RFC3339), nil
	}, 48*time.Hour)
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	inv, err := svc.Issue(context.Background(), "A1", " Ada ", "ada@example.com", "hr")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if inv.Token != "signed:A1:2025-07-03T00:00:00Z" {
		t.Fatalf("unexpected token %q", inv.Token)
	}
	if !inv.ExpiresAt.Equal(now.Add(48 * time.Hour)) {
		t.Fatalf("expires at %v", inv.ExpiresAt)
	}
	if got.CandidateName != "Ada" || got.CandidateEmail != "ada@example.com" {
		t.Fatalf("claims = %+v", got)
	}
	if len(store.audit) != 1 || store.audit[0].Action != "issue_invite" {
		t.Fatalf("audit = %+v", store.audit)
	}
}

func TestInviteIssueErrors(t *testing.T) {
	store := newMemStore(assessmentWith())
	svc := NewInviteService(store, func(InviteClaims, time.Time) (string, error) {
		return "", errors.New("boom")
	}, 0)
	if svc.TTL() != 7*24*time.Hour {
		t.Fatalf("default ttl = %v", svc.TTL())
	}
	ctx := context.Background()

	if _, err := svc.Issue(ctx, "A1", "", "ada@example.com", "hr"); !IsInvalid(err) {
		t.Fatalf("expected invalid error for missing name, got %v", err)
	}
	if _, err := svc.Issue(ctx, "A1", "Ada", "not-an-email", "hr"); !IsInvalid(err) {
		t.Fatalf("expected invalid error for bad email, got %v", err)
	}
	if _, err := svc.Issue(ctx, "missing", "Ada", "ada@example.com", "hr"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Issue(ctx, "A1", "Ada", "ada@example.com", "hr"); err == nil {
		t.Fatalf("expected signer error")
	}
	if len(store.audit) != 0 {
		t.Fatalf("audit should be empty, got %d", len(store.audit))
	}
}

func TestFingerprint(t *testing.T) {
	a := assessmentWith(Question{ID: "Q1", Type: QuestionShortText})
	f1, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	f2, _ := Fingerprint(a.Clone())
	if f1 != f2 || len(f1) != 32 {
		t.Fatalf("fingerprints %q %q", f1, f2)
	}
	a.UpdatedAt = a.UpdatedAt.Add(time.Second)
	f3, _ := Fingerprint(a)
	if f3 == f1 {
		t.Fatalf("fingerprint did not change after update")
	}
}
