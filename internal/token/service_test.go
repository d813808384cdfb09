package token

import (
	"strings"
	"testing"
	"time"
)

func testProfile() Profile {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	return Profile{
		ID:        "user-1",
		Email:     "fulano@example.com",
		Name:      "Fulano",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestIssueAndVerifyPair(t *testing.T) {
	svc, err := NewService("test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	orgID := "comp-9"
	profile := testProfile()
	profile.CompetenciaID = &orgID

	pair, err := svc.IssuePair(profile)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	access, err := svc.VerifyAccess(pair.Access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if access.ID != "user-1" || access.Email != "fulano@example.com" || access.Name != "Fulano" {
		t.Fatalf("unexpected claims: %+v", access)
	}
	if access.CompetenciaID == nil || *access.CompetenciaID != "comp-9" {
		t.Fatalf("competencia id not preserved: %v", access.CompetenciaID)
	}
	if !access.CreatedAt().Equal(profile.CreatedAt) {
		t.Fatalf("createdAt round trip: %v", access.CreatedAt())
	}

	refresh, err := svc.VerifyRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if refresh.User != "user-1" {
		t.Fatalf("unexpected refresh subject: %s", refresh.User)
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	svc, err := NewService("test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	pair, err := svc.IssuePair(testProfile())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	// Both tokens carry valid signatures; the type discriminant alone must
	// reject the swap in either direction.
	if _, err := svc.VerifyRefresh(pair.Access); err != ErrInvalidToken {
		t.Fatalf("access-as-refresh: want ErrInvalidToken, got %v", err)
	}
	if _, err := svc.VerifyAccess(pair.Refresh); err != ErrInvalidToken {
		t.Fatalf("refresh-as-access: want ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, err := NewService("test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	pair, err := svc.IssuePair(testProfile())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	tampered := pair.Access[:len(pair.Access)-2] + "xx"
	if _, err := svc.VerifyAccess(tampered); err != ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}

	other, err := NewService("another-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := other.VerifyAccess(pair.Access); err != ErrInvalidToken {
		t.Fatalf("foreign secret: want ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := issuedAt
	svc, err := NewService("test-secret", WithClock(func() time.Time { return clock }))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	pair, err := svc.IssuePair(testProfile())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	clock = issuedAt.Add(AccessTTL + time.Minute)
	if _, err := svc.VerifyAccess(pair.Access); err != ErrInvalidToken {
		t.Fatalf("expired access: want ErrInvalidToken, got %v", err)
	}
	if _, err := svc.VerifyRefresh(pair.Refresh); err != nil {
		t.Fatalf("refresh should outlive access: %v", err)
	}

	clock = issuedAt.Add(RefreshTTL + time.Minute)
	if _, err := svc.VerifyRefresh(pair.Refresh); err != ErrInvalidToken {
		t.Fatalf("expired refresh: want ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewService("test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	for _, raw := range []string{"", "   ", "not.a.jwt", strings.Repeat("a", 300)} {
		if _, err := svc.VerifyAccess(raw); err != ErrInvalidToken {
			t.Fatalf("VerifyAccess(%q): want ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(""); err == nil {
		t.Fatal("expected configuration error for empty secret")
	}
	if _, err := NewService("   "); err == nil {
		t.Fatal("expected configuration error for blank secret")
	}
}
