package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	mem "cat-tnr-registry/internal/adapters/storage/memory"
	"cat-tnr-registry/internal/domain/users"
	"cat-tnr-registry/internal/ports/auth"
)

const testSecret = "test-secret-not-for-prod"

func seedUser(t *testing.T, repo users.Repository, u users.User) users.User {
	t.Helper()
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	repo := mem.NewUserRepo()
	u := seedUser(t, repo, users.User{
		ID:      "u1",
		Name:    "Admin",
		Email:   "admin@example.com",
		IsAdmin: true,
		Status:  users.StatusApproved,
	})

	issuer, err := NewIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer error: %v", err)
	}
	verifier, err := NewVerifier(testSecret, repo)
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	token, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "admin@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if !claims.IsAdmin || claims.Status != auth.StatusApproved {
		t.Fatalf("claims must reflect stored flags, got %+v", claims)
	}
}

// La aprobación se re-lee del store en cada Verify: revocarla invalida el
// acceso aunque el token siga siendo criptográficamente válido.
func TestVerify_ReChecksApprovalPerRequest(t *testing.T) {
	repo := mem.NewUserRepo()
	u := seedUser(t, repo, users.User{
		ID:     "u1",
		Email:  "staff@example.com",
		Status: users.StatusApproved,
	})

	issuer, _ := NewIssuer(testSecret, time.Hour)
	verifier, _ := NewVerifier(testSecret, repo)

	token, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if err := repo.SetStatus(context.Background(), "u1", users.StatusRejected, time.Now()); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	claims, err := verifier.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Status != auth.StatusRejected {
		t.Fatalf("status = %s, want REJECTED (fresh from store)", claims.Status)
	}
}

func TestVerify_RejectsBadTokens(t *testing.T) {
	repo := mem.NewUserRepo()
	seedUser(t, repo, users.User{ID: "u1", Email: "a@b.com", Status: users.StatusApproved})

	issuer, _ := NewIssuer(testSecret, time.Hour)
	verifier, _ := NewVerifier(testSecret, repo)

	token, _ := issuer.Issue(users.User{ID: "u1", Email: "a@b.com"})

	cases := []struct {
		name  string
		token string
	}{
		{"vacio", ""},
		{"basura", "not.a.token"},
		{"manipulado", token + "x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := verifier.Verify(context.Background(), tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify(%q) = %v, want ErrInvalidToken", tc.token, err)
			}
		})
	}

	// firma de otro secreto
	otherIssuer, _ := NewIssuer("another-secret", time.Hour)
	foreign, _ := otherIssuer.Issue(users.User{ID: "u1"})
	if _, err := verifier.Verify(context.Background(), foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature accepted")
	}

	// cuenta borrada después de emitir
	ghost, _ := issuer.Issue(users.User{ID: "ghost"})
	if _, err := verifier.Verify(context.Background(), ghost); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token for missing user accepted")
	}
}
