package auth

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/haawall/haawall-go/internal/errors"
	"github.com/haawall/haawall-go/internal/storage"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager("test-secret-key", ttl)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	user := &storage.User{ID: 7, Email: "admin@example.edu", UserType: storage.UserTypeAdmin}

	token, err := m.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != 7 || claims.Email != "admin@example.edu" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.IsAdmin() {
		t.Error("admin token should report IsAdmin")
	}
	if claims.Guest {
		t.Error("user token should not be a guest token")
	}
}

func TestIssueGuestToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)
	token, sessionID, err := m.IssueGuestToken()
	if err != nil {
		t.Fatalf("IssueGuestToken() error = %v", err)
	}
	if sessionID == "" {
		t.Error("guest session id is empty")
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if !claims.Guest || claims.UserType != storage.UserTypeGuest {
		t.Errorf("claims = %+v, want guest", claims)
	}
	if claims.Subject != sessionID {
		t.Errorf("Subject = %q, want session id %q", claims.Subject, sessionID)
	}
	if claims.IsAdmin() {
		t.Error("guest token should not be admin")
	}
}

func TestParseTokenRejectsInvalid(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Hour)

	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("ParseToken(garbage) = %v, want ErrUnauthorized", err)
	}

	// Token signed with a different secret
	other := newTestManager(t, time.Hour)
	other.secret = []byte("different-secret")
	token, err := other.IssueToken(&storage.User{ID: 1, Email: "x@example.edu", UserType: storage.UserTypeStudent})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if _, err := m.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("ParseToken(wrong secret) = %v, want ErrUnauthorized", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, time.Nanosecond)
	token, err := m.IssueToken(&storage.User{ID: 1, Email: "x@example.edu", UserType: storage.UserTypeStudent})
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := m.ParseToken(token); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("ParseToken(expired) = %v, want ErrUnauthorized", err)
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewManager("", time.Hour); err == nil {
		t.Error("NewManager(\"\") should fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Error("password stored in plaintext")
	}
	if !CheckPassword(hashed, "s3cret-pass") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hashed, "wrong-pass") {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
