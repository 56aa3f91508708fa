package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManager_GenerateAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Generate(userID)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	parsed, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if parsed != userID {
		t.Errorf("UserID() = %s, want %s", parsed, userID)
	}
}

func TestManager_VerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Generate(uuid.New())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify should fail for a token signed with another secret")
	}
}

func TestManager_VerifyExpired(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.Generate(uuid.New())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := manager.Verify(token); err != ErrExpiredToken {
		t.Errorf("Verify error = %v, want ErrExpiredToken", err)
	}
}

func TestManager_VerifyGarbage(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	if _, err := manager.Verify("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Verify error = %v, want ErrInvalidToken", err)
	}
}

func TestClaims_UserIDNotAUUID(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "player-one"

	if _, err := claims.UserID(); err != ErrInvalidToken {
		t.Errorf("UserID error = %v, want ErrInvalidToken", err)
	}
}
