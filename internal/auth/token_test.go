package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"collection-service/internal/model"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("shared-secret", time.Hour)
	parser := NewParser("shared-secret")

	user := &model.User{
		ID:   uuid.New(),
		Role: model.UserRoleCollector,
	}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := parser.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("sub = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != model.UserRoleCollector {
		t.Errorf("role = %s, want COLLECTOR", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Hour)
	parser := NewParser("secret-b")

	token, err := issuer.Issue(&model.User{ID: uuid.New(), Role: model.UserRoleAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := parser.Parse(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("shared-secret", -time.Minute)
	parser := NewParser("shared-secret")

	token, err := issuer.Issue(&model.User{ID: uuid.New(), Role: model.UserRoleResident})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := parser.Parse(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher(0) // out of range, falls back to the default cost

	hash, err := hasher.Hash("collect-all-bins")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "collect-all-bins" {
		t.Fatal("password not hashed")
	}
	if !hasher.Compare(hash, "collect-all-bins") {
		t.Error("correct password rejected")
	}
	if hasher.Compare(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
