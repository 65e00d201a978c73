package security

import (
	"errors"
	"testing"
	"time"

	"github.com/emergent-labs/emergent-server/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:    42,
		Email: "user@example.com",
		Role:  models.RoleUser,
	}
}

func TestIssueAndParseUserToken(t *testing.T) {
	token, errIssue := IssueUserToken("secret", time.Hour, testUser())
	if errIssue != nil {
		t.Fatalf("IssueUserToken: %v", errIssue)
	}

	claims, errParse := ParseUserToken("secret", token)
	if errParse != nil {
		t.Fatalf("ParseUserToken: %v", errParse)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.Role != models.RoleUser {
		t.Fatalf("role = %q", claims.Role)
	}
	id, errID := claims.UserID()
	if errID != nil || id != 42 {
		t.Fatalf("UserID() = (%d, %v)", id, errID)
	}
}

func TestParseUserTokenExpired(t *testing.T) {
	token, errIssue := IssueUserToken("secret", -time.Minute, testUser())
	if errIssue != nil {
		t.Fatalf("IssueUserToken: %v", errIssue)
	}
	_, errParse := ParseUserToken("secret", token)
	if !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("ParseUserToken = %v, want ErrExpiredToken", errParse)
	}
}

func TestParseUserTokenWrongSecret(t *testing.T) {
	token, errIssue := IssueUserToken("secret", time.Hour, testUser())
	if errIssue != nil {
		t.Fatalf("IssueUserToken: %v", errIssue)
	}
	_, errParse := ParseUserToken("other-secret", token)
	if !errors.Is(errParse, ErrMalformedToken) {
		t.Fatalf("ParseUserToken = %v, want ErrMalformedToken", errParse)
	}
}

func TestParseUserTokenGarbage(t *testing.T) {
	_, errParse := ParseUserToken("secret", "not-a-token")
	if !errors.Is(errParse, ErrMalformedToken) {
		t.Fatalf("ParseUserToken = %v, want ErrMalformedToken", errParse)
	}
}

func TestIssueUserTokenRejectsEmptySecret(t *testing.T) {
	if _, errIssue := IssueUserToken("", time.Hour, testUser()); errIssue == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	first, _ := IssueUserToken("secret", time.Hour, testUser())
	second, _ := IssueUserToken("secret", time.Hour, testUser())
	a, errA := ParseUserToken("secret", first)
	b, errB := ParseUserToken("secret", second)
	if errA != nil || errB != nil {
		t.Fatalf("parse: %v / %v", errA, errB)
	}
	if a.ID == b.ID {
		t.Fatal("two tokens share the same jti")
	}
}
