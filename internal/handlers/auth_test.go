package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueActivationTokenCarriesPurposeAndUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	signed, err := issueActivationToken(userID, "secret", time.Hour)
	if err != nil {
		t.Fatalf("issueActivationToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("expected valid token, got %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["purpose"] != "activation" {
		t.Fatalf("expected activation purpose, got %v", claims["purpose"])
	}
	if claims["userId"] != userID.Hex() {
		t.Fatalf("expected userId %s, got %v", userID.Hex(), claims["userId"])
	}
}

func TestHashTokenIsStableAndHexEncoded(t *testing.T) {
	a := hashToken("refresh-token-value")
	b := hashToken("refresh-token-value")
	if a != b {
		t.Fatal("expected identical hashes for identical input")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == hashToken("different") {
		t.Fatal("expected different input to hash differently")
	}
}

func TestGenerateRefreshStringProducesUniqueValues(t *testing.T) {
	a := generateRefreshString()
	b := generateRefreshString()
	if a == "" || b == "" {
		t.Fatal("expected non-empty refresh strings")
	}
	if a == b {
		t.Fatal("expected unique refresh strings")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
