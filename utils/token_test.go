package authUtils

import (
	"testing"

	"github.com/dgrijalva/jwt-go"
)

func TestGenerateTokenCarriesUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateToken("6567a1b2c3d4e5f601020304")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if claims["user_id"] != "6567a1b2c3d4e5f601020304" {
		t.Errorf("user_id claim = %v", claims["user_id"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("exp claim missing")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := GenerateToken("abc"); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
