package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestBuildAndParseJWT(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	userID := uuid.New().String()
	clinicID := uuid.New().String()
	tok, err := BuildJWT(secret, userID, RoleProfessional, &clinicID, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID || claims.Role != RoleProfessional || claims.ClinicID == nil || *claims.ClinicID != clinicID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, err := BuildJWT([]byte("secret-a"), "u", RoleSuperAdmin, nil, time.Hour)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT([]byte("secret-b"), tok); err == nil {
		t.Fatal("expected error with wrong secret")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	secret := []byte("test-secret-min-32-chars!!")
	tok, err := BuildJWT(secret, "u", RoleProfessional, nil, -time.Minute)
	if err != nil {
		t.Fatalf("BuildJWT: %v", err)
	}
	if _, err := ParseJWT(secret, tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseJWT_RejectsNoneAlg(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := ParseJWT([]byte("x"), tok); err == nil {
		t.Fatal("expected error for alg none")
	}
}

func TestClinicIDFrom(t *testing.T) {
	ctx := context.Background()
	if _, err := ClinicIDFrom(ctx); err != ErrNoClinic {
		t.Fatalf("empty context: got %v, want ErrNoClinic", err)
	}
	clinic := uuid.New()
	s := clinic.String()
	ctx = WithClaims(ctx, &Claims{UserID: "not-a-uuid", ClinicID: &s})
	got, err := ClinicIDFrom(ctx)
	if err != nil || got != clinic {
		t.Fatalf("ClinicIDFrom = %v, %v", got, err)
	}
	if ActorID(ctx) != nil {
		t.Fatal("ActorID should be nil for non-uuid subject")
	}
	bad := "nope"
	ctx = WithClaims(context.Background(), &Claims{ClinicID: &bad})
	if _, err := ClinicIDFrom(ctx); err == nil {
		t.Fatal("expected parse error for invalid clinic id")
	}
}
