package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

var ErrNoClinic = errors.New("no clinic in token")

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFrom(ctx context.Context) *Claims {
	if c, _ := ctx.Value(claimsKey).(*Claims); c != nil {
		return c
	}
	return nil
}

func UserIDFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.UserID
}

func RoleFrom(ctx context.Context) string {
	c := ClaimsFrom(ctx)
	if c == nil {
		return ""
	}
	return c.Role
}

// ClinicIDFrom returns the clinic the token is scoped to. Every agenda operation is per clinic,
// so a super admin also needs a clinic_id claim to touch appointments.
func ClinicIDFrom(ctx context.Context) (uuid.UUID, error) {
	c := ClaimsFrom(ctx)
	if c == nil || c.ClinicID == nil || *c.ClinicID == "" {
		return uuid.Nil, ErrNoClinic
	}
	return uuid.Parse(*c.ClinicID)
}

// ActorID is the caller as a uuid, or nil when the subject is not a uuid.
func ActorID(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(UserIDFrom(ctx))
	if err != nil {
		return nil
	}
	return &id
}
