// Package identity carries the authenticated caller through a request.
//
// The auth gate builds an Identity once per request and stores it in the
// context; services that need to know who is acting receive it explicitly
// through FromContext instead of reading a global session.
package identity

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated user and the role resolved for them.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
