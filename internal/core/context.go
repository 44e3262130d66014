package core

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxKeyUserID contextKey = "user_id"

// ContextWithUserID stores the authenticated user's id.
func ContextWithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, id)
}

// UserIDFromContext returns the authenticated user's id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
