package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/api/middleware"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/outbox"
)

// branchFromContext pulls the authenticated branch scope. Auth middleware
// guarantees it for protected routes; a miss is a programming error surfaced
// as 401 rather than a panic.
func branchFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.BranchIDFromContext(ctx)
	branchID, err := uuid.Parse(raw)
	if err != nil || branchID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing branch scope")
	}
	return branchID, nil
}

func staffFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.StaffIDFromContext(ctx)
	staffID, err := uuid.Parse(raw)
	if err != nil || staffID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing staff identity")
	}
	return staffID, nil
}

// actorFromContext builds the outbox actor attribution from token claims.
func actorFromContext(ctx context.Context) *outbox.ActorRef {
	staffID, err := staffFromContext(ctx)
	if err != nil {
		return nil
	}
	branchID, err := branchFromContext(ctx)
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{
		StaffID:  staffID,
		BranchID: branchID,
		Role:     middleware.RoleFromContext(ctx),
	}
}
