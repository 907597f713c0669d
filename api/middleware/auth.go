package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tablemesh/kds-backend/api/responses"
	pkgAuth "github.com/tablemesh/kds-backend/pkg/auth"
	"github.com/tablemesh/kds-backend/pkg/config"
	pkgerrors "github.com/tablemesh/kds-backend/pkg/errors"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// Display terminals cannot set headers on EventSource requests, so a
// ?access_token= query parameter is accepted as a fallback.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxStaffID, claims.StaffID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxBranchID, claims.BranchID.String())
			if claims.StaffName != "" {
				ctx = context.WithValue(ctx, ctxStaffName, claims.StaffName)
			}

			if logg != nil {
				ctx = logg.WithStaffID(ctx, claims.StaffID.String())
				ctx = logg.WithBranchID(ctx, claims.BranchID.String())
				ctx = logg.WithField(ctx, "actor_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw != "" {
		return raw
	}
	return strings.TrimSpace(r.URL.Query().Get("access_token"))
}
