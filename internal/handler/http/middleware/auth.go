package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
)

type actorKey struct{}

// AuthRequired turns the token verified by jwtauth.Verifier into an rbac.Actor
// with the bearer's role grants and persisted overrides resolved.
func AuthRequired(rbacService rbac.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			identity, err := jwt.IdentityFromContext(r.Context())
			if err != nil {
				slog.Debug("Rejected bearer token", "error", err)
				response.Unauthorized(w, "Invalid or missing token")
				return
			}

			actor, err := rbacService.ResolveActor(r.Context(), identity.EmployeeID, identity.Role)
			if errors.Is(err, rbac.ErrUnknownRole) {
				response.Unauthorized(w, "Unknown role")
				return
			}
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithActor(ctx context.Context, actor rbac.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor set by AuthRequired. The zero Actor holds
// no capabilities.
func ActorFromContext(ctx context.Context) rbac.Actor {
	actor, _ := ctx.Value(actorKey{}).(rbac.Actor)
	return actor
}
