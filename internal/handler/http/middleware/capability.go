package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/rbac"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

// RequireCapability passes actors holding any of caps.
func RequireCapability(caps ...rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			for _, c := range caps {
				if rbac.HasCapability(actor, c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.HandleError(w, rbac.ErrPermissionDenied)
		})
	}
}

// RequireSelfOrCapability lets an actor holding ViewOwnData through when the
// route's {param} is their own employee id, and otherwise requires c.
func RequireSelfOrCapability(param string, c rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if rbac.HasCapability(actor, c) {
				next.ServeHTTP(w, r)
				return
			}
			if actor.ID != "" && actor.ID == chi.URLParam(r, param) && rbac.HasCapability(actor, rbac.ViewOwnData) {
				next.ServeHTTP(w, r)
				return
			}
			response.HandleError(w, rbac.ErrPermissionDenied)
		})
	}
}
