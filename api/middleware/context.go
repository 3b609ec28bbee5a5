package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

type contextKey string

const (
	ctxActorName contextKey = "actor_name"
	ctxActorRole contextKey = "actor_role"
)

const (
	ActorRoleHeader = "X-Actor-Role"
	ActorNameHeader = "X-Actor-Name"
)

// ActorFromContext returns the header-supplied actor, if any. Request bodies
// that carry user_role/employee_name take precedence in the controllers.
func ActorFromContext(ctx context.Context) (name, role string) {
	if ctx == nil {
		return "", ""
	}
	name, _ = ctx.Value(ctxActorName).(string)
	role, _ = ctx.Value(ctxActorRole).(string)
	return name, role
}

// WithActor injects the acting employee into the context.
func WithActor(ctx context.Context, name, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActorName, name)
	return context.WithValue(ctx, ctxActorRole, role)
}

// Actor reads the actor headers into the request context and log fields.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(ActorNameHeader))
			role := strings.TrimSpace(r.Header.Get(ActorRoleHeader))
			if name == "" && role == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithActor(r.Context(), name, role)
			if logg != nil {
				ctx = logg.WithActor(ctx, name, role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
