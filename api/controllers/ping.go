package controllers

import (
	"net/http"

	"github.com/paintqueue/paintqueue-backend/api/middleware"
	"github.com/paintqueue/paintqueue-backend/api/responses"
)

// Ping echoes the actor the server resolved from the request headers.
func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"status": "ok"}
		name, role := middleware.ActorFromContext(r.Context())
		if name != "" {
			payload["actor_name"] = name
		}
		if role != "" {
			payload["actor_role"] = role
		}
		responses.WriteSuccess(w, payload)
	}
}
