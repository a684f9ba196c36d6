package mcp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Strob0t/toolgate/internal/wrapper"
)

// authMiddleware is the only place that parses Authorization. A missing or
// malformed bearer token yields 401 "Missing or invalid Authorization
// header"; an unresolvable token yields 401 "Invalid token". On success the
// resolved identity is attached to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeAuthError(w, "Missing or invalid Authorization header")
			return
		}

		identity, ok := s.auth.Resolve(token)
		if !ok {
			writeAuthError(w, "Invalid token")
			return
		}

		ctx := wrapper.WithIdentity(r.Context(), gatewayIdentity(identity))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
