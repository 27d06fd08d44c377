package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Require rejects requests without a valid bearer token and stores the
// identity in the request context.
func (v *Verifier) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := v.identityFromRequest(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// RequireAdmin additionally rejects callers whose role is not admin.
func (v *Verifier) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return v.Require(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		if id.Role != RoleAdmin {
			writeAuthError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}

func (v *Verifier) identityFromRequest(r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return Identity{}, false
	}

	id, err := v.Parse(token)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
