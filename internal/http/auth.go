package http

import (
	"context"
	"net/http"
	"strings"
)

type identityKey struct{}

// Identity is what the auth gateway tells us about the caller.
type Identity struct {
	ID    string
	Email string
	Name  string
	Admin bool
}

func identityFromRequest(r *http.Request) Identity {
	return Identity{
		ID:    strings.TrimSpace(r.Header.Get("X-User-Id")),
		Email: strings.TrimSpace(r.Header.Get("X-User-Email")),
		Name:  strings.TrimSpace(r.Header.Get("X-User-Name")),
		Admin: strings.EqualFold(r.Header.Get("X-User-Role"), "admin"),
	}
}

func identityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// requireApproval rejects unauthenticated callers and files an access
// request the first time an unapproved user shows up. Admins skip the gate.
func (s *Server) requireApproval(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFromRequest(r)
		if id.ID == "" || id.Email == "" {
			writeError(w, http.StatusUnauthorized, "missing identity")
			return
		}

		if !id.Admin {
			approved, err := s.approvals.Check(r.Context(), id.Email, id.Name)
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			if !approved {
				writeError(w, http.StatusForbidden, "access pending approval")
				return
			}
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin guards the access-request management endpoints.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !identityFromContext(r.Context()).Admin {
		writeError(w, http.StatusForbidden, "admin only")
		return false
	}
	return true
}
