package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"provl/internal/auth"
)

// withAuth enforces the optional API bearer token. When no token is
// configured the API is open, which is the expected mode for a local
// single-operator deployment.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if subtle.ConstantTimeCompare([]byte(bearerToken(r)), []byte(s.apiToken)) != 1 {
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("missing or invalid API token")))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// requireOperator authenticates the anchor trigger against the stored
// operator credential. Anchoring without a configured credential is refused
// outright rather than silently open.
func (s *Server) requireOperator(w http.ResponseWriter, r *http.Request) bool {
	hash, err := s.svc.Store().GetOperatorPasswordHash(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return false
	}
	if hash == "" {
		s.writeErrorReq(w, r, http.StatusForbidden,
			forbidden(fmt.Errorf("no operator password set; run 'provl admin set-password' first")))
		return false
	}

	_, password, ok := r.BasicAuth()
	if !ok || !auth.VerifyPassword(hash, password) {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("invalid operator password")))
		return false
	}
	return true
}
