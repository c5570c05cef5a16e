package web

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// requireAuth wraps a handler with HTTP basic auth. The supplied password is
// checked against the server's bcrypt hash; the username is ignored. When no
// hash is configured the handler is returned unwrapped.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.authHash == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		_, password, ok := r.BasicAuth()
		if !ok || bcrypt.CompareHashAndPassword([]byte(s.authHash), []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="maia-collar"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// HashPassword returns a bcrypt hash suitable for the -auth-hash flag.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
