package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const operatorPINHeader = "X-Operator-PIN"

// requireOperator guards mutating routes with the venue PIN. Without a
// configured hash every caller is an operator.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.pinHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		if checkPIN(s.pinHash, strings.TrimSpace(r.Header.Get(operatorPINHeader))) {
			next.ServeHTTP(w, r)
			return
		}
		writeError(w, http.StatusUnauthorized, "operator pin required")
	})
}

func checkPIN(hash string, pin string) bool {
	if hash == "" || pin == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

type Flusher interface {
	Flush()
}

// FlushAfter holds each response until the side effects it queued have run.
func FlushAfter(f Flusher, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		f.Flush()
	})
}
