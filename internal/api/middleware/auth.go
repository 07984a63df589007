package middleware

import (
	"net/http"

	"github.com/mcoot/spyword/internal/api/apierr"
)

// AdminSecretHeader carries the shared admin secret
const AdminSecretHeader = "X-Admin-Secret"

// SecretVerifier checks an admin secret
type SecretVerifier interface {
	Verify(secret string) error
}

// AdminAuth rejects requests that do not present the admin secret
func AdminAuth(verifier SecretVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret := r.Header.Get(AdminSecretHeader)
			if secret == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			if err := verifier.Verify(secret); err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
