package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bankgate/pkg/jwtx"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
)

// AuthnMiddleware requires a bearer token carrying a session id.
//
// On success the verified claims are stored on the request context, where
// SessionIDFromContext and ClaimsFromContext find them, and the request
// logger is tagged with the session id. Any other request gets a 401 with a
// WWW-Authenticate challenge and never reaches next.
//
// The middleware only proves the token is genuine. Whether the session is
// still live is left to the handler.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if claims.SID == "" {
				writeBearerError(w, "token is not bound to a session")
				return
			}

			ctx = ContextWithClaims(ctx, claims)
			ctx = slogx.WithSession(ctx, claims.SID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, raw, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
