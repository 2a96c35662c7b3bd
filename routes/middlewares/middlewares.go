package middlewares

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
	"github.com/mbolis/wellness-hub/model"
)

type callerKey struct{}

// Authorize checks the bearer token and stores the identity it carries.
// A missing or invalid token is answered with 401.
func Authorize(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), identify).Handler(next)
	}
}

func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		uid, err := strconv.ParseInt(claims[httpx.ClaimUserID], 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.claims.uid")
			return
		}
		caller := model.Caller{UserID: uid, Role: model.Role(claims[httpx.ClaimRole])}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func WithCaller(ctx context.Context, caller model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// Caller returns the identity stored by Authorize, or the zero Caller.
func Caller(r *http.Request) model.Caller {
	caller, _ := r.Context().Value(callerKey{}).(model.Caller)
	return caller
}

// RequireRole answers 403 unless the caller has the given role.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Caller(r).Role != role {
				httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "auth.role."+string(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PageRole sends callers without the given role back to the home page.
func PageRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Caller(r).Role != role {
				log.Debugf("auth.page_role.%s: redirect %s", role, r.URL.Path)
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
