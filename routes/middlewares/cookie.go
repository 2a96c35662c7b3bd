package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/oauth"

	"github.com/mbolis/wellness-hub/httpx"
	"github.com/mbolis/wellness-hub/log"
)

const refreshCookieAge = 60 * 60 * 24 * 365

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
}

// CookieAuth lets page requests authenticate with the access_token cookie.
// When the access token is missing or expired the refresh_token cookie is
// traded for a new pair, otherwise the browser goes to the login page.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie("access_token")
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				httpx.LogInternalError(w, "cookie_auth.access_token", err)
				return
			}
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					buf.Flush(w)
					return
				}
			}

			loginLocation := "/?goto=" + url.QueryEscape(r.RequestURI)

			refreshToken, err := r.Cookie("refresh_token")
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					httpx.LogInternalError(w, "cookie_auth.refresh_token", err)
					return
				}
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			}

			tokens, status, err := refresh(bearerServer, refreshToken.Value)
			if err != nil {
				httpx.LogInternalError(w, "cookie_auth.refresh", err)
				return
			}
			switch status {
			case http.StatusOK:
			case http.StatusUnauthorized:
				log.Debug("cookie_auth.refresh: token rejected")
				setCookie(w, "refresh_token", "", -1)
				http.Redirect(w, r, loginLocation, http.StatusTemporaryRedirect)
				return
			default:
				httpx.LogStatus(w, status, log.WarnLevel, "cookie_auth.refresh.status")
				return
			}

			setCookie(w, "access_token", tokens.AccessToken, int(tokens.ExpiresIn))
			setCookie(w, "refresh_token", tokens.RefreshToken, refreshCookieAge)

			r.Header.Set("authorization", "Bearer "+tokens.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}

// refresh runs a refresh_token grant against the bearer server.
func refresh(bearerServer *oauth.BearerServer, refreshToken string) (tokenResponse, int, error) {
	var tokens tokenResponse

	req, err := RefreshGrant(refreshToken)
	if err != nil {
		return tokens, 0, err
	}
	resp := httpx.NewResponseBuffer()
	bearerServer.UserCredentials(resp, req)

	status := resp.Status()
	if status == 0 {
		status = http.StatusOK
	}
	if status != http.StatusOK {
		return tokens, status, nil
	}
	err = json.Unmarshal(resp.Body(), &tokens)
	return tokens, status, err
}

// RefreshGrant builds the form request the bearer server expects for a
// refresh_token grant.
func RefreshGrant(refreshToken string) (*http.Request, error) {
	body := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}.Encode()

	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body)))
	return req, nil
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: name == "refresh_token",
		SameSite: http.SameSiteLaxMode,
	})
}
