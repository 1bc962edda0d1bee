package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/susu3304/pokerclub/internal/club"
)

const tokenTTL = 24 * time.Hour

type Claims struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Role     club.Role `json:"role"`
	jwt.RegisteredClaims
}

var errNoToken = errors.New("missing authorization header")

func (a *API) issueToken(u club.User, now time.Time) (string, error) {
	claims := &Claims{
		UserID:   u.DiscordID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return s, nil
}

func (a *API) parseBearer(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		// EventSource cannot set headers
		if t := r.URL.Query().Get("token"); t != "" {
			authHeader = "Bearer " + t
		} else {
			return nil, errNoToken
		}
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errors.New("invalid authorization header")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

const stateCookie = "pokerclub_oauth_state"

// Auth handlers
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := generateRandomString(32)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": a.oauthConfig.AuthCodeURL(state),
		"state":    state,
	})
}

// checkState matches the callback state against the cookie set by handleLogin
// and clears the cookie either way.
func checkState(w http.ResponseWriter, r *http.Request) bool {
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth", MaxAge: -1})
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" {
		return false
	}
	got := r.URL.Query().Get("state")
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.Value)) == 1
}

func (a *API) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !checkState(w, r) {
		a.log.Warn().Str("remote", r.RemoteAddr).Msg("oauth state mismatch")
		a.loginFailed(w, r, http.StatusBadRequest, "invalid_state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		a.loginFailed(w, r, http.StatusBadRequest, "missing_code")
		return
	}

	token, err := a.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		a.log.Warn().Err(err).Msg("token exchange failed")
		a.loginFailed(w, r, http.StatusBadGateway, "token_exchange_failed")
		return
	}
	du, err := a.fetchUser(r.Context(), token)
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to get discord user")
		a.loginFailed(w, r, http.StatusBadGateway, "failed_to_get_user")
		return
	}

	u, err := a.users.Login(r.Context(), du.ID, du.DisplayName())
	if err != nil {
		a.writeError(w, err)
		return
	}
	tokenString, err := a.issueToken(u, time.Now())
	if err != nil {
		a.loginFailed(w, r, http.StatusInternalServerError, "failed_to_create_token")
		return
	}
	a.log.Info().Str("user_id", u.DiscordID).Str("role", string(u.Role)).Msg("user logged in")

	if base := a.config.WebUIBaseURL; base != "" {
		// Redirect to the web UI with the token in the URL fragment
		http.Redirect(w, r, base+"/login?success=true#token="+url.QueryEscape(tokenString), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":    tokenString,
		"user_id":  u.DiscordID,
		"username": u.Username,
		"role":     u.Role,
	})
}

func (a *API) loginFailed(w http.ResponseWriter, r *http.Request, status int, reason string) {
	if base := a.config.WebUIBaseURL; base != "" {
		http.Redirect(w, r, base+"/login?error="+reason, http.StatusSeeOther)
		return
	}
	writeMessage(w, status, reason)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":    actor.ID,
		"role":       actor.Role,
		"can_manage": actor.CanManage(),
	})
}
