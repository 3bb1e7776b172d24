package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const stateCookie = "quizrr_oauth_state"

// Identify attaches the session user, if any, to the request context.
// Invalid or expired tokens are treated as anonymous.
func (s *Service) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFromRequest(r); token != "" {
			if u, err := s.ParseToken(token); err == nil {
				r = r.WithContext(WithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a session user. It must run after
// Identify.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Sign in required."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// LoginHandler redirects to Google's consent page.
func (s *Service) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.GoogleEnabled() {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "Google sign-in is not configured."})
			return
		}
		state := uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			Expires:  s.now().Add(10 * time.Minute),
		})
		http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
	}
}

// CallbackHandler completes the OAuth flow, sets the session cookie and
// redirects to the application root.
func (s *Service) CallbackHandler(log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.GoogleEnabled() {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "Google sign-in is not configured."})
			return
		}
		c, err := r.Cookie(stateCookie)
		if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state"})
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing code"})
			return
		}

		u, err := s.exchange(r, code)
		if err != nil {
			log.WithError(err).Warn("google sign-in failed")
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Sign-in failed."})
			return
		}

		token, err := s.IssueToken(*u)
		if err != nil {
			log.WithError(err).Error("issue session token")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Sign-in failed."})
			return
		}

		http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})
		s.setSession(w, token)
		log.WithField("user_id", u.ID).Info("user signed in")
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// LogoutHandler clears the session cookie.
func (s *Service) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Service) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

// exchange trades the code for a token and fetches the Google profile.
func (s *Service) exchange(r *http.Request, code string) (*User, error) {
	ctx := r.Context()
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo has no subject")
	}
	return &User{ID: info.Sub, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
