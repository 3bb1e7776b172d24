// Package auth issues and verifies session tokens and handles Google
// sign-in. A session is an HS256 JWT carried in the quizrr_session cookie
// or an Authorization bearer header.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// SessionCookie is the cookie holding the session token.
const SessionCookie = "quizrr_session"

const (
	issuer             = "quizrr"
	defaultSessionTTL  = 7 * 24 * time.Hour
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// ErrNoSecret is returned when no signing secret is configured.
var ErrNoSecret = errors.New("auth: JWT secret is not configured")

// Config holds session and Google sign-in settings. Google sign-in is
// disabled when GoogleClientID is empty.
type Config struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	SecureCookie       bool          `yaml:"secure_cookie"`
	GoogleClientID     string        `yaml:"google_client_id"`
	GoogleClientSecret string        `yaml:"google_client_secret"`
	RedirectURL        string        `yaml:"redirect_url"`

	// Endpoint overrides, mainly for tests.
	AuthURL     string `yaml:"-"`
	TokenURL    string `yaml:"-"`
	UserInfoURL string `yaml:"-"`
}

// User is the signed-in identity.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Claims is the session token payload. The subject is the user id.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Service signs sessions and runs the Google OAuth flow.
type Service struct {
	secret      []byte
	ttl         time.Duration
	secure      bool
	oauth       *oauth2.Config
	userInfoURL string
	now         func() time.Time
}

// New creates a Service. It fails without a JWT secret.
func New(cfg Config) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrNoSecret
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	s := &Service{
		secret:      []byte(cfg.JWTSecret),
		ttl:         ttl,
		secure:      cfg.SecureCookie,
		userInfoURL: orDefault(cfg.UserInfoURL, defaultUserInfoURL),
		now:         time.Now,
	}
	if cfg.GoogleClientID != "" {
		s.oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  orDefault(cfg.AuthURL, defaultAuthURL),
				TokenURL: orDefault(cfg.TokenURL, defaultTokenURL),
			},
		}
	}
	return s, nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (s *Service) GoogleEnabled() bool {
	return s.oauth != nil
}

// IssueToken signs a session token for u.
func (s *Service) IssueToken(u User) (string, error) {
	now := s.now()
	claims := &Claims{
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a session token and returns its user.
func (s *Service) ParseToken(token string) (*User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &User{
		ID:      claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

type ctxKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the signed-in user, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ctxKey{}).(*User)
	return u
}

// UserID returns the signed-in user's id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
