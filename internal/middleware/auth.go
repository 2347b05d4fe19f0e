package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUserNotFound is returned by UserResolver when no user matches the token subject.
var ErrUserNotFound = errors.New("user not found")

const unauthorizedMessage = "Not authorized"

// UserResolver resolves a verified token subject to a user id.
// Implementations must return ErrUserNotFound (or a wrapped form) when the user does not exist.
type UserResolver interface {
	ResolveUserID(ctx context.Context, sub string) (string, error)
}

// AuthConfig selects how the gate identifies callers. DevMode trusts the
// X-User-ID header. Otherwise a non-empty Secret verifies HS256 tokens
// and a JWKSClient verifies RS256 tokens.
type AuthConfig struct {
	DevMode      bool
	Secret       []byte
	JWKSClient   *JWKSClient
	Issuer       string
	Audience     string
	UserResolver UserResolver
}

type Auth struct {
	cfg AuthConfig
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if cfg.DevMode {
		return &Auth{cfg: cfg}, nil
	}
	if cfg.UserResolver == nil {
		return nil, fmt.Errorf("middleware: UserResolver is required when DevMode is false")
	}
	if len(cfg.Secret) == 0 && cfg.JWKSClient == nil {
		return nil, fmt.Errorf("middleware: Secret or JWKSClient is required when DevMode is false")
	}
	return &Auth{cfg: cfg}, nil
}

// Middleware rejects requests without a valid credential. It wraps only
// the routes that need an identity.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.DevMode {
			a.handleDevMode(w, r, next)
			return
		}
		a.handleJWT(w, r, next)
	})
}

func (a *Auth) handleDevMode(w http.ResponseWriter, r *http.Request, next http.Handler) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
}

func (a *Auth) handleJWT(w http.ResponseWriter, r *http.Request, next http.Handler) {
	tokenStr, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	sub, err := a.verify(tokenStr)
	if err != nil {
		slog.DebugContext(r.Context(), "token rejected", "error", err)
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	userID, err := a.cfg.UserResolver.ResolveUserID(r.Context(), sub)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, unauthorizedMessage)
		} else {
			slog.ErrorContext(r.Context(), "user resolution failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Server Error")
		}
		return
	}

	next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
}

// verify checks the signature and registered claims and returns the subject.
func (a *Auth) verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}

	var keyFunc jwt.Keyfunc
	if len(a.cfg.Secret) > 0 {
		opts = append(opts, jwt.WithValidMethods([]string{"HS256"}))
		keyFunc = func(*jwt.Token) (any, error) {
			return a.cfg.Secret, nil
		}
	} else {
		opts = append(opts, jwt.WithValidMethods([]string{"RS256"}))
		keyFunc = func(token *jwt.Token) (any, error) {
			kid, ok := token.Header["kid"].(string)
			if !ok {
				return nil, fmt.Errorf("kid header not found")
			}
			return a.cfg.JWKSClient.GetKey(kid)
		}
	}

	token, err := jwt.Parse(tokenStr, keyFunc, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", fmt.Errorf("sub claim not found")
	}
	return sub, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CognitoJWKSURL returns the JWKS URL for the given Cognito User Pool.
func CognitoJWKSURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json", region, userPoolID)
}

// CognitoIssuer returns the expected issuer for the given Cognito User Pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}
