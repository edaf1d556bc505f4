package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"autoboard/contexts/marketplace/listing-service/domain/entities"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid bearer token")

type principalClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// bearerAuthenticator turns an optional HS256 bearer token into a principal.
// A request without Authorization is an anonymous guest.
type bearerAuthenticator struct {
	secret []byte
}

func (a bearerAuthenticator) principal(r *http.Request) (entities.Principal, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return entities.Principal{}, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" || len(a.secret) == 0 {
		return entities.Principal{}, errInvalidToken
	}

	claims := &principalClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return entities.Principal{}, errInvalidToken
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return entities.Principal{}, errInvalidToken
	}
	return entities.Principal{
		UserID: subject,
		Email:  strings.TrimSpace(claims.Email),
	}, nil
}

type principalHandler func(w http.ResponseWriter, r *http.Request, principal entities.Principal)

// withPrincipal guards member-only routes: a missing or invalid token is 401.
func (s *Server) withPrincipal(next principalHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.auth.principal(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", err.Error(), nil)
			return
		}
		if !principal.Authenticated() {
			writeError(w, http.StatusUnauthorized, "missing_token", "bearer token is required", nil)
			return
		}
		next(w, r, principal)
	}
}

// optionalPrincipal is used by routes open to guests.
func (s *Server) optionalPrincipal(w http.ResponseWriter, r *http.Request) (entities.Principal, bool) {
	principal, err := s.auth.principal(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", err.Error(), nil)
		return entities.Principal{}, false
	}
	return principal, true
}
