// Package inspector is the optional HTTP+websocket surface for observing
// a running hub from the outside: stream/agent listing, a live event
// feed, and board reads. It is grounded on the teacher's hub/internal/api
// and hub/internal/auth packages, generalized from the teacher's
// session/runtime SaaS model down to a read-mostly view over a single
// in-process Hub.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/amurg-ai/streamkit/internal/config"
)

// ErrUnauthorized is returned by Provider.ValidateToken for any invalid
// or expired credential.
var ErrUnauthorized = errors.New("inspector: unauthorized")

// Identity is the authenticated caller behind a request.
type Identity struct {
	Subject string
	Role    string // "admin" or "viewer"
}

// Provider validates a bearer token and returns the caller's identity.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Identity, error)
}

// Claims is the JWT claim shape the HMAC path issues and expects; the
// JWKS path (external issuer) only needs the registered claims plus role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service validates tokens either against a remote JWKS (cfg.JWKSURL set,
// grounded on the teacher's ClerkProvider) or a local HMAC secret plus an
// optional bcrypt-hashed static bootstrap token for headless use.
type Service struct {
	jwks      keyfunc.Keyfunc // nil unless cfg.JWKSURL is set
	jwtSecret []byte
	bootstrapHash string
}

// NewService builds a Service from cfg. When cfg.BootstrapTokenHash is
// set, a token is first bcrypt-compared against it. Otherwise, when
// cfg.JWKSURL is set, the JWKS is fetched eagerly (background-refreshed
// by keyfunc) and JWTSecret is ignored; without a JWKS URL tokens are
// verified as HMAC-signed JWTs using cfg.JWTSecret.
func NewService(cfg config.InspectorConfig) (*Service, error) {
	s := &Service{
		jwtSecret:     []byte(cfg.JWTSecret),
		bootstrapHash: cfg.BootstrapTokenHash,
	}
	if cfg.JWKSURL != "" {
		jwks, err := keyfunc.NewDefault([]string{cfg.JWKSURL})
		if err != nil {
			return nil, fmt.Errorf("fetch JWKS from %s: %w", cfg.JWKSURL, err)
		}
		s.jwks = jwks
	}
	return s, nil
}

// ValidateToken accepts either a JWT (validated against JWKS or the HMAC
// secret) or, when a bootstrap hash is configured, the raw bootstrap
// token string itself.
func (s *Service) ValidateToken(ctx context.Context, token string) (*Identity, error) {
	if s.bootstrapHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.bootstrapHash), []byte(token)); err == nil {
			return &Identity{Subject: "bootstrap", Role: "admin"}, nil
		}
	}

	if s.jwks != nil {
		return s.validateJWKS(ctx, token)
	}
	return s.validateHMAC(token)
}

func (s *Service) validateJWKS(ctx context.Context, tokenStr string) (*Identity, error) {
	parsed, err := jwt.Parse(tokenStr, s.jwks.KeyfuncCtx(ctx), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrUnauthorized
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = "viewer"
	}
	return &Identity{Subject: sub, Role: role}, nil
}

func (s *Service) validateHMAC(tokenStr string) (*Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	role := claims.Role
	if role == "" {
		role = "viewer"
	}
	return &Identity{Subject: claims.Subject, Role: role}, nil
}

// IssueToken signs an HS256 bearer token for subject/role, for hosts
// running without an external JWKS issuer (e.g. streamkitctl serve).
func (s *Service) IssueToken(subject, role string, ttl time.Duration) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("inspector: no JWT secret configured")
	}
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// HashBootstrapToken bcrypt-hashes a raw bootstrap token for storage in
// config.InspectorConfig.BootstrapTokenHash.
func HashBootstrapToken(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
