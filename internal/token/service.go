package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Access tokens are short-lived; the profile snapshot they carry can go
	// stale for at most this long before a refresh re-reads the user record.
	AccessTTL = 24 * time.Hour
	// Refresh tokens only reference the user id, so a long lifetime is safe.
	RefreshTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken is the only verification failure callers ever see.
// Signature, expiry, shape and type-mismatch problems all collapse into it.
var ErrInvalidToken = errors.New("token: invalid token")

// Pair bundles a freshly signed access/refresh token couple.
type Pair struct {
	Access  string
	Refresh string
}

// Service signs and verifies the service's stateless identity tokens with a
// shared HS256 secret.
type Service struct {
	secret     []byte
	now        func() time.Time
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// NewService constructs a Service. An empty secret is a configuration error:
// the caller is expected to abort startup, not retry per request.
func NewService(secret string, opts ...Option) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token: signing secret is not configured")
	}
	s := &Service{
		secret:     []byte(secret),
		now:        time.Now,
		accessTTL:  AccessTTL,
		refreshTTL: RefreshTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssuePair signs an access token from the given profile snapshot and a
// refresh token from its id. No store writes happen here.
func (s *Service) IssuePair(p Profile) (Pair, error) {
	now := s.now().UTC()

	access := AccessClaims{
		Type:          KindAccess,
		ID:            p.ID,
		Email:         p.Email,
		Name:          p.Name,
		CompetenciaID: p.CompetenciaID,
		CreatedAtRaw:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtRaw:  p.UpdatedAt.UTC().Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	refresh := RefreshClaims{
		Type: KindRefresh,
		User: p.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &access).SignedString(s.secret)
	if err != nil {
		return Pair{}, err
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &refresh).SignedString(s.secret)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: accessToken, Refresh: refreshToken}, nil
}

// VerifyAccess checks signature, expiry and shape and returns the decoded
// access claims. Any failure is ErrInvalidToken.
func (s *Service) VerifyAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh checks signature, expiry and shape and returns the decoded
// refresh claims. Any failure is ErrInvalidToken.
func (s *Service) VerifyRefresh(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(raw, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parse(raw string, claims jwt.Claims) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
