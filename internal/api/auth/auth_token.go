package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/devconnector-api/config"
	"github.com/FACorreiaa/devconnector-api/internal/api"
	"github.com/FACorreiaa/devconnector-api/internal/types"
)

var _ TokenService = (*JWTTokenService)(nil)

// TokenService issues and verifies self-contained bearer tokens.
type TokenService interface {
	// Issue signs a token for userID that expires after the configured TTL.
	Issue(userID uuid.UUID) (string, error)
	// Verify checks signature, issuer and expiry and returns the embedded
	// identity. It never touches storage.
	Verify(token string) (uuid.UUID, error)
}

// JWTTokenService implements TokenService with HS256 JWTs.
type JWTTokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from the JWT configuration.
func NewTokenService(cfg config.JWTConfig) *JWTTokenService {
	return &JWTTokenService{
		secret:   []byte(cfg.SecretKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *JWTTokenService) WithClock(now func() time.Time) *JWTTokenService {
	s.now = now
	return s
}

func (s *JWTTokenService) Issue(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := types.Claims{
		User: types.TokenUser{ID: userID.String()},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTTokenService) Verify(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &types.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %v", api.ErrExpiredToken, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %v", api.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.User.ID)
	if err != nil || claims.Subject != claims.User.ID {
		return uuid.Nil, fmt.Errorf("%w: malformed identity claim", api.ErrInvalidToken)
	}
	return userID, nil
}
