package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/inventory-admin/models"
)

var (
	// ErrInvalidToken is returned when the token is malformed, badly signed or for another issuer or audience
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token is outside its validity window
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the claim set of an issued token
type TokenClaims struct {
	Email    string `json:"email"`
	UserID   string `json:"uid"`
	FullName string `json:"full_name"`
	RoleID   string `json:"role_id"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing settings shared by issuance and validation
type TokenConfig struct {
	Key      string
	Issuer   string
	Audience string
	Duration time.Duration
}

// IssuedToken is a signed token with the claims it carries
type IssuedToken struct {
	Token  string
	Claims *TokenClaims
}

// ExpiresAt returns the end of the validity window
func (t *IssuedToken) ExpiresAt() time.Time {
	return t.Claims.ExpiresAt.Time
}

// TokenService issues and validates HS256 tokens.
// A token is valid from nbf while the current time is before exp.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		duration: cfg.Duration,
		now:      time.Now,
	}
}

// WithClock returns a copy of the service reading time from now
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for the user valid over [now, now+duration]
func (s *TokenService) Issue(user *models.User) (*IssuedToken, error) {
	now := s.now().UTC()
	claims := &TokenClaims{
		Email:    user.Email,
		UserID:   user.ID,
		FullName: user.Fullname,
		RoleID:   user.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserName,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &IssuedToken{Token: signed, Claims: claims}, nil
}

// Validate checks signature, issuer, audience and validity window with no leeway
func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	return claims, nil
}
