package auth

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUsername  = errors.New("missing username in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Capabilities checked by the HTTP layer before a request reaches the ledger
const (
	CapView            = "inventory.view"
	CapManageStock     = "inventory.manage"
	CapCommit          = "commitments.manage"
	CapReserve         = "reservations.manage"
	CapTransfer        = "transfers.manage"
	CapApproveTransfer = "transfers.approve"
	CapAudit           = "audits.manage"
	CapApproveAudit    = "audits.approve"
	CapPurchase        = "purchasing.manage"
	// CapAll grants every capability
	CapAll = "*"
)

// Claims identifies the actor. Usernames are recorded verbatim in history
// entries, so they are never rewritten after issue.
type Claims struct {
	jwt.RegisteredClaims
	Username     string   `json:"username"`
	Capabilities []string `json:"caps,omitempty"`
}

// Can reports whether the claims grant capability
func (c *Claims) Can(capability string) bool {
	return slices.Contains(c.Capabilities, CapAll) || slices.Contains(c.Capabilities, capability)
}

// RemainingTTL returns the time left before expiry, zero once expired
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// JWTService issues and validates HS256 bearer tokens
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a service from configuration
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// GenerateToken signs a token for username carrying capabilities
func (s *JWTService) GenerateToken(username string, capabilities []string) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, ErrMissingUsername
	}
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username:     username,
		Capabilities: capabilities,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateToken parses tokenString and returns its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, ErrMissingUsername
	}
	return claims, nil
}
