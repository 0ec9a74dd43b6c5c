package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUnknownRole  = errors.New("unknown role")
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Role constants.Role `json:"role"`
}

// TokenIssuer signs HS256 session tokens with a separate secret per role, so
// a candidate token can never pass a volunteer or admin check. Logged out
// token ids are kept in the cache until they would have expired anyway.
type TokenIssuer struct {
	secrets map[constants.Role][]byte
	ttl     time.Duration
	cache   common.CacheInterface
	now     func() time.Time
}

func NewTokenIssuer(secrets map[constants.Role]string, ttl time.Duration, cache common.CacheInterface) *TokenIssuer {
	keys := make(map[constants.Role][]byte, len(secrets))
	for role, secret := range secrets {
		keys[role] = []byte(secret)
	}
	return &TokenIssuer{secrets: keys, ttl: ttl, cache: cache, now: time.Now}
}

// TTL is the lifetime of tokens issued by Issue.
func (s *TokenIssuer) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject under role.
func (s *TokenIssuer) Issue(subject string, role constants.Role) (string, time.Time, error) {
	key, ok := s.secrets[role]
	if !ok || len(key) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses tokenString with the secret of role and rejects revoked ids.
func (s *TokenIssuer) Verify(ctx context.Context, tokenString string, role constants.Role) (*JWTClaims, error) {
	key, ok := s.secrets[role]
	if !ok || len(key) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Role != role || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return &JWTClaims{
		UserUUID:  claims.Subject,
		RoleValue: claims.Role,
		JTI:       claims.ID,
		Expiry:    exp,
	}, nil
}

// Revoke denies tokenID until expiresAt.
func (s *TokenIssuer) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, string(constants.CachePrefixRevokedToken)+tokenID, []byte("1"), ttl)
}

func (s *TokenIssuer) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := s.cache.Get(ctx, string(constants.CachePrefixRevokedToken)+tokenID)
	return found, err
}
