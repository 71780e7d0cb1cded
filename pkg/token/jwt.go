package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"socialgram/pkg/apperr"
	"socialgram/pkg/utils"
)

var (
	ErrInvalidToken   = apperr.Unauthenticated("Invalid or revoked token")
	ErrExpiredToken   = apperr.Unauthenticated("Token has expired")
	ErrMalformedToken = apperr.Unauthenticated("Malformed token")
)

type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Issuer mints HS256 access/refresh pairs. Tokens carry identity only;
// endpoints still gate on the account's auth progression. Every refresh
// token's jti is kept in Redis for its full TTL, so revocation is a delete
// and an absent key means the token is no longer honored.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	rdb        *redis.Client
	log        *zap.Logger
}

func NewIssuer(config utils.JWTConfig, rdb *redis.Client, log *zap.Logger) *Issuer {
	return &Issuer{
		secret:     []byte(config.Secret),
		issuer:     config.Issuer,
		accessTTL:  time.Duration(config.AccessExpiryMins) * time.Minute,
		refreshTTL: time.Duration(config.RefreshExpiryDays) * 24 * time.Hour,
		rdb:        rdb,
		log:        log.With(zap.String("component", "token_issuer")),
	}
}

func refreshKey(jti string) string {
	return "refresh:" + jti
}

// IssuePair signs a fresh access+refresh pair for the user and registers the
// refresh jti in Redis.
func (i *Issuer) IssuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := time.Now().UTC()

	access, err := i.sign(userID, uuid.New().String(), now, now.Add(i.accessTTL))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshID := uuid.New().String()
	refresh, err := i.sign(userID, refreshID, now, now.Add(i.refreshTTL))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := i.rdb.Set(ctx, refreshKey(refreshID), userID.String(), i.refreshTTL).Err(); err != nil {
		i.log.Error("Failed to register refresh token",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("register refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(i.accessTTL.Seconds()),
	}, nil
}

// ValidateAccess verifies an access token and returns the account id it
// identifies. Expired and malformed tokens fail with distinct errors.
func (i *Issuer) ValidateAccess(tokenStr string) (uuid.UUID, error) {
	claims, err := i.parse(tokenStr)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrMalformedToken
	}

	return userID, nil
}

// Refresh rotates a refresh token: the old jti is consumed atomically and a
// new pair is issued for the same account.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (uuid.UUID, *TokenPair, error) {
	claims, err := i.parse(refreshToken)
	if err != nil {
		return uuid.Nil, nil, err
	}

	stored, err := i.rdb.GetDel(ctx, refreshKey(claims.ID)).Result()
	if err == redis.Nil {
		return uuid.Nil, nil, ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("consume refresh token: %w", err)
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return uuid.Nil, nil, ErrMalformedToken
	}

	pair, err := i.IssuePair(ctx, userID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	return userID, pair, nil
}

// Revoke invalidates a refresh token. Unknown or already-revoked tokens fail.
func (i *Issuer) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := i.parse(refreshToken)
	if err != nil {
		return err
	}

	deleted, err := i.rdb.Del(ctx, refreshKey(claims.ID)).Result()
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if deleted == 0 {
		return ErrInvalidToken
	}

	return nil
}

func (i *Issuer) sign(userID uuid.UUID, jti string, now, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        jti,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) parse(tokenStr string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims

	parsed, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrExpiredToken
	}
	if err != nil || !parsed.Valid {
		return nil, ErrMalformedToken
	}

	return &claims, nil
}
