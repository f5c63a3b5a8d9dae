// Package auth issues and verifies stateless session tokens.
//
// Tokens are HS256 JWTs carrying the user id as the subject, the user's role
// and the issue and expiry times. Expiry is the only way a token stops being
// valid.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mnln/accounts/internal/common"
	"github.com/mnln/accounts/internal/server/models"
)

// TokenLifetime is the validity window of every issued token.
const TokenLifetime = 14 * 24 * time.Hour

// ErrEmptySigningKey is returned by NewCodec for an empty key.
var ErrEmptySigningKey = errors.New("auth: empty signing key")

// Claims is the decoded content of a session token.
type Claims struct {
	UserID    int64
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewClaims builds claims issued at now (truncated to whole seconds, the
// precision of the token format) and expiring TokenLifetime later.
func NewClaims(userID int64, role models.Role, now time.Time) Claims {
	iat := now.UTC().Truncate(time.Second)
	return Claims{
		UserID:    userID,
		Role:      role,
		IssuedAt:  iat,
		ExpiresAt: iat.Add(TokenLifetime),
	}
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// Codec signs and verifies tokens with a single symmetric key.
type Codec struct {
	key []byte
	now func() time.Time
}

func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, ErrEmptySigningKey
	}
	return &Codec{key: []byte(key), now: time.Now}, nil
}

// Sign encodes c as a compact HS256 JWT.
func (c *Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Role: claims.Role,
	})

	s, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks the signature, the algorithm and the expiry of token and
// returns its claims. Expired tokens yield common.ErrTokenExpired, every
// other failure common.ErrInvalidToken.
func (c *Codec) Verify(token string) (*Claims, error) {
	tc := &tokenClaims{}

	_, err := jwt.ParseWithClaims(token, tc, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q", common.ErrInvalidToken, tc.Subject)
	}
	if !tc.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q", common.ErrInvalidToken, tc.Role)
	}
	if tc.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat", common.ErrInvalidToken)
	}

	return &Claims{
		UserID:    userID,
		Role:      tc.Role,
		IssuedAt:  tc.IssuedAt.Time.UTC(),
		ExpiresAt: tc.ExpiresAt.Time.UTC(),
	}, nil
}
