package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/timecapsule/internal/common"
)

// Claims are the session token claims: the registered set plus the partner.
type Claims struct {
	jwt.RegisteredClaims
	Partner string `json:"partner"`
}

// Codec signs and verifies session tokens with HS256.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec refuses secrets shorter than common.MinSecretLength bytes.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < common.MinSecretLength {
		return nil, common.ErrSecretTooShort
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &Codec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL is the validity period of issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a token binding partner until now+TTL.
func (c *Codec) Issue(partner Partner) (string, error) {
	if !partner.Valid() {
		return "", common.ErrUnknownIdentity
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Partner: string(partner),
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks signature, expiry and identity. Errors are one of
// ErrInvalidSignature, ErrTokenExpired, ErrMalformedPayload or
// ErrUnknownIdentity.
func (c *Codec) Verify(tokenString string) (Partner, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", classify(err)
	}
	if !token.Valid {
		return "", common.ErrInvalidSignature
	}

	partner := Partner(claims.Partner)
	if !partner.Valid() {
		return "", common.ErrUnknownIdentity
	}

	return partner, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", common.ErrMalformedPayload, err)
	}
}
