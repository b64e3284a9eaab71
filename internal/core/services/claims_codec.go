package services

import (
	"errors"
	"fmt"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMalformedCredential = errors.New("malformed credential")
	ErrSignatureInvalid    = errors.New("credential signature invalid")
	ErrExpired             = errors.New("credential expired")
	ErrInvalidTTL          = errors.New("credential ttl must be at least one second")
)

// CodecConfig is the process-wide signing configuration. It is built once at
// startup and handed to the codec; rotating the secret means building a new codec.
type CodecConfig struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

type credentialClaims struct {
	SubjectID    int64  `json:"uid"`
	Role         string `json:"role"`
	PublisherID  int64  `json:"pub,omitempty"`
	AdminSubtype string `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

type claimsCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewClaimsCodec(cfg CodecConfig) ports.ClaimsCodec {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &claimsCodec{
		secret: secret,
		issuer: cfg.Issuer,
		now:    now,
	}
}

func (c *claimsCodec) Issue(claims domain.ClaimSet, ttl time.Duration) (string, error) {
	if ttl < time.Second {
		return "", ErrInvalidTTL
	}

	issuedAt := c.now().Truncate(time.Second)
	claims.IssuedAt = issuedAt
	claims.ExpiresAt = issuedAt.Add(ttl)
	if claims.ID == "" {
		claims.ID = uuid.New().String()
	}
	if err := claims.Validate(); err != nil {
		return "", err
	}

	wire := &credentialClaims{
		SubjectID: claims.SubjectID,
		Role:      string(claims.Role.Kind()),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			NotBefore: jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}
	switch r := claims.Role.(type) {
	case domain.Publisher:
		wire.PublisherID = r.PublisherID
	case domain.Admin:
		wire.AdminSubtype = string(r.Subtype)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wire)
	return token.SignedString(c.secret)
}

func (c *claimsCodec) Verify(credential string) (*domain.ClaimSet, error) {
	if credential == "" {
		return nil, ErrMalformedCredential
	}

	// Expiry is decided before the signature: a stale credential is reported
	// as expired whether or not it was ever validly signed.
	var unverified credentialClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &unverified); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if unverified.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrMalformedCredential)
	}
	if !c.now().Before(unverified.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var verified credentialClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(credential, &verified, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrSignatureInvalid
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}

	role, err := domain.NewRole(verified.Role, verified.PublisherID, verified.AdminSubtype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	if verified.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing issue time", ErrMalformedCredential)
	}

	claims := &domain.ClaimSet{
		ID:        verified.ID,
		SubjectID: verified.SubjectID,
		Role:      role,
		IssuedAt:  verified.IssuedAt.Time.UTC(),
		ExpiresAt: verified.ExpiresAt.Time.UTC(),
	}
	if err := claims.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}
	return claims, nil
}
