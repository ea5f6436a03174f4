package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// RoleSupervisor marks a token minted for an administrator.
const RoleSupervisor = "supervisor"

// ErrInvalidToken is returned for any token that fails verification. The
// cause (bad signature, malformed, expired) is deliberately not exposed.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims represents the session claims carried by a token
type UserClaims struct {
	UserID     string `json:"userId"`
	Mobile     string `json:"mobile"`
	PropertyID string `json:"propertyId"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IsSupervisor reports whether the token carries the supervisor role
func (c *UserClaims) IsSupervisor() bool {
	return c != nil && c.Role == RoleSupervisor
}

// JWTUtil mints and verifies HS256 session tokens
type JWTUtil struct {
	signingKey []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTUtil creates a token utility. An empty signing key is a programming
// error: configuration validation rejects it at startup.
func NewJWTUtil(signingKey string, expiration time.Duration) (*JWTUtil, error) {
	if signingKey == "" {
		return nil, errors.New("JWT signing key not provided")
	}
	return &JWTUtil{
		signingKey: []byte(signingKey),
		expiration: expiration,
		now:        time.Now,
	}, nil
}

// WithClock overrides the time source, used by tests
func (j *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	j.now = now
	return j
}

// GenerateToken creates a signed token for a tenant session
func (j *JWTUtil) GenerateToken(userID, mobile, propertyID string) (string, error) {
	return j.generate(UserClaims{UserID: userID, Mobile: mobile, PropertyID: propertyID})
}

// GenerateSupervisorToken creates a signed token carrying the supervisor role
func (j *JWTUtil) GenerateSupervisorToken() (string, error) {
	return j.generate(UserClaims{UserID: RoleSupervisor, Role: RoleSupervisor})
}

func (j *JWTUtil) generate(claims UserClaims) (string, error) {
	issuedAt := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.expiration)),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken validates and parses the token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	// expiry is checked below against j.now, not by the library
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &UserClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !j.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
