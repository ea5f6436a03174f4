package service

import (
	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/pkg/jwtutil"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSupervisorDisabled      = apperror.Forbidden("Supervisor sign in is not configured")
	ErrInvalidSupervisorSecret = apperror.Unauthorized("Invalid supervisor secret")
)

// SupervisorAuth exchanges the shared supervisor secret for a supervisor token
type SupervisorAuth struct {
	secretHash []byte
	tokens     *jwtutil.JWTUtil
}

// NewSupervisorAuth creates a SupervisorAuth from a bcrypt hash. An empty
// hash disables supervisor sign in.
func NewSupervisorAuth(secretHash string, tokens *jwtutil.JWTUtil) *SupervisorAuth {
	return &SupervisorAuth{secretHash: []byte(secretHash), tokens: tokens}
}

// IssueToken returns a token carrying the supervisor role
func (a *SupervisorAuth) IssueToken(secret string) (string, error) {
	if len(a.secretHash) == 0 {
		return "", ErrSupervisorDisabled
	}
	if err := bcrypt.CompareHashAndPassword(a.secretHash, []byte(secret)); err != nil {
		return "", ErrInvalidSupervisorSecret
	}

	token, err := a.tokens.GenerateSupervisorToken()
	if err != nil {
		return "", apperror.Internal("failed to issue token", err)
	}
	return token, nil
}
