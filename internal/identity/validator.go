// Package identity checks that a caller-supplied user ID and credential belong together.
// Validators are pure: no network or storage access, and a bool result instead of errors.
package identity

import (
	"crypto/subtle"
	"fmt"

	"github.com/weddingseo/contentproxy/internal/config"
)

// Validator reports whether credential proves the identity userID.
type Validator interface {
	Validate(userID, credential string) bool
}

// SecretValidator accepts credentials equal to secret + userID, the scheme the
// membership platform issues today. It is weak; prefer JWTValidator.
type SecretValidator struct {
	secret string
}

// NewSecretValidator creates a SecretValidator.
func NewSecretValidator(secret string) *SecretValidator {
	return &SecretValidator{secret: secret}
}

func (v *SecretValidator) Validate(userID, credential string) bool {
	if credential == "" || userID == "" {
		return false
	}
	expected := v.secret + userID
	return subtle.ConstantTimeCompare([]byte(credential), []byte(expected)) == 1
}

// New returns the validator selected by cfg.Mode.
func New(cfg config.IdentityConfig) (Validator, error) {
	switch cfg.Mode {
	case config.IdentityModeSecret:
		return NewSecretValidator(cfg.Secret), nil
	case config.IdentityModeJWT:
		return NewJWTValidator(cfg.Secret), nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}
