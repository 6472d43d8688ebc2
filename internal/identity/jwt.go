package identity

import (
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
)

// JWTValidator accepts HS256 tokens signed with the shared secret whose subject is
// the caller's user ID. Expiry is enforced when the token carries an exp claim.
type JWTValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTValidator creates a JWTValidator.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (v *JWTValidator) Validate(userID, credential string) bool {
	if credential == "" || userID == "" {
		return false
	}

	subject, err := v.subject(credential)
	if err != nil {
		slog.Debug("identity: rejecting token", "user_id", userID, "error", err)
		return false
	}
	return subject == userID
}

func (v *JWTValidator) subject(tokenStr string) (string, error) {
	token, err := v.parser.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	return claims.Subject, nil
}
