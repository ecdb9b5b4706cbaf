package auth

import (
	"fmt"
	"strings"

	"github.com/platedrop/ordercore/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ParseSessionToken validates the externally issued JWT and returns the
// authenticated identity.
func ParseSessionToken(cfg config.JWTConfig, tokenString string) (*Identity, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("session token is required")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(claims.UserID) == "" {
		return nil, fmt.Errorf("session token missing user_id")
	}
	role := claims.Role
	if !role.IsValid() {
		role = RoleCustomer
	}

	return &Identity{UserID: claims.UserID, Role: role}, nil
}
