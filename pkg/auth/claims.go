package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// There are no user accounts; the session id (jti) doubles as the cart key.
type AccessTokenPayload struct {
	Role      enums.Role
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Role enums.Role `json:"role"`
	jwt.RegisteredClaims
}
