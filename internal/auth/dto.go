package auth

import (
	"time"

	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// LoginRequest carries the shared access secret.
type LoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	Role        enums.Role `json:"role"`
	ExpiresAt   time.Time  `json:"expires_at"`
}
