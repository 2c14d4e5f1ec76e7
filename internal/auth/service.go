package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/orangegegege/equipment-manager/pkg/auth"
	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/security"
)

const invalidSecretMessage = "invalid access secret"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

type sessionManager interface {
	Create(ctx context.Context, role enums.Role) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type service struct {
	sessions sessionManager
	authCfg  config.AuthConfig
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService constructs a login service over the two shared secrets.
func NewService(sessions sessionManager, authCfg config.AuthConfig, jwtCfg config.JWTConfig) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if authCfg.MemberSecretHash == "" || authCfg.AdminSecretHash == "" {
		return nil, fmt.Errorf("member and admin secret hashes are required")
	}
	return &service{
		sessions: sessions,
		authCfg:  authCfg,
		jwtCfg:   jwtCfg,
		now:      time.Now,
	}, nil
}

// Login verifies the secret against the admin hash first, then the member
// hash, mints a JWT for the granted role, and opens a session keyed by the
// token's jti. The session id is also the cart key for the login.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	secret := strings.TrimSpace(req.Secret)
	if secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "secret is required")
	}

	role, err := s.grantRole(secret)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.Create(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "opening session")
	}

	now := s.now().UTC()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		Role:      role,
		SessionID: sessionID,
	})
	if err != nil {
		revokeErr := s.sessions.Revoke(ctx, sessionID)
		if revokeErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, revokeErr, "minting access token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &LoginResponse{
		AccessToken: token,
		Role:        role,
		ExpiresAt:   now.Add(s.jwtCfg.SessionTTL()),
	}, nil
}

// Logout revokes the session, which also drops the cart bound to it.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// grantRole checks the admin hash before the member hash so a shared prefix
// between the two secrets can never downgrade an administrator.
func (s *service) grantRole(secret string) (enums.Role, error) {
	isAdmin, err := security.VerifySecret(secret, s.authCfg.AdminSecretHash)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying admin secret")
	}
	if isAdmin {
		return enums.RoleAdmin, nil
	}

	isMember, err := security.VerifySecret(secret, s.authCfg.MemberSecretHash)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying member secret")
	}
	if isMember {
		return enums.RoleMember, nil
	}

	return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidSecretMessage)
}
