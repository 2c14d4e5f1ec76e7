package auth

import (
	"testing"
	"time"

	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "equipment-manager",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Role:      enums.RoleAdmin,
		SessionID: "sess-42",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("role = %s", claims.Role)
	}
	if claims.ID != "sess-42" {
		t.Fatalf("session id = %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer = %s", claims.Issuer)
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{Role: enums.Role("root")}); err == nil {
		t.Fatal("expected invalid role error")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.RoleMember})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{Role: enums.RoleMember})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry error")
	}
}
