package security

import (
	"strings"
	"testing"

	"github.com/orangegegege/equipment-manager/pkg/config"
)

func testParams() config.PasswordConfig {
	// Small parameters keep the test fast; production values come from env.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashSecret("storage-room-42", testParams())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := VerifySecret("storage-room-42", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct secret rejected")
	}

	ok, err = VerifySecret("wrong", encoded)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong secret accepted")
	}
}

func TestHashRejectsEmptySecret(t *testing.T) {
	if _, err := HashSecret("", testParams()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	if _, err := VerifySecret("x", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	if _, err := VerifySecret("x", "$argon2i$v=19$m=8,t=1,p=1$AA$AA"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash for wrong variant, got %v", err)
	}
}
