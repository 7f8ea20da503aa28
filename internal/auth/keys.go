// Package auth provides password hashing and token issuance for the PageTurn server.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength    = 32
	keyHexLength = 64
)

// LoadOrGenerateKey loads the PASETO symmetric key from <dataDir>/auth.key,
// generating and persisting a fresh one on first run. The key is stored as a
// hex string so it survives editors and copy-paste; the decoded bytes are
// returned.
func LoadOrGenerateKey(dataDir string) ([]byte, error) {
	keyPath := filepath.Join(dataDir, "auth.key")

	if raw, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(raw))
		if len(keyHex) != keyHexLength {
			return nil, fmt.Errorf("auth key: expected %d hex chars, got %d", keyHexLength, len(keyHex))
		}
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("auth key is not valid hex: %w", err)
		}
		return key, nil
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}

	return key, nil
}
