package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashTCVKN: TC Kimlik No / VKN'yi SHA-256 ile hashler.
// Veritabanında kimlik numarası sadece bu hash ile saklanır.
func HashTCVKN(tcVKN string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(tcVKN)))
	return hex.EncodeToString(sum[:])
}
