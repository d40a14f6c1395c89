// Package cryptox implements the credential-protection primitives:
// one-way hashing for passwords and passphrases, passphrase-based key
// derivation, and AES-GCM sealing of stored third-party API keys.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"

	"github.com/mkovalev/chatvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// KeySize is the length in bytes of a derived encryption key (AES-256).
const KeySize = 32

// SaltSize is the length in bytes of a per-user passphrase salt.
const SaltSize = 16

// bcryptCost is a package seam so tests can lower the work factor.
var bcryptCost = bcrypt.DefaultCost

// HashCredential returns a salted bcrypt digest of the given plaintext.
// Used for both login passwords and passphrases.
func HashCredential(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyCredential reports whether plaintext matches the stored digest.
// A malformed digest yields false, it never escapes as an error.
func VerifyCredential(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// DeriveKey stretches a passphrase and salt into a KeySize-byte symmetric
// key with argon2id. Deterministic for identical inputs; the parameters are
// deliberately expensive so brute-forcing short passphrases is costly.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// HexToBytes converts a hex-encoded salt into raw bytes. Malformed hex is a
// hard failure: a stored salt that does not decode means corrupted data.
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// SealKey encrypts an API key with AES-GCM under the passphrase-derived key.
// A fresh random 12-byte nonce is generated per call; ciphertext and nonce
// are returned separately for storage in their own columns.
func SealKey(apiKey string, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, []byte(apiKey), nil)

	return ciphertext, nonce, nil
}

// OpenKey decrypts a sealed API key. The key must be derived from the same
// passphrase and salt that sealed it; any other key fails authentication.
func OpenKey(ciphertext, nonce, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
