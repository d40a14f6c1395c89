package models

import "time"

// APIKey is a third-party provider credential stored encrypted. Ciphertext
// and Nonce come from AES-GCM under the user's passphrase-derived key; the
// server never stores the plaintext or the key that seals it.
type APIKey struct {
	ID         int64
	UserID     int64
	AIModel    string
	Ciphertext []byte
	Nonce      []byte
	CreatedAt  time.Time
}
