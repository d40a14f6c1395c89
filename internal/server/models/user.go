package models

import "time"

// User is a registered account. PassphraseHash and PassphraseSalt are empty
// until the user sets a passphrase; the salt is stored hex-encoded.
type User struct {
	ID             int64
	Email          string
	Name           string
	PasswordHash   string
	PassphraseHash string
	PassphraseSalt string
	Avatar         string
	CreatedAt      time.Time
}

// HasPassphrase reports whether the user ever set a passphrase.
func (u *User) HasPassphrase() bool {
	return u.PassphraseHash != "" && u.PassphraseSalt != ""
}
