package entities

import "time"

// FableCredential is the stored form of a user's Fable API credentials.
// AuthToken and Email are encrypted at rest.
type FableCredential struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID    string `gorm:"uniqueIndex;not null"`
	AuthToken string
	Email     string
}

// DecryptedCredential is a credential with its sensitive fields in
// plaintext, used outside the store.
type DecryptedCredential struct {
	UserID    string
	AuthToken string
	Email     string
}
