// Package auth resolves the Fable API credentials an export run needs.
// Interactive capture (driving a browser login and intercepting the token
// from the profile response) is an external collaborator behind the
// Capturer interface; this package only defines the contract and the
// resolution order across the non-interactive sources.
package auth

import (
	"context"
	"errors"

	"github.com/jdebolt/fable-export/internal/entities"
)

// Credentials is the opaque pair every API call needs.
type Credentials struct {
	UserID string
	Token  string
}

// Capturer obtains credentials interactively from the user's login.
type Capturer interface {
	Capture(ctx context.Context, email, password string) (Credentials, error)
}

// CredentialReader is the slice of the credential store Resolve needs.
type CredentialReader interface {
	Latest() (*entities.DecryptedCredential, error)
}

// ErrNoCredentials indicates no source could provide a user id and token.
var ErrNoCredentials = errors.New(
	"no Fable credentials available: set FABLE_USER_ID and FABLE_AUTH_TOKEN, or store them with the auth command")

// Resolve returns the credentials to use for a run: explicitly configured
// values win, then the most recent stored credentials.
func Resolve(explicit Credentials, store CredentialReader) (Credentials, error) {
	if explicit.UserID != "" && explicit.Token != "" {
		return explicit, nil
	}

	if store != nil {
		stored, err := store.Latest()
		if err != nil {
			return Credentials{}, err
		}
		if stored != nil && stored.UserID != "" && stored.AuthToken != "" {
			return Credentials{UserID: stored.UserID, Token: stored.AuthToken}, nil
		}
	}

	return Credentials{}, ErrNoCredentials
}
