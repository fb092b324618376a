package webauthnhandler

import (
	"crypto/rand"
	"fmt"

	"github.com/detectivesigma/sigma/internal/errors"
	sigmarandom "github.com/detectivesigma/sigma/internal/random"
	"github.com/go-webauthn/webauthn/webauthn"
)

type user struct {
	id          []byte
	displayName string
	credentials []webauthn.Credential
}

const webauthnIDSize = 64

// newRandomUser initialises a new user with a random ID and a generated
// detective alias. The alias is what shows up on the leaderboard; players
// never enter a username.
func newRandomUser() (webauthn.User, error) {
	id := make([]byte, webauthnIDSize)
	if _, err := rand.Read(id); err != nil {
		return nil, errors.Wrap(err, "generate user id")
	}

	alias, err := sigmarandom.Letters(6)
	if err != nil {
		return nil, errors.Wrap(err, "generate alias")
	}

	return &user{
		displayName: fmt.Sprintf("Detective %s", alias),
		id:          id,
		credentials: []webauthn.Credential{},
	}, nil
}

// WebAuthnID provides the user handle of the user account. A user handle is an opaque byte sequence with a maximum
// size of 64 bytes, and is not meant to be displayed to the user.
//
// To ensure secure operation, authentication and authorization decisions MUST be made on the basis of this id
// member, not the displayName nor name members. See Section 6.1 of [RFC8266].
//
// It's recommended this value is completely random and uses the entire 64 bytes.
//
// Specification: §5.4.3. User Account Parameters for Credential Generation
// (https://w3c.github.io/webauthn/#dom-publickeycredentialuserentity-id)
func (u user) WebAuthnID() []byte {
	return u.id
}

// WebAuthnName provides the name attribute of the user account during registration and is a human-palatable name for
// the user account, intended only for display.
//
// Specification: §5.4.3. User Account Parameters for Credential Generation
// (https://w3c.github.io/webauthn/#dictdef-publickeycredentialuserentity)
func (u user) WebAuthnName() string {
	return u.displayName
}

// WebAuthnDisplayName provides the display name attribute of the user account during registration, intended only
// for display.
//
// Specification: §5.4.3. User Account Parameters for Credential Generation
// (https://www.w3.org/TR/webauthn/#dom-publickeycredentialuserentity-displayname)
func (u user) WebAuthnDisplayName() string {
	return u.displayName
}

// WebAuthnCredentials provides the list of [webauthn.Credential] owned by the user.
func (u user) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}
