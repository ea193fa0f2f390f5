package model

import (
	"github.com/google/uuid"
)

// Identity is a user's long-term asymmetric key pair, generated once at
// signup. PublicKey is distributable; SecretKey exists only until it is
// handed to secure custody. Rotation is out of scope.
type Identity struct {
	UserID uuid.UUID

	// Curve25519 — 32 bytes each
	PublicKey []byte
	SecretKey []byte
}
