package identity

import (
	"context"

	"github.com/google/uuid"
)

type IdentityUsecase interface {
	// Enroll generates the user's identity key pair and moves the secret
	// half straight into the device vault. Returns the distributable
	// public key. A failure here must abort account creation.
	Enroll(ctx context.Context, userID uuid.UUID) (publicKey []byte, err error)

	// Revoke wipes the identity secret from the device vault
	// (account deletion / device wipe).
	Revoke(ctx context.Context, userID uuid.UUID) error
}
