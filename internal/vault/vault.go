package vault

import (
	"context"

	"github.com/google/uuid"
)

// KeyVault is the per-device secure custody for key material: the user's
// identity secret key and one symmetric key per space. Absence of a key is
// a normal state (device not yet provisioned), reported via the boolean,
// never as an error. Per-key semantics are last-write-wins; a Put is not
// guaranteed visible to a Get already in flight.
type KeyVault interface {
	GetSpaceKey(ctx context.Context, spaceID uuid.UUID) ([]byte, bool, error)
	PutSpaceKey(ctx context.Context, spaceID uuid.UUID, key []byte) error
	RemoveSpaceKey(ctx context.Context, spaceID uuid.UUID) error

	GetUserSecretKey(ctx context.Context, userID uuid.UUID) ([]byte, bool, error)
	PutUserSecretKey(ctx context.Context, userID uuid.UUID, key []byte) error
	RemoveUserSecretKey(ctx context.Context, userID uuid.UUID) error
}

func spaceKeyName(spaceID uuid.UUID) string {
	return "space_key_" + spaceID.String()
}

func userSecretKeyName(userID uuid.UUID) string {
	return "user_secret_key_" + userID.String()
}
