package space

import (
	"context"

	"github.com/google/uuid"
)

type SpaceUsecase interface {
	// Open starts a view on a space: bulk-fetches history, subscribes to
	// the live feed, and returns a Timeline that merges both into one
	// ordered, de-duplicated sequence. The caller owns the Timeline and
	// must Close it.
	Open(ctx context.Context, spaceID uuid.UUID) (TimelineView, error)

	// Send encrypts plaintext under the space's vault key and persists
	// the envelope. Fails with ErrSpaceKeyNotFound before any network
	// call when the device has no key. No local echo: the live feed
	// delivers the sender's own message back.
	Send(ctx context.Context, spaceID, senderID uuid.UUID, plaintext string) error

	// ProvisionSpaceKey installs a base64-encoded space key obtained via
	// an out-of-band exchange into the device vault.
	ProvisionSpaceKey(ctx context.Context, spaceID uuid.UUID, encodedKey string) error
}

type TimelineView interface {
	// Messages is a snapshot of the current ordered timeline.
	Messages() []DecryptedMessage

	// Updates delivers each message as it is merged into the timeline.
	Updates() <-chan DecryptedMessage

	Close()
}
