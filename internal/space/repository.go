package space

import (
	"context"

	"github.com/azee-ka/4space-super-sub001/internal/permission"
	model "github.com/azee-ka/4space-super-sub001/internal/space/model"

	"github.com/google/uuid"
)

type MessageRepository interface {
	// ListBySpace returns all messages for a space ordered by created_at
	// ascending, ties by id.
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]model.Message, error)

	// Insert persists an encrypted message. ID and CreatedAt come back
	// server-assigned.
	Insert(ctx context.Context, msg *model.Message) error

	GetSpace(ctx context.Context, spaceID uuid.UUID) (*model.Space, error)
	GetMemberRole(ctx context.Context, spaceID, userID uuid.UUID) (permission.Role, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
}

// LiveFeed delivers insert events for one space in near-real-time.
// Delivery is at-least-once; consumers must de-duplicate by message ID.
type LiveFeed interface {
	Subscribe(ctx context.Context, spaceID uuid.UUID) (Subscription, error)
}

// Subscription owns the underlying channel/listener. Unsubscribe stops
// delivery; Events is closed afterwards.
type Subscription interface {
	Events() <-chan model.Message
	Unsubscribe()
}
