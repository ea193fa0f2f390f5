package space

import (
	"time"

	"github.com/google/uuid"
)

// NOTE: DTOs travel from usecase to presentation.

// DecryptedMessage is a stored message as presented: same row plus the
// locally decrypted content. DecryptedContent is nil when this device has
// no key for the space or the envelope fails to open.
type DecryptedMessage struct {
	ID               uuid.UUID
	SpaceID          uuid.UUID
	SenderID         uuid.UUID
	SenderName       string
	EncryptedContent string
	DecryptedContent *string
	CreatedAt        time.Time
}

// Before matches the stored ordering: created_at ascending, ties by id.
func (m *DecryptedMessage) Before(other *DecryptedMessage) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID.String() < other.ID.String()
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
