package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is the stored row. Content is opaque to the backend: only the
// encrypted envelope ever leaves the device. ID and CreatedAt are
// server-assigned on insert.
type Message struct {
	ID      uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`
	SpaceID uuid.UUID `bun:",notnull,type:uuid"`
	Space   *Space    `bun:"rel:belongs-to,join:space_id=id"`

	SenderID uuid.UUID `bun:",notnull,type:uuid"`
	Sender   *Profile  `bun:"rel:belongs-to,join:sender_id=id"`

	EncryptedContent string `bun:",notnull"`

	CreatedAt time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	EditedAt  *time.Time `bun:",nullzero"`
	DeletedAt *time.Time `bun:",soft_delete"`
}

// Before compares stored order: CreatedAt ascending, ties broken by ID so
// the timeline is deterministic.
func (m *Message) Before(other *Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID.String() < other.ID.String()
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
