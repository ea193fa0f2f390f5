package model

import (
	"time"

	"github.com/google/uuid"
)

type Space struct {
	ID uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`

	// Basic info
	Name      string `bun:",notnull"`
	Topic     string `bun:",null"`
	IsPrivate bool   `bun:",default:false"`

	// Ownership & metadata
	CreatorID uuid.UUID `bun:",notnull,type:uuid"`

	CreatedAt time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt *time.Time `bun:",soft_delete"`

	// Activity tracking
	LastMessageAt *time.Time `bun:",nullzero"`
	MessageCount  int64      `bun:",default:0"`
}
