package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the member directory entry used to resolve sender names.
type Profile struct {
	ID uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`

	// Username = unique @handle
	Username string `bun:",unique,notnull"`

	// Name = display name shown in spaces (can be changed freely)
	Name string `bun:",notnull"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
