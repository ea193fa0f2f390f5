package model

import (
	"time"

	"github.com/azee-ka/4space-super-sub001/internal/permission"

	"github.com/google/uuid"
)

type SpaceMember struct {
	SpaceID uuid.UUID `bun:",pk,type:uuid"`
	Space   *Space    `bun:"rel:belongs-to,join:space_id=id"`

	UserID  uuid.UUID `bun:",pk,type:uuid"`
	Profile *Profile  `bun:"rel:belongs-to,join:user_id=id"`

	Role permission.Role `bun:",notnull,default:'viewer'"`

	JoinedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	LastReadAt time.Time `bun:",nullzero"` // for unread count
}
