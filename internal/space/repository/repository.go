package repository

import (
	"context"
	"database/sql"

	"github.com/azee-ka/4space-super-sub001/internal/permission"
	model "github.com/azee-ka/4space-super-sub001/internal/space/model"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type SpaceRepository struct {
	db     *bun.DB
	logger *logger.Logger
}

var (
	ErrSpaceNotFound   = errors.New("space not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrProfileNotFound = errors.New("profile not found")
)

func NewSpaceRepository(db *bun.DB, logger logger.Logger) *SpaceRepository {
	return &SpaceRepository{
		db:     db,
		logger: &logger,
	}
}

func (r *SpaceRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.NewSelect().
		Model(&messages).
		Relation("Sender").
		Where("message.space_id = ?", spaceID).
		Order("message.created_at ASC", "message.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "spaceRepo.ListBySpace.Scan: ")
	}
	return messages, nil
}

func (r *SpaceRepository) Insert(ctx context.Context, msg *model.Message) error {
	_, err := r.db.NewInsert().Model(msg).Returning("*").Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "spaceRepo.Insert.Exec: ")
	}
	return nil
}

func (r *SpaceRepository) GetSpace(ctx context.Context, spaceID uuid.UUID) (*model.Space, error) {
	s := new(model.Space)
	err := r.db.NewSelect().Model(s).Where("id = ?", spaceID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpaceNotFound
		}
		return nil, errors.Wrap(err, "spaceRepo.GetSpace.Scan: ")
	}
	return s, nil
}

func (r *SpaceRepository) GetMemberRole(ctx context.Context, spaceID, userID uuid.UUID) (permission.Role, error) {
	member := new(model.SpaceMember)
	err := r.db.NewSelect().
		Model(member).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrMemberNotFound
		}
		return "", errors.Wrap(err, "spaceRepo.GetMemberRole.Scan: ")
	}
	return member.Role, nil
}

func (r *SpaceRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	profile := new(model.Profile)
	err := r.db.NewSelect().Model(profile).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, errors.Wrap(err, "spaceRepo.GetProfile.Scan: ")
	}
	return profile, nil
}

func (r *SpaceRepository) AddMember(ctx context.Context, member *model.SpaceMember) error {
	_, err := r.db.NewInsert().
		Model(member).
		On("CONFLICT (space_id, user_id) DO UPDATE").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "spaceRepo.AddMember.Exec: ")
	}
	return nil
}

// CreateSchema creates the tables this client expects. The backend owns the
// schema in production; this exists for local runs and integration tests.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*model.Profile)(nil),
		(*model.Space)(nil),
		(*model.SpaceMember)(nil),
		(*model.Message)(nil),
	}
	for _, t := range tables {
		if _, err := db.NewCreateTable().Model(t).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrapf(err, "failed to create table for %T", t)
		}
	}
	return nil
}
