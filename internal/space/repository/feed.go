package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/azee-ka/4space-super-sub001/internal/space"
	model "github.com/azee-ka/4space-super-sub001/internal/space/model"
	apperrors "github.com/azee-ka/4space-super-sub001/pkg/errors"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

const notifyChannel = "space_messages"

// PgLiveFeed delivers message insert events over Postgres LISTEN/NOTIFY.
// An AFTER INSERT trigger (EnsureMessageFeed) publishes each new row as
// JSON on one shared channel; every subscription filters by space id.
// NOTIFY is at-least-once from the consumer's point of view — rows
// committed during the history fetch window arrive on both paths — so
// consumers de-duplicate by message id.
type PgLiveFeed struct {
	db     *bun.DB
	logger *logger.Logger
}

func NewPgLiveFeed(db *bun.DB, logger logger.Logger) *PgLiveFeed {
	return &PgLiveFeed{db: db, logger: &logger}
}

// EnsureMessageFeed installs the notify function and trigger on messages.
func EnsureMessageFeed(ctx context.Context, db *bun.DB) error {
	stmts := []string{
		`CREATE OR REPLACE FUNCTION notify_space_message() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('` + notifyChannel + `', row_to_json(NEW)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;`,
		`DROP TRIGGER IF EXISTS space_messages_notify ON messages;`,
		`CREATE TRIGGER space_messages_notify
			AFTER INSERT ON messages
			FOR EACH ROW EXECUTE FUNCTION notify_space_message();`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "feed.EnsureMessageFeed.Exec: ")
		}
	}
	return nil
}

type pgSubscription struct {
	listener *pgdriver.Listener
	events   chan model.Message
	cancel   context.CancelFunc
}

func (s *pgSubscription) Events() <-chan model.Message { return s.events }

func (s *pgSubscription) Unsubscribe() {
	s.cancel()
	_ = s.listener.Close()
}

func (f *PgLiveFeed) Subscribe(ctx context.Context, spaceID uuid.UUID) (space.Subscription, error) {
	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	ln := pgdriver.NewListener(f.db)
	if err := ln.Listen(listenCtx, notifyChannel); err != nil {
		cancel()
		return nil, errors.Wrap(err, "feed.Subscribe.Listen: ")
	}

	sub := &pgSubscription{
		listener: ln,
		events:   make(chan model.Message, 64),
		cancel:   cancel,
	}

	go f.pump(sub, spaceID)

	return sub, nil
}

func (f *PgLiveFeed) pump(sub *pgSubscription, spaceID uuid.UUID) {
	defer close(sub.events)

	for notif := range sub.listener.Channel() {
		msg, err := parseEvent(notif.Payload)
		if err != nil {
			// one bad payload must not kill the stream
			f.logger.Warn("dropping malformed live event", "err", err)
			continue
		}
		if msg.SpaceID != spaceID {
			continue
		}
		sub.events <- *msg
	}
}

// messageEvent mirrors row_to_json(NEW) for the messages table.
type messageEvent struct {
	ID               uuid.UUID `json:"id"`
	SpaceID          uuid.UUID `json:"space_id"`
	SenderID         uuid.UUID `json:"sender_id"`
	EncryptedContent string    `json:"encrypted_content"`
	CreatedAt        string    `json:"created_at"`
}

func parseEvent(payload string) (*model.Message, error) {
	var ev messageEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return nil, apperrors.ErrMalformedEvent
	}
	if ev.ID == uuid.Nil || ev.SpaceID == uuid.Nil {
		return nil, apperrors.ErrMalformedEvent
	}

	createdAt, err := parsePgTime(ev.CreatedAt)
	if err != nil {
		return nil, apperrors.ErrMalformedEvent
	}

	return &model.Message{
		ID:               ev.ID,
		SpaceID:          ev.SpaceID,
		SenderID:         ev.SenderID,
		EncryptedContent: ev.EncryptedContent,
		CreatedAt:        createdAt,
	}, nil
}

func parsePgTime(s string) (time.Time, error) {
	// timestamptz serializes with an offset, plain timestamp without
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}
