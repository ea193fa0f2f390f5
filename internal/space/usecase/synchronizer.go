package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/azee-ka/4space-super-sub001/internal/crypto"
	"github.com/azee-ka/4space-super-sub001/internal/permission"
	"github.com/azee-ka/4space-super-sub001/internal/space"
	model "github.com/azee-ka/4space-super-sub001/internal/space/model"
	"github.com/azee-ka/4space-super-sub001/internal/vault"
	apperrors "github.com/azee-ka/4space-super-sub001/pkg/errors"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"
	"github.com/azee-ka/4space-super-sub001/pkg/utils"

	"github.com/google/uuid"
)

// SpaceSync merges the bulk history fetch and the live insert feed of one
// space into a single ordered, de-duplicated timeline, decrypting each
// message with the device's vault key on arrival.
type SpaceSync struct {
	repo   space.MessageRepository
	feed   space.LiveFeed
	vault  vault.KeyVault
	logger logger.Logger
}

func NewSpaceSync(repo space.MessageRepository, feed space.LiveFeed, vault vault.KeyVault, logger logger.Logger) *SpaceSync {
	return &SpaceSync{repo: repo, feed: feed, vault: vault, logger: logger}
}

func (s *SpaceSync) Open(ctx context.Context, spaceID uuid.UUID) (space.TimelineView, error) {
	// Subscribe before fetching so no insert falls between the two.
	// Rows committed inside the fetch window then arrive twice; the
	// merge de-duplicates by id.
	sub, err := s.feed.Subscribe(ctx, spaceID)
	if err != nil {
		return nil, apperrors.ErrSubscribeFailed(err)
	}

	history, err := s.repo.ListBySpace(ctx, spaceID)
	if err != nil {
		sub.Unsubscribe()
		return nil, apperrors.ErrFetchFailed(err)
	}

	t := &Timeline{
		sub:     sub,
		seen:    make(map[uuid.UUID]struct{}, len(history)),
		updates: make(chan space.DecryptedMessage, 64),
	}

	key := s.spaceKey(ctx, spaceID)
	for i := range history {
		t.merge(s.materialize(&history[i], key))
	}

	go s.consume(t, spaceID)

	return t, nil
}

// consume drains the live feed until the subscription closes. A view that
// has been closed keeps draining so the feed never blocks, but every
// result — including decrypts already in flight — is discarded.
func (s *SpaceSync) consume(t *Timeline, spaceID uuid.UUID) {
	defer close(t.updates)

	for msg := range t.sub.Events() {
		if t.isClosed() {
			continue
		}

		ctx := context.Background()
		key := s.spaceKey(ctx, spaceID) // re-read: key may be provisioned mid-view
		dm := s.materialize(&msg, key)

		if dm.SenderName == "" {
			if p, err := s.repo.GetProfile(ctx, msg.SenderID); err == nil {
				dm.SenderName = p.Name
			} else {
				s.logger.Warn("failed to resolve sender profile", "sender_id", msg.SenderID, "err", err)
			}
		}

		if t.isClosed() {
			continue
		}
		t.merge(dm)
	}
}

// materialize turns a stored row into its presented form. Missing key and
// failed decryption both yield nil content; neither may surface as an
// error to the timeline.
func (s *SpaceSync) materialize(msg *model.Message, key *[crypto.KeySize]byte) space.DecryptedMessage {
	dm := space.DecryptedMessage{
		ID:               msg.ID,
		SpaceID:          msg.SpaceID,
		SenderID:         msg.SenderID,
		EncryptedContent: msg.EncryptedContent,
		CreatedAt:        msg.CreatedAt,
	}
	if msg.Sender != nil {
		dm.SenderName = msg.Sender.Name
	}
	if key == nil {
		return dm
	}

	plaintext, err := crypto.Open(msg.EncryptedContent, key)
	if err != nil {
		s.logger.Warn("undecryptable message", "message_id", msg.ID, "err", err)
		return dm
	}
	dm.DecryptedContent = &plaintext
	return dm
}

func (s *SpaceSync) spaceKey(ctx context.Context, spaceID uuid.UUID) *[crypto.KeySize]byte {
	raw, ok, err := s.vault.GetSpaceKey(ctx, spaceID)
	if err != nil {
		s.logger.Error("vault read failed", "space_id", spaceID, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	key, err := crypto.KeyFromBytes(raw)
	if err != nil {
		s.logger.Error("vault holds malformed space key", "space_id", spaceID, "err", err)
		return nil
	}
	return key
}

func (s *SpaceSync) Send(ctx context.Context, spaceID, senderID uuid.UUID, plaintext string) error {
	// Key custody is checked before anything touches the network.
	raw, ok, err := s.vault.GetSpaceKey(ctx, spaceID)
	if err != nil {
		return apperrors.ErrVaultFailed(err)
	}
	if !ok {
		return apperrors.ErrSpaceKeyNotFound
	}
	key, err := crypto.KeyFromBytes(raw)
	if err != nil {
		return apperrors.ErrVaultFailed(err)
	}

	role, err := s.repo.GetMemberRole(ctx, spaceID, senderID)
	if err != nil {
		s.logger.Warn("member role lookup failed", "space_id", spaceID, "user_id", senderID, "err", err)
		return apperrors.ErrNotAMember
	}
	if !permission.Has(role, permission.PermSendMessages) {
		return apperrors.ErrMessagingDenied
	}

	envelope, err := crypto.Seal(plaintext, key)
	if err != nil {
		return apperrors.ErrSendFailed(err)
	}

	msg := &model.Message{
		SpaceID:          spaceID,
		SenderID:         senderID,
		EncryptedContent: envelope,
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return apperrors.ErrSendFailed(err)
	}

	// No local echo: the live feed delivers the committed row back, so
	// the sender sees their own message after one feed round-trip.
	return nil
}

// ProvisionSpaceKey installs a space key delivered out of band (the key
// exchange itself happens outside this core). Open views pick the key up
// on their next vault read.
func (s *SpaceSync) ProvisionSpaceKey(ctx context.Context, spaceID uuid.UUID, encodedKey string) error {
	raw, err := utils.DecodeKey(encodedKey, crypto.KeySize)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid space key encoding", err)
	}
	if err := s.vault.PutSpaceKey(ctx, spaceID, raw); err != nil {
		return apperrors.ErrVaultFailed(err)
	}
	return nil
}

// Timeline is the per-view state: one ordered message sequence plus the
// subscription handle it owns. No state is shared across views.
type Timeline struct {
	mu       sync.RWMutex
	messages []space.DecryptedMessage
	seen     map[uuid.UUID]struct{}
	closed   bool

	sub     space.Subscription
	updates chan space.DecryptedMessage
}

func (t *Timeline) Messages() []space.DecryptedMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]space.DecryptedMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Timeline) Updates() <-chan space.DecryptedMessage {
	return t.updates
}

// Close releases the live subscription. No event is applied after Close
// returns; in-flight decrypt work completes but its result is dropped.
func (t *Timeline) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.sub.Unsubscribe()
}

func (t *Timeline) isClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// merge inserts in (created_at, id) order and suppresses duplicates, which
// covers rows delivered by both the bulk fetch and the live feed.
func (t *Timeline) merge(dm space.DecryptedMessage) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	if _, dup := t.seen[dm.ID]; dup {
		t.mu.Unlock()
		return
	}
	t.seen[dm.ID] = struct{}{}

	idx := sort.Search(len(t.messages), func(i int) bool {
		return dm.Before(&t.messages[i])
	})
	t.messages = append(t.messages, space.DecryptedMessage{})
	copy(t.messages[idx+1:], t.messages[idx:])
	t.messages[idx] = dm
	t.mu.Unlock()

	select {
	case t.updates <- dm:
	default:
		// slow consumer; Messages() remains the authoritative snapshot
	}
}
