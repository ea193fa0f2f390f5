package usecase

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/azee-ka/4space-super-sub001/internal/crypto"
	"github.com/azee-ka/4space-super-sub001/internal/permission"
	"github.com/azee-ka/4space-super-sub001/internal/space"
	"github.com/azee-ka/4space-super-sub001/internal/space/mocks"
	model "github.com/azee-ka/4space-super-sub001/internal/space/model"
	"github.com/azee-ka/4space-super-sub001/internal/vault"
	appErrors "github.com/azee-ka/4space-super-sub001/pkg/errors"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"
	"github.com/azee-ka/4space-super-sub001/pkg/utils"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubscription is a channel-backed Subscription the test drives by hand.
type fakeSubscription struct {
	events             chan model.Message
	once               sync.Once
	closeOnUnsubscribe bool
}

func newFakeSubscription(closeOnUnsubscribe bool) *fakeSubscription {
	return &fakeSubscription{
		events:             make(chan model.Message, 16),
		closeOnUnsubscribe: closeOnUnsubscribe,
	}
}

func (f *fakeSubscription) Events() <-chan model.Message { return f.events }

func (f *fakeSubscription) Unsubscribe() {
	if f.closeOnUnsubscribe {
		f.close()
	}
}

func (f *fakeSubscription) close() {
	f.once.Do(func() { close(f.events) })
}

func storedMessage(spaceID uuid.UUID, envelope string, at time.Time) model.Message {
	return model.Message{
		ID:               uuid.New(),
		SpaceID:          spaceID,
		SenderID:         uuid.New(),
		EncryptedContent: envelope,
		CreatedAt:        at,
	}
}

func mustSeal(t *testing.T, plaintext string, key *[crypto.KeySize]byte) string {
	t.Helper()
	env, err := crypto.Seal(plaintext, key)
	require.NoError(t, err)
	return env
}

func Test_Open(t *testing.T) {
	spaceID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	t.Run("happy path - history decrypts with vault key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)
		sub := newFakeSubscription(true)

		v := vault.NewMemoryVault()
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		history := []model.Message{
			storedMessage(spaceID, mustSeal(t, "first", key), base),
			storedMessage(spaceID, mustSeal(t, "second", key), base.Add(time.Second)),
		}

		g := mockFeed.EXPECT()
		g.Subscribe(gomock.Any(), spaceID).Return(sub, nil)
		mockRepo.EXPECT().ListBySpace(gomock.Any(), spaceID).Return(history, nil)

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		view, err := uc.Open(t.Context(), spaceID)
		require.NoError(t, err)
		defer view.Close()

		msgs := view.Messages()
		require.Len(t, msgs, 2)
		require.NotNil(t, msgs[0].DecryptedContent)
		require.NotNil(t, msgs[1].DecryptedContent)
		assert.Equal(t, "first", *msgs[0].DecryptedContent)
		assert.Equal(t, "second", *msgs[1].DecryptedContent)
	})

	t.Run("happy path - absent key yields nil content, not an error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)
		sub := newFakeSubscription(true)

		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		history := []model.Message{
			storedMessage(spaceID, mustSeal(t, "first", key), base),
			storedMessage(spaceID, mustSeal(t, "second", key), base.Add(time.Second)),
		}

		mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(sub, nil)
		mockRepo.EXPECT().ListBySpace(gomock.Any(), spaceID).Return(history, nil)

		uc := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})
		view, err := uc.Open(t.Context(), spaceID)
		require.NoError(t, err)
		defer view.Close()

		msgs := view.Messages()
		require.Len(t, msgs, 2)
		for _, m := range msgs {
			assert.Nil(t, m.DecryptedContent)
			assert.NotEmpty(t, m.EncryptedContent)
		}
	})

	t.Run("happy path - one undecryptable message does not block the rest", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)
		sub := newFakeSubscription(true)

		v := vault.NewMemoryVault()
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		history := []model.Message{
			storedMessage(spaceID, mustSeal(t, "readable", key), base),
			storedMessage(spaceID, "garbage-envelope", base.Add(time.Second)),
		}

		mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(sub, nil)
		mockRepo.EXPECT().ListBySpace(gomock.Any(), spaceID).Return(history, nil)

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		view, err := uc.Open(t.Context(), spaceID)
		require.NoError(t, err)
		defer view.Close()

		msgs := view.Messages()
		require.Len(t, msgs, 2)
		require.NotNil(t, msgs[0].DecryptedContent)
		assert.Equal(t, "readable", *msgs[0].DecryptedContent)
		assert.Nil(t, msgs[1].DecryptedContent)
	})

	t.Run("sad path - subscribe fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(nil, errors.New("listener down"))

		uc := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})
		_, err := uc.Open(t.Context(), spaceID)
		require.Error(t, err)

		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.CodeUnavailable, appErr.Code)
	})

	t.Run("sad path - fetch fails and releases the subscription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)
		mockSub := mocks.NewMockSubscription(ctrl)

		mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(mockSub, nil)
		mockRepo.EXPECT().ListBySpace(gomock.Any(), spaceID).Return(nil, errors.New("db down"))
		mockSub.EXPECT().Unsubscribe()

		uc := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})
		_, err := uc.Open(t.Context(), spaceID)
		require.Error(t, err)
	})
}

func Test_LiveMerge(t *testing.T) {
	spaceID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	openWithHistory := func(t *testing.T, v vault.KeyVault, sub *fakeSubscription, history []model.Message) (space.TimelineView, *mocks.MockMessageRepository) {
		t.Helper()
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(sub, nil)
		mockRepo.EXPECT().ListBySpace(gomock.Any(), spaceID).Return(history, nil)
		mockRepo.EXPECT().GetProfile(gomock.Any(), gomock.Any()).
			Return(&model.Profile{Name: "someone"}, nil).AnyTimes()

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		view, err := uc.Open(t.Context(), spaceID)
		require.NoError(t, err)
		return view, mockRepo
	}

	t.Run("duplicate delivery via fetch and feed yields one entry", func(t *testing.T) {
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		v := vault.NewMemoryVault()
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		row := storedMessage(spaceID, mustSeal(t, "raced", key), base)
		sub := newFakeSubscription(true)

		view, _ := openWithHistory(t, v, sub, []model.Message{row})
		defer view.Close()

		// the feed replays the row the fetch already returned
		sub.events <- row

		time.Sleep(100 * time.Millisecond)
		msgs := view.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, row.ID, msgs[0].ID)
	})

	t.Run("out of order delivery is re-sorted by created_at", func(t *testing.T) {
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		v := vault.NewMemoryVault()
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		sub := newFakeSubscription(true)
		view, _ := openWithHistory(t, v, sub, nil)
		defer view.Close()

		third := storedMessage(spaceID, mustSeal(t, "third", key), base.Add(2*time.Second))
		first := storedMessage(spaceID, mustSeal(t, "first", key), base)
		second := storedMessage(spaceID, mustSeal(t, "second", key), base.Add(time.Second))

		sub.events <- third
		sub.events <- first
		sub.events <- second

		require.Eventually(t, func() bool {
			return len(view.Messages()) == 3
		}, time.Second, 10*time.Millisecond)

		msgs := view.Messages()
		assert.Equal(t, "first", *msgs[0].DecryptedContent)
		assert.Equal(t, "second", *msgs[1].DecryptedContent)
		assert.Equal(t, "third", *msgs[2].DecryptedContent)
		for i := 1; i < len(msgs); i++ {
			assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
		}
	})

	t.Run("live event resolves sender profile", func(t *testing.T) {
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		v := vault.NewMemoryVault()
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		sub := newFakeSubscription(true)
		view, _ := openWithHistory(t, v, sub, nil)
		defer view.Close()

		sub.events <- storedMessage(spaceID, mustSeal(t, "hi", key), base)

		require.Eventually(t, func() bool {
			return len(view.Messages()) == 1
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, "someone", view.Messages()[0].SenderName)
	})

	t.Run("events after close are dropped", func(t *testing.T) {
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		v := vault.NewMemoryVault()
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		// Unsubscribe does not close the channel here, mimicking a feed
		// with events still in flight at close time.
		sub := newFakeSubscription(false)
		defer sub.close()

		view, _ := openWithHistory(t, v, sub, nil)
		view.Close()

		sub.events <- storedMessage(spaceID, mustSeal(t, "late", key), base)

		time.Sleep(100 * time.Millisecond)
		assert.Empty(t, view.Messages())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sub := newFakeSubscription(true)
		view, _ := openWithHistory(t, vault.NewMemoryVault(), sub, nil)
		view.Close()
		view.Close()
	})
}

func Test_Send(t *testing.T) {
	spaceID := uuid.New()
	senderID := uuid.New()

	t.Run("happy path - envelope persisted, no local echo", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		v := vault.NewMemoryVault()
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		var stored *model.Message
		g := mockRepo.EXPECT()
		g.GetMemberRole(gomock.Any(), spaceID, senderID).Return(permission.RoleEditor, nil)
		g.Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ interface{}, msg *model.Message) error {
			stored = msg
			return nil
		})

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		require.NoError(t, uc.Send(t.Context(), spaceID, senderID, "hello"))

		require.NotNil(t, stored)
		assert.NotEmpty(t, stored.EncryptedContent)
		assert.NotEqual(t, "hello", stored.EncryptedContent)

		plaintext, err := crypto.Open(stored.EncryptedContent, key)
		require.NoError(t, err)
		assert.Equal(t, "hello", plaintext)
	})

	t.Run("sad path - no space key, rejected before any network call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)
		// no expectations on mockRepo: nothing may hit the backend

		uc := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})
		err := uc.Send(t.Context(), spaceID, senderID, "hello")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrSpaceKeyNotFound))
	})

	t.Run("sad path - viewer cannot send", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		v := vault.NewMemoryVault()
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		mockRepo.EXPECT().GetMemberRole(gomock.Any(), spaceID, senderID).Return(permission.RoleViewer, nil)

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		err = uc.Send(t.Context(), spaceID, senderID, "hello")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrMessagingDenied))
	})

	t.Run("sad path - insert failure surfaces as send failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		v := vault.NewMemoryVault()
		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)
		require.NoError(t, v.PutSpaceKey(t.Context(), spaceID, key[:]))

		g := mockRepo.EXPECT()
		g.GetMemberRole(gomock.Any(), spaceID, senderID).Return(permission.RoleEditor, nil)
		g.Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})
		err = uc.Send(t.Context(), spaceID, senderID, "hello")
		require.Error(t, err)

		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.CodeUnavailable, appErr.Code)
	})
}

// The full loop: a send is echoed back by the live feed and becomes
// readable on a view holding the space key, while a view without the key
// sees only the envelope.
func Test_SendEchoScenario(t *testing.T) {
	spaceID := uuid.New()
	senderID := uuid.New()

	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockMessageRepository(ctrl)
	mockFeed := mocks.NewMockLiveFeed(ctrl)

	keyedVault := vault.NewMemoryVault()
	key, err := crypto.NewSpaceKey()
	require.NoError(t, err)
	require.NoError(t, keyedVault.PutSpaceKey(t.Context(), spaceID, key[:]))

	keyedSub := newFakeSubscription(true)
	keylessSub := newFakeSubscription(true)

	g := mockRepo.EXPECT()
	g.ListBySpace(gomock.Any(), spaceID).Return(nil, nil).Times(2)
	g.GetProfile(gomock.Any(), senderID).Return(&model.Profile{ID: senderID, Name: "alice"}, nil).AnyTimes()
	g.GetMemberRole(gomock.Any(), spaceID, senderID).Return(permission.RoleEditor, nil)

	var stored *model.Message
	g.Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ interface{}, msg *model.Message) error {
		// the backend assigns id and created_at on insert
		msg.ID = uuid.New()
		msg.CreatedAt = time.Now().UTC()
		stored = msg
		return nil
	})

	mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(keyedSub, nil)
	keyedSync := NewSpaceSync(mockRepo, mockFeed, keyedVault, logger.Logger{})
	keyedView, err := keyedSync.Open(t.Context(), spaceID)
	require.NoError(t, err)
	defer keyedView.Close()

	mockFeed.EXPECT().Subscribe(gomock.Any(), spaceID).Return(keylessSub, nil)
	keylessSync := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})
	keylessView, err := keylessSync.Open(t.Context(), spaceID)
	require.NoError(t, err)
	defer keylessView.Close()

	require.NoError(t, keyedSync.Send(t.Context(), spaceID, senderID, "hello"))
	require.NotNil(t, stored)
	assert.NotEqual(t, "hello", stored.EncryptedContent)

	// no optimistic echo: nothing shows until the feed delivers
	assert.Empty(t, keyedView.Messages())

	keyedSub.events <- *stored
	keylessSub.events <- *stored

	require.Eventually(t, func() bool {
		return len(keyedView.Messages()) == 1 && len(keylessView.Messages()) == 1
	}, time.Second, 10*time.Millisecond)

	withKey := keyedView.Messages()[0]
	require.NotNil(t, withKey.DecryptedContent)
	assert.Equal(t, "hello", *withKey.DecryptedContent)
	assert.Equal(t, "alice", withKey.SenderName)

	withoutKey := keylessView.Messages()[0]
	assert.Nil(t, withoutKey.DecryptedContent)
	assert.Equal(t, stored.EncryptedContent, withoutKey.EncryptedContent)
}

func Test_ProvisionSpaceKey(t *testing.T) {
	spaceID := uuid.New()

	t.Run("happy path - key lands in vault", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		key, err := crypto.NewSpaceKey()
		require.NoError(t, err)

		v := vault.NewMemoryVault()
		uc := NewSpaceSync(mockRepo, mockFeed, v, logger.Logger{})

		require.NoError(t, uc.ProvisionSpaceKey(t.Context(), spaceID, utils.EncodeKey(key[:])))

		stored, ok, err := v.GetSpaceKey(t.Context(), spaceID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, key[:], stored)
	})

	t.Run("sad path - wrong length or encoding", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := mocks.NewMockMessageRepository(ctrl)
		mockFeed := mocks.NewMockLiveFeed(ctrl)

		uc := NewSpaceSync(mockRepo, mockFeed, vault.NewMemoryVault(), logger.Logger{})

		assert.Error(t, uc.ProvisionSpaceKey(t.Context(), spaceID, "not-base64!!"))
		assert.Error(t, uc.ProvisionSpaceKey(t.Context(), spaceID, utils.EncodeKey([]byte("short"))))
	})
}
