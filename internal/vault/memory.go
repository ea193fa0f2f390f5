package vault

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryVault keeps keys in process memory. Used in tests and for ephemeral
// sessions where nothing should touch the OS credential store.
type MemoryVault struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{items: make(map[string][]byte)}
}

func (v *MemoryVault) GetSpaceKey(ctx context.Context, spaceID uuid.UUID) ([]byte, bool, error) {
	return v.get(spaceKeyName(spaceID))
}

func (v *MemoryVault) PutSpaceKey(ctx context.Context, spaceID uuid.UUID, key []byte) error {
	return v.put(spaceKeyName(spaceID), key)
}

func (v *MemoryVault) RemoveSpaceKey(ctx context.Context, spaceID uuid.UUID) error {
	return v.remove(spaceKeyName(spaceID))
}

func (v *MemoryVault) GetUserSecretKey(ctx context.Context, userID uuid.UUID) ([]byte, bool, error) {
	return v.get(userSecretKeyName(userID))
}

func (v *MemoryVault) PutUserSecretKey(ctx context.Context, userID uuid.UUID, key []byte) error {
	return v.put(userSecretKeyName(userID), key)
}

func (v *MemoryVault) RemoveUserSecretKey(ctx context.Context, userID uuid.UUID) error {
	return v.remove(userSecretKeyName(userID))
}

func (v *MemoryVault) get(name string) ([]byte, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	data, ok := v.items[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (v *MemoryVault) put(name string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items[name] = stored
	return nil
}

func (v *MemoryVault) remove(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.items, name)
	return nil
}
