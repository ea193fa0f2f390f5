package vault

import (
	"context"

	"github.com/azee-ka/4space-super-sub001/config"
	apperrors "github.com/azee-ka/4space-super-sub001/pkg/errors"

	"github.com/99designs/keyring"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// KeyringVault stores key material in the OS credential store (Keychain,
// Secret Service, wincred, ...) scoped to the application's service name.
// Keys live on this device only; provisioning a second device is an
// explicit out-of-band step.
type KeyringVault struct {
	ring keyring.Keyring
}

func NewKeyringVault(cfg *config.Config) (*KeyringVault, error) {
	krCfg := keyring.Config{
		ServiceName: cfg.Vault.ServiceName,
	}
	if cfg.Vault.Backend != "" {
		krCfg.AllowedBackends = []keyring.BackendType{keyring.BackendType(cfg.Vault.Backend)}
	}

	ring, err := keyring.Open(krCfg)
	if err != nil {
		return nil, errors.Wrap(err, "vault.NewKeyringVault.Open")
	}
	return &KeyringVault{ring: ring}, nil
}

func (v *KeyringVault) GetSpaceKey(ctx context.Context, spaceID uuid.UUID) ([]byte, bool, error) {
	return v.get(spaceKeyName(spaceID))
}

func (v *KeyringVault) PutSpaceKey(ctx context.Context, spaceID uuid.UUID, key []byte) error {
	return v.put(spaceKeyName(spaceID), key)
}

func (v *KeyringVault) RemoveSpaceKey(ctx context.Context, spaceID uuid.UUID) error {
	return v.remove(spaceKeyName(spaceID))
}

func (v *KeyringVault) GetUserSecretKey(ctx context.Context, userID uuid.UUID) ([]byte, bool, error) {
	return v.get(userSecretKeyName(userID))
}

func (v *KeyringVault) PutUserSecretKey(ctx context.Context, userID uuid.UUID, key []byte) error {
	return v.put(userSecretKeyName(userID), key)
}

func (v *KeyringVault) RemoveUserSecretKey(ctx context.Context, userID uuid.UUID) error {
	return v.remove(userSecretKeyName(userID))
}

func (v *KeyringVault) get(name string) ([]byte, bool, error) {
	item, err := v.ring.Get(name)
	if err == keyring.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.ErrVaultFailed(err)
	}
	return item.Data, true, nil
}

func (v *KeyringVault) put(name string, data []byte) error {
	err := v.ring.Set(keyring.Item{Key: name, Data: data})
	if err != nil {
		return apperrors.ErrVaultFailed(err)
	}
	return nil
}

func (v *KeyringVault) remove(name string) error {
	err := v.ring.Remove(name)
	if err != nil && err != keyring.ErrKeyNotFound {
		return apperrors.ErrVaultFailed(err)
	}
	return nil
}
