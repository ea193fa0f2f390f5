package usecase

import (
	"context"
	"crypto/rand"

	"github.com/azee-ka/4space-super-sub001/internal/identity/model"
	"github.com/azee-ka/4space-super-sub001/internal/vault"
	"github.com/azee-ka/4space-super-sub001/pkg/errors"
	"github.com/azee-ka/4space-super-sub001/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/nacl/box"
)

type IdentityService struct {
	vault  vault.KeyVault
	logger logger.Logger
}

func NewIdentityService(vault vault.KeyVault, logger logger.Logger) *IdentityService {
	return &IdentityService{vault: vault, logger: logger}
}

// Generate produces a fresh Curve25519 key pair from the system CSPRNG.
// The caller owns the secret key and is responsible for immediate custody.
func Generate() (*model.Identity, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "identity key generation failed", err)
	}
	return &model.Identity{
		PublicKey: pub[:],
		SecretKey: priv[:],
	}, nil
}

func (s *IdentityService) Enroll(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	id, err := Generate()
	if err != nil {
		s.logger.Error("identity generation failed, aborting signup", "user_id", userID, "err", err)
		return nil, errors.ErrIdentityGeneration
	}
	id.UserID = userID

	if err := s.vault.PutUserSecretKey(ctx, userID, id.SecretKey); err != nil {
		s.logger.Error("failed to store identity secret key", "user_id", userID, "err", err)
		zero(id.SecretKey)
		return nil, errors.ErrIdentityGeneration
	}

	// The vault holds the only copy from here on.
	zero(id.SecretKey)
	id.SecretKey = nil

	return id.PublicKey, nil
}

func (s *IdentityService) Revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.vault.RemoveUserSecretKey(ctx, userID); err != nil {
		s.logger.Error("failed to remove identity secret key", "user_id", userID, "err", err)
		return err
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
