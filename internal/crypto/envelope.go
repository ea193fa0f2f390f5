package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	apperrors "github.com/azee-ka/4space-super-sub001/pkg/errors"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the length of a space's symmetric key.
	KeySize = 32

	nonceSize = 24
)

// NewSpaceKey generates a fresh symmetric key for a space.
func NewSpaceKey() (*[KeySize]byte, error) {
	key := new([KeySize]byte)
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to generate space key", err)
	}
	return key, nil
}

// KeyFromBytes copies a raw vault blob into a fixed-size secretbox key.
func KeyFromBytes(raw []byte) (*[KeySize]byte, error) {
	if len(raw) != KeySize {
		return nil, apperrors.InvalidArg("space key must be 32 bytes")
	}
	key := new([KeySize]byte)
	copy(key[:], raw)
	return key, nil
}

// Seal encrypts plaintext under key and returns a self-contained envelope:
// base64(nonce || secretbox ciphertext). The Poly1305 tag inside the box
// authenticates the content, so a tampered envelope fails Open.
func Seal(plaintext string, key *[KeySize]byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to generate nonce", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts an envelope produced by Seal. Any malformed, truncated or
// tampered envelope, and any wrong key, yields ErrDecryptionFailed — never
// corrupted plaintext.
func Open(envelope string, key *[KeySize]byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", apperrors.ErrDecryptionFailed
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", apperrors.ErrDecryptionFailed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plaintext, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, key)
	if !ok {
		return "", apperrors.ErrDecryptionFailed
	}
	return string(plaintext), nil
}
