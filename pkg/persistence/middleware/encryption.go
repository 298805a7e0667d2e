package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new payloads.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	// This enables key rotation without rewriting stored attempts.
	FallbackKeys [][]byte

	// Logger reports attempts skipped while listing. Optional.
	Logger *slog.Logger
}

// Validate checks every key length.
func (c EncryptionConfig) Validate() error {
	if len(c.ActiveKey) != KeySize {
		return fmt.Errorf("active key must be %d bytes (AES-256), got %d", KeySize, len(c.ActiveKey))
	}
	for i, k := range c.FallbackKeys {
		if len(k) != KeySize {
			return fmt.Errorf("fallback key %d must be %d bytes, got %d", i, KeySize, len(k))
		}
	}
	return nil
}

type encryptionMiddleware struct {
	next   ports.FallbackStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals attempt payloads with AES-GCM before they reach
// the underlying store. The other attempt fields stay readable for listing.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}
	return func(next ports.FallbackStore) ports.FallbackStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, attempt domain.Attempt) error {
	sealed, err := encrypt(attempt.Payload, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("encrypt attempt %s: %w", attempt.ID, err)
	}
	attempt.Payload = sealed
	return m.next.Append(ctx, attempt)
}

func (m *encryptionMiddleware) Latest(ctx context.Context, kind domain.AttemptKind) (domain.Attempt, error) {
	a, err := m.next.Latest(ctx, kind)
	if err != nil {
		return domain.Attempt{}, err
	}
	return m.open(a)
}

func (m *encryptionMiddleware) List(ctx context.Context, kind domain.AttemptKind) ([]domain.Attempt, error) {
	list, err := m.next.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	// An unreadable attempt, such as one stored before encryption was enabled,
	// must not hide the others.
	out := make([]domain.Attempt, 0, len(list))
	for _, a := range list {
		opened, err := m.open(a)
		if err != nil {
			m.config.Logger.Warn("Skipping unreadable fallback attempt", "attempt_id", a.ID, "kind", a.Kind, "err", err)
			continue
		}
		out = append(out, opened)
	}
	return out, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// Close forwards to the wrapped store when it holds resources.
func (m *encryptionMiddleware) Close() error {
	return closeNext(m.next)
}

func (m *encryptionMiddleware) open(a domain.Attempt) (domain.Attempt, error) {
	plain, err := decryptWithRotation(a.Payload, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("decrypt attempt %s: %w", a.ID, err)
	}
	a.Payload = plain
	return a, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, err
	}
	if plain == nil {
		plain = []byte{}
	}
	return plain, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func closeNext(store ports.FallbackStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
