// internal/vault/vault.go

// Package vault stores named secrets encrypted at rest in process memory.
// Values are sealed with AES-GCM under a key derived from the configured
// passphrase, and are never written to logs.
package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
)

// Vault is an in-memory SecretVault implementation.
type Vault struct {
	mu      sync.RWMutex
	aead    cipher.AEAD
	secrets map[string][]byte
	log     *zap.Logger
}

// New derives the encryption key from the passphrase and returns an empty
// vault. An empty passphrase is rejected.
func New(passphrase string, logger *zap.Logger) (*Vault, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("vault passphrase is required")
	}

	key := sha256.Sum256([]byte(passphrase))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &Vault{
		aead:    aead,
		secrets: make(map[string][]byte),
		log:     logger.Named("vault"),
	}, nil
}

// Store seals the value and replaces any previous secret under the same name.
func (v *Vault) Store(_ context.Context, name, value string) error {
	if name == "" {
		return fmt.Errorf("secret name is required")
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(value), []byte(name))

	v.mu.Lock()
	v.secrets[name] = sealed
	v.mu.Unlock()

	v.log.Info("Secret stored", zap.String("name", name))
	return nil
}

// Retrieve opens the secret under name. Unknown names yield an error
// satisfying errors.Is(err, schemas.ErrSecretNotFound).
func (v *Vault) Retrieve(_ context.Context, name string) (string, error) {
	v.mu.RLock()
	sealed, ok := v.secrets[name]
	v.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("secret %q: %w", name, schemas.ErrSecretNotFound)
	}

	nonceSize := v.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("secret %q is corrupt", name)
	}
	plaintext, err := v.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(name))
	if err != nil {
		return "", fmt.Errorf("failed to open secret %q: %w", name, err)
	}
	return string(plaintext), nil
}

// Delete removes the secret under name; deleting an unknown name is an error
// so the user hears about typos.
func (v *Vault) Delete(_ context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.secrets[name]; !ok {
		return fmt.Errorf("secret %q: %w", name, schemas.ErrSecretNotFound)
	}
	delete(v.secrets, name)
	v.log.Info("Secret deleted", zap.String("name", name))
	return nil
}

// List returns the stored secret names in sorted order, never the values.
func (v *Vault) List(_ context.Context) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	names := make([]string, 0, len(v.secrets))
	for name := range v.secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
