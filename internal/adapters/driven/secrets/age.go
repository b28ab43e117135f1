// Package secrets encrypts credential payloads at rest with age
// X25519 keys. The key lives in a file next to the database; losing it
// means re-entering every credential, never losing extracted data.
package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/metryx-io/metryx/internal/core/domain"
	"github.com/metryx-io/metryx/internal/core/ports/driven"
)

var _ driven.CredentialCipher = (*Cipher)(nil)

// Cipher seals and opens credential payloads with a single X25519
// identity.
type Cipher struct {
	identity *age.X25519Identity
}

// NewCipher creates a cipher from an age secret key string
// ("AGE-SECRET-KEY-1...").
func NewCipher(secretKey string) (*Cipher, error) {
	identity, err := age.ParseX25519Identity(strings.TrimSpace(secretKey))
	if err != nil {
		return nil, fmt.Errorf("parsing age identity: %w", err)
	}
	return &Cipher{identity: identity}, nil
}

// LoadOrCreate reads the identity from keyPath, generating and
// persisting a fresh one (mode 0600) on first use.
func LoadOrCreate(keyPath string) (*Cipher, error) {
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		return NewCipher(string(raw))
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(identity.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}
	return &Cipher{identity: identity}, nil
}

// Encrypt seals a payload into age ciphertext.
func (c *Cipher) Encrypt(payload domain.CredentialPayload) ([]byte, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, c.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("sealing payload: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt opens ciphertext back into a payload.
func (c *Cipher) Decrypt(ciphertext []byte) (domain.CredentialPayload, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), c.identity)
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}

	var payload domain.CredentialPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	return payload, nil
}
