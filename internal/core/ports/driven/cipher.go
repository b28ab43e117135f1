package driven

import "github.com/metryx-io/metryx/internal/core/domain"

// CredentialCipher encrypts credential payloads at rest. Key
// management and rotation live behind this interface; the core only
// ever sees ciphertext or a fully decrypted payload, never partial
// plaintext.
type CredentialCipher interface {
	// Encrypt seals a payload into ciphertext.
	Encrypt(payload domain.CredentialPayload) ([]byte, error)

	// Decrypt opens ciphertext back into a payload.
	Decrypt(ciphertext []byte) (domain.CredentialPayload, error)
}
