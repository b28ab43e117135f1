package domain

import "time"

// CredentialKind identifies how a platform authenticates.
type CredentialKind string

const (
	// CredentialOAuth2 is OAuth2 client credentials plus a refresh token.
	CredentialOAuth2 CredentialKind = "oauth2"

	// CredentialAPIKey is a single static API key.
	CredentialAPIKey CredentialKind = "api_key"

	// CredentialServiceAccount is a service-account key blob.
	CredentialServiceAccount CredentialKind = "service_account"
)

// ValidationStatus is the last known outcome of a credential check.
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
	ValidationExpired ValidationStatus = "expired"
)

// CredentialPayload is a decrypted credential as field name to secret value.
// It only ever exists in memory; at rest credentials are ciphertext.
type CredentialPayload map[string]string

// Credential binds an encrypted platform secret to a project.
// At most one credential per (project, platform) pair.
type Credential struct {
	// ID is the unique identifier for the credential.
	ID string

	// ProjectID is the owning project.
	ProjectID string

	// Platform is the platform identifier (e.g. "google_ads").
	Platform string

	// Kind is the authentication mechanism.
	Kind CredentialKind

	// Encrypted is the age-encrypted JSON payload.
	Encrypted []byte

	// Active gates use of the credential.
	Active bool

	// ExpiresAt is when the credential expires, if known.
	ExpiresAt *time.Time

	// LastValidatedAt is when the credential was last checked live.
	LastValidatedAt *time.Time

	// Validation is the outcome of the last live check.
	Validation ValidationStatus

	// CreatedAt is when the credential was stored.
	CreatedAt time.Time

	// UpdatedAt is when the credential was last updated.
	UpdatedAt time.Time
}
