package domain

// Requirements is the static credential-requirement schema advertised
// for a platform, used to pre-validate payload shape before any network
// call.
type Requirements struct {
	// RequiredFields must all be present in a credential payload.
	RequiredFields []string

	// OptionalFields may be present.
	OptionalFields []string

	// AuthKind is the authentication mechanism the platform expects.
	AuthKind CredentialKind

	// Description is a short setup hint for the platform.
	Description string
}

// ValidationResult is the outcome of validating a credential payload
// against a platform.
type ValidationResult struct {
	// Valid is true when the shape check and the live check both passed.
	Valid bool

	// Platform is the platform identifier (lowercased).
	Platform string

	// MissingFields lists required fields absent from the payload.
	// When non-empty the live check was skipped.
	MissingFields []string

	// AccountInfo is platform-reported account detail on success.
	AccountInfo map[string]any

	// Error is a human-readable failure description.
	Error string
}
