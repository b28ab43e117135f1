package integrations

import "github.com/metryx-io/metryx/internal/core/domain"

// requirements is the static credential-requirement schema per
// platform, keyed by lowercase platform identifier.
var requirements = map[string]domain.Requirements{
	"google_ads": {
		RequiredFields: []string{"client_id", "client_secret", "refresh_token", "developer_token"},
		OptionalFields: []string{"customer_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Google Ads API requires OAuth2 authentication and a developer token",
	},
	"facebook_ads": {
		RequiredFields: []string{"access_token", "app_id", "app_secret"},
		OptionalFields: []string{"ad_account_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Facebook Marketing API requires a long-lived access token",
	},
	"meta_ads": {
		RequiredFields: []string{"access_token", "app_id", "app_secret"},
		OptionalFields: []string{"ad_account_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Meta Marketing API requires a long-lived access token",
	},
	"ga4": {
		RequiredFields: []string{"service_account_key", "property_id"},
		AuthKind:       domain.CredentialServiceAccount,
		Description:    "Google Analytics 4 requires a service account key",
	},
	"google_analytics": {
		RequiredFields: []string{"service_account_key", "view_id"},
		AuthKind:       domain.CredentialServiceAccount,
		Description:    "Google Analytics requires a service account key",
	},
	"instagram_insights": {
		RequiredFields: []string{"access_token", "instagram_business_account_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Instagram Basic Display API requires an access token",
	},
	"facebook_insights": {
		RequiredFields: []string{"access_token", "page_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Facebook Graph API requires an access token",
	},
	"shopify": {
		RequiredFields: []string{"shop_domain", "access_token"},
		AuthKind:       domain.CredentialAPIKey,
		Description:    "Shopify Admin API requires a private app access token",
	},
	"amazon_ads": {
		RequiredFields: []string{"client_id", "client_secret", "refresh_token"},
		OptionalFields: []string{"profile_id"},
		AuthKind:       domain.CredentialOAuth2,
		Description:    "Amazon Advertising API requires OAuth2 authentication",
	},
	"metricool": {
		RequiredFields: []string{"api_key"},
		AuthKind:       domain.CredentialAPIKey,
		Description:    "Metricool API requires an API key",
	},
	"klaviyo": {
		RequiredFields: []string{"api_key"},
		AuthKind:       domain.CredentialAPIKey,
		Description:    "Klaviyo API requires an API key",
	},
}

// RequirementsFor returns the credential-requirement schema for a
// platform. Unknown platforms get the generic API-key fallback, same
// as any other single-key platform.
func RequirementsFor(platform string) domain.Requirements {
	if req, ok := requirements[platform]; ok {
		return req
	}
	return domain.Requirements{
		RequiredFields: []string{"api_key"},
		AuthKind:       domain.CredentialAPIKey,
		Description:    "Platform-specific credentials required",
	}
}
