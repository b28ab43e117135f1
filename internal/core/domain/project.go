package domain

import "time"

// Project is the tenancy unit. Credentials, data sources and webhooks
// all belong to exactly one project.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the human-readable project name.
	Name string

	// Active gates all extraction work for the project.
	Active bool

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last updated.
	UpdatedAt time.Time
}
