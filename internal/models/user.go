package models

// User represents a person in the directory.
// Users are immutable once created.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`

	// Name is the display name of the user.
	Name string `json:"name"`

	// Email is the user's email address (unique).
	// Used to dedupe members when building groups.
	Email string `json:"email"`
}
