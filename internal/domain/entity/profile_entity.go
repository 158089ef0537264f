package entity

// Profile holds the public-facing attributes of a user account.
// Created atomically with its User; mutated independently thereafter.
type Profile struct {
	ID          string
	DisplayName string
	Avatar      string // stored object name, or the configured default sentinel
	Bio         string
	Location    string
	UserID      string
}
