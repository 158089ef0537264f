package entity

import "time"

// SessionStatus is the lifecycle state of one authenticated client binding.
//
// Transitions: ActiveSession -> ExpiredSession (lazily, on the first
// validation after the deadline) and ActiveSession -> InactiveSession
// (explicit logout). Both target states are terminal.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionInactive SessionStatus = "inactive"
	SessionExpired  SessionStatus = "expired"
)

// Session binds one access token to one client device of a user.
// A user may hold many sessions concurrently.
type Session struct {
	ID                string
	AccessToken       string // 128-bit random hex, globally unique
	ClientFingerprint string // sha256 hex of stable request headers
	Status            SessionStatus
	ExpiresAt         time.Time
	UserID            string
}

// Usable reports whether the session may authenticate a request presenting
// the stored fingerprint at time now. It does not mutate state; the lazy
// expiry transition is the session service's job.
func (s *Session) Usable(now time.Time) bool {
	return s.Status == SessionActive && now.Before(s.ExpiresAt)
}
