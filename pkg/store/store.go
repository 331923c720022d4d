package store

import "airtech/pkg/domain"

// Store defines persistence operations for accounts and saved profiles.
type Store interface {
	// accounts
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)

	// profiles, keyed by the owner's normalized email
	ListProfiles(email string) ([]domain.SavedProfile, error)
	AppendProfile(email string, p domain.SavedProfile) error
}

// SessionStore persists the marker of who is currently logged in.
type SessionStore interface {
	NewSession(email string) (string, error)
	GetEmailByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
