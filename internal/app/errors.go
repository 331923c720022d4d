package app

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The message is intended for end users and must not enable account
	// enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("an account with this email already exists")

	ErrProfileNameRequired = errors.New("profile name required")
	ErrCustomPromptRequired = errors.New("custom email instructions required for the custom approach")

	ErrNoProfilesSelected = errors.New("select at least one profile to search for leads")
)
