package models

import "errors"

// Sentinel errors shared across repositories, services and handlers.
// Handlers translate authentication failures into one generic client
// message so the response text never reveals which check failed.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAdminExists        = errors.New("admin account already exists")
	ErrLoginURLTaken      = errors.New("login url already in use")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrInvalidInput       = errors.New("invalid input")
)
