// Package common defines the sentinel errors shared across the profile
// service layers. Callers should use errors.Is to match these values;
// handlers map them to HTTP status codes at the request boundary.
package common

import "errors"

var (
	// Caller-correctable input errors (400).
	ErrValidation = errors.New("validation error")

	// Duplicate identity in a collection (409).
	ErrConflict = errors.New("already exists")

	// Lookup misses (404).
	ErrNotFound = errors.New("not found")

	// Store-level failures (500).
	ErrConfigMissing    = errors.New("database URI not configured")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrPersistence      = errors.New("persistence error")

	// Org verification errors.
	ErrNotOrgAdmin  = errors.New("not an organization admin")
	ErrVerification = errors.New("verification failed")

	// Bounty ledger errors.
	ErrInsufficientBalance = errors.New("insufficient available balance")
)
