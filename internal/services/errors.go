package services

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	// ErrNotFound signals that the referenced entity does not exist (404),
	// distinct from a transport or database failure.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner signals that the authenticated actor does not own the record (403).
	ErrNotOwner = errors.New("not owner")

	// ErrAlreadyFavorited signals a duplicate (user, property) favorite pair (400).
	ErrAlreadyFavorited = errors.New("already favorited")

	// ErrInvalidTransition signals an illegal status change for a listing (400).
	ErrInvalidTransition = errors.New("invalid status transition")
)
