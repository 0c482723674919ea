// Package services defines the business logic for the pet registry: the
// pet lifecycle state machine, kind aggregates, and geography lookups.
// This file centralizes common service-level error values so that they can
// be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

var (
	// ErrPetNotFound indicates that the requested pet does not exist.
	ErrPetNotFound = errors.New("pet not found")

	// ErrOwnerNotFound indicates that the referenced owner profile does
	// not exist; pets cannot be registered without one.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrCityNotFound indicates that the referenced city does not exist.
	ErrCityNotFound = errors.New("city not found")

	// ErrNameRequired is returned when a pet registration has no name.
	ErrNameRequired = errors.New("pet name is required")

	// ErrInvalidStatus is returned when a status code is outside the
	// closed enumeration.
	ErrInvalidStatus = errors.New("invalid status code")

	// ErrInvalidSize is returned when a size code is outside the closed
	// enumeration (empty means unset and is allowed).
	ErrInvalidSize = errors.New("invalid size code")

	// ErrInvalidSex is returned when a sex code is outside the closed
	// enumeration (empty means unset and is allowed).
	ErrInvalidSex = errors.New("invalid sex code")

	// ErrBadRequestKey is returned when an activation confirmation key
	// does not match the pet's outstanding request key.
	ErrBadRequestKey = errors.New("request key mismatch")

	// ErrKindNameRequired is returned when a kind is created with no name.
	ErrKindNameRequired = errors.New("kind name is required")

	// ErrOwnerEmailRequired is returned when an owner profile is created
	// without an email; notifications would have no recipient.
	ErrOwnerEmailRequired = errors.New("owner email is required")
)
