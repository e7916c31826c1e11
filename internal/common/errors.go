// Package common defines sentinel errors shared by the storage, files and
// CLI layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Input validation errors.
	ErrNoRecordID   = errors.New("record has no identifier")
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidUsage = errors.New("invalid usage")

	// Setup errors.
	ErrInvalidConnection = errors.New("invalid backend connection")
	ErrUnknownProvider   = errors.New("unknown storage provider")

	// Transfer errors.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)
