package types

import "errors"

// Document errors.
var (
	ErrParse          = errors.New("malformed document")
	ErrNoDocument     = errors.New("no document loaded")
	ErrRecordNotFound = errors.New("record not found")
)

// Editing errors.
var (
	ErrNoActiveRecord = errors.New("no active record")
	ErrFieldNotFound  = errors.New("field not found")
	ErrNotRepeatable  = errors.New("field is not repeatable")
	ErrUnknownOption  = errors.New("value is not a known option")
)

// Bulk edit errors.
var (
	ErrFieldMismatch  = errors.New("number of original values does not match the number of selected records")
	ErrUnknownParam   = errors.New("unknown parameter")
	ErrNotScalable    = errors.New("parameter has no slider")
	ErrInvalidPercent = errors.New("slider percentage out of range")
	ErrSessionClosed  = errors.New("bulk edit session is closed")
	ErrNoDefaults     = errors.New("no default values loaded")
	ErrEmptyValue     = errors.New("value is empty")
)
