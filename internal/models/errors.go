package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrDuplicateTransaction indicates a transaction with the same reference already exists
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrDuplicateAccountNumber indicates the generated account number is already taken
	ErrDuplicateAccountNumber = errors.New("duplicate account number")

	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")
)
