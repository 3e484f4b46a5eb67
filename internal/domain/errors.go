package domain

import "errors"

var (
	// Expense errors
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrExpenseNotFound = errors.New("expense not found")

	// Query errors
	ErrInvalidSortKey = errors.New("invalid sort key")

	// Preferences errors
	ErrInvalidBudget = errors.New("budget must be a non-negative number")

	// Interchange errors
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrInvalidImportMode = errors.New("invalid import mode")

	// Storage errors
	ErrBlobNotFound = errors.New("blob not found")

	// ErrConfirmationDeclined is returned when a destructive operation was not confirmed.
	ErrConfirmationDeclined = errors.New("operation not confirmed")
)
