package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTitleLength = 200
	MaxNotesLength = 2000
	MaxAmount      = "1000000000" // 1 billion
)

var (
	ErrTitleTooLong  = errors.New("title too long")
	ErrNotesTooLong  = errors.New("notes too long")
	ErrAmountTooHigh = errors.New("amount exceeds maximum allowed")
)

// ValidateExpenseInput checks the fields a user must supply before an
// expense is created or edited. It is called by the owner of the ledger,
// never by the expense factory itself.
func ValidateExpenseInput(title string, amount decimal.Decimal) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	return ValidateAmount(amount)
}

// ValidateTitle validates an expense title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return ErrEmptyTitle
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: max %d characters", ErrTitleTooLong, MaxTitleLength)
	}

	return nil
}

// ValidateAmount rejects zero, negative and absurdly large amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooHigh, MaxAmount)
	}

	return nil
}

// ValidateNotes validates free-text notes.
func ValidateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return fmt.Errorf("%w: max %d characters", ErrNotesTooLong, MaxNotesLength)
	}
	return nil
}

// ValidateBudget parses a budget entered by the user.
func ValidateBudget(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}

	budget, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidBudget, raw)
	}
	if budget.IsNegative() {
		return decimal.Zero, ErrInvalidBudget
	}

	return budget, nil
}

// IsValidationError reports whether err comes from user input validation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmptyTitle,
		ErrInvalidAmount,
		ErrTitleTooLong,
		ErrNotesTooLong,
		ErrAmountTooHigh,
		ErrInvalidBudget,
		ErrInvalidSortKey,
		ErrInvalidImportMode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
