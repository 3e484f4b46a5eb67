package usecase

import "time"

const (
	// LedgerKey is the blob store key holding the serialized ledger.
	LedgerKey = "ledger"

	// PreferencesKey is the blob store key holding serialized preferences.
	PreferencesKey = "preferences"

	// RecurrenceTolerance absorbs clock drift and day-boundary rounding when
	// deciding whether a recurring template is due.
	RecurrenceTolerance = 12 * time.Hour

	// TrendDays is the length of the per-day spend window, today included.
	TrendDays = 30

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
