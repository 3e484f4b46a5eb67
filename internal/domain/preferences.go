package domain

import "github.com/shopspring/decimal"

// Preferences are user settings stored apart from the ledger.
// A zero budget means no budget is set.
type Preferences struct {
	Budget   decimal.Decimal `json:"budget"`
	Username string          `json:"username,omitempty"`
}

// DefaultPreferences returns preferences with no budget and no username.
func DefaultPreferences() Preferences {
	return Preferences{Budget: decimal.Zero}
}
