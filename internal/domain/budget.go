package domain

import "github.com/shopspring/decimal"

// BudgetTier is the alert level derived from the share of budget consumed.
type BudgetTier string

const (
	TierNone     BudgetTier = "none"
	TierNormal   BudgetTier = "normal"
	TierWarning  BudgetTier = "warning"
	TierExceeded BudgetTier = "exceeded"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(80)
)

// BudgetStatus is the result of evaluating spend against a budget.
type BudgetStatus struct {
	Percent          decimal.Decimal `json:"percent"`
	Tier             BudgetTier      `json:"tier"`
	RemainingPercent int64           `json:"remaining_percent"`
	HasBudget        bool            `json:"has_budget"`
}

// EvaluateBudget computes the consumed percentage (capped at 100) and the
// alert tier. A budget <= 0 means no budget is set.
func EvaluateBudget(total, budget decimal.Decimal) BudgetStatus {
	if budget.LessThanOrEqual(decimal.Zero) {
		return BudgetStatus{
			Percent:          decimal.Zero,
			Tier:             TierNone,
			RemainingPercent: 0,
			HasBudget:        false,
		}
	}

	percent := total.Div(budget).Mul(hundred)
	if percent.GreaterThan(hundred) {
		percent = hundred
	}

	tier := TierNormal
	switch {
	case percent.GreaterThanOrEqual(hundred):
		tier = TierExceeded
	case percent.GreaterThanOrEqual(warningThreshold):
		tier = TierWarning
	}

	remaining := hundred.Sub(percent).Round(0).IntPart()
	if remaining < 0 {
		remaining = 0
	}

	return BudgetStatus{
		Percent:          percent,
		Tier:             tier,
		RemainingPercent: remaining,
		HasBudget:        true,
	}
}
