package usecase

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iho/gospend/internal/domain"
)

// SortKey selects the ordering of a view.
type SortKey string

const (
	SortDateDesc   SortKey = "date_desc"
	SortDateAsc    SortKey = "date_asc"
	SortAmountDesc SortKey = "amount_desc"
	SortAmountAsc  SortKey = "amount_asc"
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// ParseSortKey validates a sort key. Empty selects SortDateDesc.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc, SortNameAsc, SortNameDesc:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSortKey, raw)
	}
}

// Criteria filters and orders a view of the ledger.
type Criteria struct {
	Category string
	Search   string
	Sort     SortKey
}

// View returns the expenses matching c, ordered by c.Sort. Equal elements
// keep ledger order. The input is not modified.
func View(expenses []domain.Expense, c Criteria) []domain.Expense {
	category := strings.TrimSpace(c.Category)
	query := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if category != "" && category != CategoryAll && string(e.Category) != category {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		out = append(out, e.Clone())
	}

	if cmp := comparator(c.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matches(e domain.Expense, query string) bool {
	return strings.Contains(strings.ToLower(e.Title), query) ||
		strings.Contains(strings.ToLower(e.Notes), query) ||
		strings.Contains(e.Amount.String(), query)
}

func comparator(key SortKey) func(a, b domain.Expense) int {
	switch key {
	case SortDateAsc:
		return func(a, b domain.Expense) int { return a.Date.Compare(b.Date) }
	case SortAmountDesc:
		return func(a, b domain.Expense) int { return b.Amount.Cmp(a.Amount) }
	case SortAmountAsc:
		return func(a, b domain.Expense) int { return a.Amount.Cmp(b.Amount) }
	case SortNameAsc:
		col := collate.New(language.Und)
		return func(a, b domain.Expense) int { return col.CompareString(a.Title, b.Title) }
	case SortNameDesc:
		col := collate.New(language.Und)
		return func(a, b domain.Expense) int { return col.CompareString(b.Title, a.Title) }
	case SortDateDesc, "":
		return func(a, b domain.Expense) int { return b.Date.Compare(a.Date) }
	default:
		return nil
	}
}
