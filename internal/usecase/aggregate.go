package usecase

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gospend/internal/domain"
)

const dayLayout = "2006-01-02"

// CategoryTotal is the summed spend of one category.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
}

// DailyTotal is the summed spend of one calendar day.
type DailyTotal struct {
	Day   string          `json:"day"`
	Total decimal.Decimal `json:"total"`
}

// Stats are aggregates over the whole ledger.
type Stats struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"byCategory"`
	Unknown    []CategoryTotal `json:"unknown"`
	Daily      []DailyTotal    `json:"daily"`
}

// Aggregate computes totals over every expense regardless of any view
// filter. Daily covers the TrendDays calendar days ending today in loc,
// oldest first.
func Aggregate(expenses []domain.Expense, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.Local
	}

	stats := Stats{
		Total:   decimal.Zero,
		Count:   len(expenses),
		Unknown: []CategoryTotal{},
	}

	known := make(map[domain.Category]int, len(domain.Categories))
	stats.ByCategory = make([]CategoryTotal, len(domain.Categories))
	for i, c := range domain.Categories {
		known[c] = i
		stats.ByCategory[i] = CategoryTotal{Category: c, Label: c.Label(), Total: decimal.Zero}
	}

	today := now.In(loc)
	days := make(map[string]int, TrendDays)
	stats.Daily = make([]DailyTotal, TrendDays)
	for i := range TrendDays {
		d := time.Date(today.Year(), today.Month(), today.Day()-(TrendDays-1-i), 0, 0, 0, 0, loc)
		key := d.Format(dayLayout)
		days[key] = i
		stats.Daily[i] = DailyTotal{Day: key, Total: decimal.Zero}
	}

	unknown := make(map[domain.Category]decimal.Decimal)
	for _, e := range expenses {
		stats.Total = stats.Total.Add(e.Amount)

		if i, ok := known[e.Category]; ok {
			stats.ByCategory[i].Total = stats.ByCategory[i].Total.Add(e.Amount)
		} else {
			unknown[e.Category] = unknown[e.Category].Add(e.Amount)
		}

		if i, ok := days[e.Date.In(loc).Format(dayLayout)]; ok {
			stats.Daily[i].Total = stats.Daily[i].Total.Add(e.Amount)
		}
	}

	for c, total := range unknown {
		stats.Unknown = append(stats.Unknown, CategoryTotal{Category: c, Label: c.Label(), Total: total})
	}
	slices.SortFunc(stats.Unknown, func(a, b CategoryTotal) int {
		return strings.Compare(string(a.Category), string(b.Category))
	})

	return stats
}
