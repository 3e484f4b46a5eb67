package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

const (
	dateLayout   = "2006-01-02"
	maxTitleCols = 32
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printExpenses(out io.Writer, expenses []domain.Expense, loc *time.Location) error {
	if len(expenses) == 0 {
		_, err := fmt.Fprintln(out, "No expenses.")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT\tREPEAT")

	total := decimal.Zero
	for _, e := range expenses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Date.In(loc).Format(dateLayout),
			truncate(e.Title, maxTitleCols),
			e.Category.Label(),
			e.Amount.StringFixed(2),
			repeatLabel(e),
		)
		total = total.Add(e.Amount)
	}
	fmt.Fprintf(w, "\t\t\tTOTAL\t%s\t\n", total.StringFixed(2))

	return w.Flush()
}

func printExpense(out io.Writer, e domain.Expense, loc *time.Location) {
	fmt.Fprintf(out, "ID:        %s\n", e.ID)
	fmt.Fprintf(out, "Title:     %s\n", e.Title)
	fmt.Fprintf(out, "Amount:    %s\n", e.Amount.StringFixed(2))
	fmt.Fprintf(out, "Category:  %s\n", e.Category.Label())
	fmt.Fprintf(out, "Date:      %s\n", e.Date.In(loc).Format(time.RFC3339))
	if e.Notes != "" {
		fmt.Fprintf(out, "Notes:     %s\n", e.Notes)
	}
	if e.Recurring != nil {
		fmt.Fprintf(out, "Repeats:   %s\n", repeatLabel(e))
		if next, ok := usecase.NextOccurrence(e); ok {
			fmt.Fprintf(out, "Next:      %s\n", next.In(loc).Format(dateLayout))
		}
	}
}

func printStats(out io.Writer, stats usecase.Stats) error {
	fmt.Fprintf(out, "Total: %s across %d expenses\n\n", stats.Total.StringFixed(2), stats.Count)

	w := newTable(out)
	fmt.Fprintln(w, "CATEGORY\tTOTAL")
	for _, c := range stats.ByCategory {
		fmt.Fprintf(w, "%s\t%s\n", c.Label, c.Total.StringFixed(2))
	}
	for _, c := range stats.Unknown {
		fmt.Fprintf(w, "%s\t%s\n", c.Label, c.Total.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nLast 30 days:")
	w = newTable(out)
	for _, d := range stats.Daily {
		if d.Total.IsZero() {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", d.Day, d.Total.StringFixed(2))
	}
	return w.Flush()
}

func printBudget(out io.Writer, budget, spent decimal.Decimal, status domain.BudgetStatus) {
	if !status.HasBudget {
		fmt.Fprintf(out, "No budget set. Spent %s.\n", spent.StringFixed(2))
		return
	}

	fmt.Fprintf(out, "Spent %s of %s (%s%%, %d%% left)\n",
		spent.StringFixed(2), budget.StringFixed(2), status.Percent.StringFixed(1), status.RemainingPercent)

	switch status.Tier {
	case domain.TierExceeded:
		fmt.Fprintln(out, "Budget exceeded!")
	case domain.TierWarning:
		fmt.Fprintln(out, "Warning: over 80% of the budget is spent.")
	}
}

func printUpcoming(out io.Writer, upcoming []usecase.Upcoming, loc *time.Location) error {
	if len(upcoming) == 0 {
		_, err := fmt.Fprintln(out, "Nothing due.")
		return err
	}

	w := newTable(out)
	fmt.Fprintln(w, "DUE\tTITLE\tAMOUNT\tREPEAT")
	for _, u := range upcoming {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			u.DueAt.In(loc).Format(dateLayout),
			truncate(u.Template.Title, maxTitleCols),
			u.Template.Amount.StringFixed(2),
			repeatLabel(u.Template),
		)
	}
	return w.Flush()
}

func repeatLabel(e domain.Expense) string {
	if e.Recurring == nil {
		return ""
	}
	if e.Recurring.SpawnedID != "" {
		return string(e.Recurring.Frequency) + " (done)"
	}
	return string(e.Recurring.Frequency)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-3])) + "..."
}
