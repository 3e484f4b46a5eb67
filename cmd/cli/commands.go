package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// declined turns a refused confirmation into a quiet cancel.
func declined(cmd *cobra.Command, err error) error {
	if errors.Is(err, domain.ErrConfirmationDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}
	return err
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		category string
		date     string
		notes    string
		repeat   string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE AMOUNT",
		Short: "Record an expense",
		Args:  cobra.ExactArgs(2),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			in := usecase.ExpenseInput{
				Title:      args[0],
				Amount:     args[1],
				Category:   category,
				Notes:      notes,
				Recurrence: repeat,
			}
			if date != "" {
				t, err := domain.ParseDate(date, s.location)
				if err != nil {
					return err
				}
				in.Date = t
			}

			expense, err := s.ledger.AddExpense(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s\n", expense.ID, expense.Title, expense.Amount.StringFixed(2))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryOther), "Category id")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date (YYYY-MM-DD), defaults to now")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", "none", "Recurrence: none, daily, weekly or monthly")

	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var title, amount, category, date, notes, repeat string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of an expense",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			var patch usecase.ExpensePatch
			flags := cmd.Flags()

			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("amount") {
				patch.Amount = &amount
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("repeat") {
				patch.Recurrence = &repeat
			}
			if flags.Changed("date") {
				t, err := domain.ParseDate(date, s.location)
				if err != nil {
					return err
				}
				patch.Date = &t
			}

			if patch.IsEmpty() {
				return errors.New("nothing to change")
			}

			expense, err := s.ledger.EditExpense(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", expense.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&amount, "amount", "", "New amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category id")
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "New notes")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", "", "New recurrence: none, daily, weekly or monthly")

	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			expense, err := s.ledger.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printExpense(cmd.OutOrStdout(), expense, s.location)
			return nil
		}),
	}
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.ledger.DeleteExpense(cmd.Context(), args[0]); err != nil {
				return declined(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense, keeping preferences",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			removed, err := s.ledger.ClearAll(cmd.Context())
			if err != nil {
				return declined(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expenses\n", removed)
			return nil
		}),
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var category, search, sortKey string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses",
		Args:    cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			key, err := usecase.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			expenses := s.ledger.View(cmd.Context(), usecase.Criteria{
				Category: category,
				Search:   search,
				Sort:     key,
			})
			return printExpenses(cmd.OutOrStdout(), expenses, s.location)
		}),
	}

	cmd.Flags().StringVarP(&category, "category", "c", usecase.CategoryAll, "Only this category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text in title, notes or amount")
	cmd.Flags().StringVar(&sortKey, "sort", string(usecase.SortDateDesc), "date_desc, date_asc, amount_desc, amount_asc, name_asc or name_desc")

	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals by category and the last 30 days",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			return printStats(cmd.OutOrStdout(), s.ledger.Stats(cmd.Context()))
		}),
	}
}

func newBudgetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show spend against the budget",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			prefs := s.preferences.Get(cmd.Context())
			stats := s.ledger.Stats(cmd.Context())
			printBudget(cmd.OutOrStdout(), prefs.Budget, stats.Total, s.ledger.BudgetStatus(cmd.Context()))
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set AMOUNT",
		Short: "Set the budget, 0 removes it",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			prefs, err := s.preferences.SetBudget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if prefs.Budget.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "Budget removed")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget set to %s\n", prefs.Budget.StringFixed(2))
			return nil
		}),
	})

	return cmd
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show the display name",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			name := s.preferences.Get(cmd.Context()).Username
			if name == "" {
				name = "(not set)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set NAME",
		Short: "Set the display name",
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			prefs, err := s.preferences.SetUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s\n", prefs.Username)
			return nil
		}),
	})

	return cmd
}

func newRecurCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recur",
		Short: "Create any recurring expenses that are due",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			// Opening the session already ran one pass; this catches anything
			// that became due since.
			spawned, err := s.ledger.RunRecurrence(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d recurring expenses\n", len(spawned))
			return nil
		}),
	}
}

func newUpcomingCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List recurring expenses due soon",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			if days < 1 {
				return fmt.Errorf("days must be at least 1, got %d", days)
			}
			upcoming := s.ledger.Upcoming(cmd.Context(), time.Duration(days)*24*time.Hour)
			return printUpcoming(cmd.OutOrStdout(), upcoming, s.location)
		}),
	}

	cmd.Flags().IntVar(&days, "days", 7, "Look-ahead window in days")

	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export csv|json",
		Short:     "Export the ledger",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(usecase.ExportCSV), string(usecase.ExportJSON)},
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			var (
				data     []byte
				filename string
				err      error
			)
			switch usecase.ExportKind(args[0]) {
			case usecase.ExportCSV:
				data, filename = s.ledger.ExportCSV(cmd.Context())
			case usecase.ExportJSON:
				data, filename, err = s.ledger.ExportJSON(cmd.Context())
				if err != nil {
					return err
				}
			}

			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file, "-" for stdout (default: dated file in the current directory)`)

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON backup",
		Long:  `Import a JSON backup. Merge adds expenses whose id is new; replace swaps the whole ledger. Use "-" to read stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			importMode, err := usecase.ParseImportMode(mode)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			result, err := s.ledger.Import(cmd.Context(), raw, importMode)
			if err != nil {
				return declined(cmd, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d expenses (%d skipped, %d total)\n",
				result.Imported, result.Skipped, result.Total)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(usecase.ImportMerge), "merge or replace")

	return cmd
}

func newWipeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Delete all expenses and preferences",
		Args:  cobra.NoArgs,
		RunE: opts.run(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.ledger.DeleteAllData(cmd.Context()); err != nil {
				return declined(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data deleted")
			return nil
		}),
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return raw, nil
}
