package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
	"github.com/iho/gospend/internal/usecase/mocks"
)

var ledgerNow = time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	uc        *usecase.LedgerUseCase
	prefs     *usecase.PreferencesUseCase
	blobs     *mocks.FakeBlobStore
	clock     *mocks.FixedClock
	confirmer *mocks.StaticConfirmer
}

func newLedgerFixture(t *testing.T, metrics usecase.Metrics) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureIn(t, metrics, time.UTC)
}

func newLedgerFixtureIn(t *testing.T, metrics usecase.Metrics, loc *time.Location) *ledgerFixture {
	t.Helper()

	blobs := mocks.NewFakeBlobStore()
	clock := mocks.NewFixedClock(ledgerNow)
	confirmer := &mocks.StaticConfirmer{Answer: true}
	store := usecase.NewLedgerStore(blobs, clock, nil, zerolog.Nop())
	prefs := usecase.NewPreferencesUseCase(store)

	uc := usecase.NewLedgerUseCase(usecase.LedgerUseCaseConfig{
		Store:       store,
		Preferences: prefs,
		IDGen:       mocks.NewSequenceIDGenerator(),
		Clock:       clock,
		Confirmer:   confirmer,
		Metrics:     metrics,
		Location:    loc,
		Logger:      zerolog.Nop(),
	})

	return &ledgerFixture{uc: uc, prefs: prefs, blobs: blobs, clock: clock, confirmer: confirmer}
}

func (f *ledgerFixture) add(t *testing.T, title, amount string) domain.Expense {
	t.Helper()
	e, err := f.uc.AddExpense(context.Background(), usecase.ExpenseInput{Title: title, Amount: amount, Category: "food"})
	if err != nil {
		t.Fatalf("add %q: %v", title, err)
	}
	return e
}

func TestLedgerUseCase_AddExpense(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().ExpenseCreated().Times(1)

	f := newLedgerFixture(t, metrics)
	ctx := context.Background()

	e := f.add(t, "Groceries", "54.20")

	if e.ID == "" {
		t.Fatal("expected id")
	}
	if got := f.uc.Expenses(ctx); len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("expected expense in ledger, got %+v", got)
	}

	reloaded := usecase.NewLedgerStore(f.blobs, f.clock, nil, zerolog.Nop()).Load(ctx, time.UTC)
	if len(reloaded.Expenses) != 1 {
		t.Errorf("expected expense persisted, got %d", len(reloaded.Expenses))
	}
}

func TestLedgerUseCase_AddExpenseValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.ExpenseInput
		wantErr error
	}{
		{"empty title", usecase.ExpenseInput{Title: "  ", Amount: "5"}, domain.ErrEmptyTitle},
		{"zero amount", usecase.ExpenseInput{Title: "Tea", Amount: "0"}, domain.ErrInvalidAmount},
		{"non numeric amount", usecase.ExpenseInput{Title: "Tea", Amount: "free"}, domain.ErrInvalidAmount},
		{"negative amount", usecase.ExpenseInput{Title: "Tea", Amount: "-3"}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, nil)

			_, err := f.uc.AddExpense(context.Background(), tt.input)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if f.blobs.Puts() != 0 {
				t.Error("rejected input must not be persisted")
			}
			if n := len(f.uc.Expenses(context.Background())); n != 0 {
				t.Errorf("expected empty ledger, got %d", n)
			}
		})
	}
}

func TestLedgerUseCase_FailedSaveKeepsState(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	first := f.add(t, "Coffee", "3")

	f.blobs.PutFunc = func(context.Context, string, []byte) error { return errors.New("disk full") }

	if _, err := f.uc.AddExpense(ctx, usecase.ExpenseInput{Title: "Cake", Amount: "4"}); err == nil {
		t.Fatal("expected save error")
	}
	if _, err := f.uc.EditExpense(ctx, first.ID, usecase.ExpensePatch{Title: ptr("Tea")}); err == nil {
		t.Fatal("expected save error")
	}

	got := f.uc.Expenses(ctx)
	if len(got) != 1 || got[0].Title != "Coffee" {
		t.Errorf("expected last known-good state, got %+v", got)
	}
}

func TestLedgerUseCase_EditExpense(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	e := f.add(t, "Lunch", "12")
	f.add(t, "Dinner", "30")

	updated, err := f.uc.EditExpense(ctx, e.ID, usecase.ExpensePatch{Amount: ptr("14.5"), Category: ptr("bills")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != e.ID || !updated.Amount.Equal(decimal.RequireFromString("14.5")) || updated.Category != domain.CategoryBills {
		t.Errorf("unexpected update %+v", updated)
	}

	got := f.uc.Expenses(ctx)
	if got[0].ID != e.ID {
		t.Error("edit must keep ledger position")
	}

	if _, err := f.uc.EditExpense(ctx, "missing", usecase.ExpensePatch{Title: ptr("x")}); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
	if _, err := f.uc.EditExpense(ctx, e.ID, usecase.ExpensePatch{Title: ptr("")}); !errors.Is(err, domain.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := f.uc.EditExpense(ctx, e.ID, usecase.ExpensePatch{Amount: ptr("0")}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestLedgerUseCase_DeleteExpense(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	e := f.add(t, "Cinema", "11")
	keep := f.add(t, "Popcorn", "5")

	f.confirmer.Answer = false
	if err := f.uc.DeleteExpense(ctx, e.ID); !errors.Is(err, domain.ErrConfirmationDeclined) {
		t.Fatalf("expected ErrConfirmationDeclined, got %v", err)
	}
	if n := len(f.uc.Expenses(ctx)); n != 2 {
		t.Fatalf("declined delete must keep ledger, got %d", n)
	}
	if len(f.confirmer.Prompts) != 1 {
		t.Errorf("expected one prompt, got %v", f.confirmer.Prompts)
	}

	f.confirmer.Answer = true
	if err := f.uc.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := f.uc.Expenses(ctx)
	if len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("expected only %s left, got %+v", keep.ID, got)
	}

	if err := f.uc.DeleteExpense(ctx, "missing"); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestLedgerUseCase_ClearAll(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	if n, err := f.uc.ClearAll(ctx); err != nil || n != 0 {
		t.Fatalf("clearing an empty ledger should be a no-op, got %d, %v", n, err)
	}
	if len(f.confirmer.Prompts) != 0 {
		t.Error("empty ledger must not ask for confirmation")
	}

	f.add(t, "A", "1")
	f.add(t, "B", "2")
	created := f.uc.Snapshot(ctx).Meta.CreatedAt

	n, err := f.uc.ClearAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d, %v", n, err)
	}
	snap := f.uc.Snapshot(ctx)
	if len(snap.Expenses) != 0 {
		t.Errorf("expected empty ledger, got %d", len(snap.Expenses))
	}
	if !snap.Meta.CreatedAt.Equal(created) {
		t.Error("clear must keep ledger metadata")
	}
}

func TestLedgerUseCase_DeleteAllData(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	f.add(t, "A", "1")
	if _, err := f.prefs.SetBudget(ctx, "500"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.confirmer.Answer = false
	if err := f.uc.DeleteAllData(ctx); !errors.Is(err, domain.ErrConfirmationDeclined) {
		t.Fatalf("expected ErrConfirmationDeclined, got %v", err)
	}
	if len(f.uc.Expenses(ctx)) != 1 || f.prefs.Get(ctx).Budget.IsZero() {
		t.Fatal("declined wipe must keep all data")
	}

	f.confirmer.Answer = true
	if err := f.uc.DeleteAllData(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.uc.Expenses(ctx)) != 0 {
		t.Error("expected empty ledger")
	}
	if !f.prefs.Get(ctx).Budget.IsZero() {
		t.Error("expected default preferences")
	}
}

func TestLedgerUseCase_DeleteAllData_FailedResetKeepsLedger(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	f.add(t, "A", "1")
	if _, err := f.prefs.SetBudget(ctx, "500"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := f.blobs.Raw(usecase.LedgerKey)

	f.blobs.PutFunc = func(_ context.Context, key string, value []byte) error {
		if key == usecase.PreferencesKey {
			return errors.New("disk full")
		}
		f.blobs.Set(key, value)
		return nil
	}

	if err := f.uc.DeleteAllData(ctx); err == nil {
		t.Fatal("expected reset error")
	}
	if len(f.uc.Expenses(ctx)) != 1 {
		t.Error("failed wipe must keep the ledger")
	}
	if !bytes.Equal(f.blobs.Raw(usecase.LedgerKey), stored) {
		t.Error("failed wipe must not touch the stored ledger")
	}
	if !f.prefs.Get(ctx).Budget.Equal(decimal.NewFromInt(500)) {
		t.Error("failed wipe must keep preferences")
	}
}

func TestLedgerUseCase_DeleteAllData_FailedSaveRestoresPreferences(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	f.add(t, "A", "1")
	if _, err := f.prefs.SetBudget(ctx, "500"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.blobs.PutFunc = func(_ context.Context, key string, value []byte) error {
		if key == usecase.LedgerKey {
			return errors.New("disk full")
		}
		f.blobs.Set(key, value)
		return nil
	}

	if err := f.uc.DeleteAllData(ctx); err == nil {
		t.Fatal("expected save error")
	}
	if len(f.uc.Expenses(ctx)) != 1 {
		t.Error("failed wipe must keep the ledger")
	}
	if !f.prefs.Get(ctx).Budget.Equal(decimal.NewFromInt(500)) {
		t.Error("failed wipe must restore preferences")
	}
	reloaded := usecase.NewLedgerStore(f.blobs, f.clock, nil, zerolog.Nop()).LoadPreferences(ctx)
	if !reloaded.Budget.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected stored budget 500, got %s", reloaded.Budget)
	}
}

func TestLedgerUseCase_OpenMaterializesRecurring(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().ExpenseCreated().AnyTimes()
	metrics.EXPECT().RecurrencesMaterialized(1).Times(1)

	f := newLedgerFixture(t, metrics)
	ctx := context.Background()

	tmpl, err := f.uc.AddExpense(ctx, usecase.ExpenseInput{
		Title:      "Netflix",
		Amount:     "9.99",
		Category:   "entertainment",
		Date:       ledgerNow,
		Recurrence: "monthly",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A month later the application starts again.
	f.clock.Advance(31 * 24 * time.Hour)
	if err := f.uc.Open(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.uc.Open(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := f.uc.Expenses(ctx)
	if len(got) != 2 {
		t.Fatalf("expected template and one occurrence, got %d", len(got))
	}
	if got[0].ID != tmpl.ID || got[0].Recurring.SpawnedID != got[1].ID {
		t.Errorf("expected template linked to its occurrence, got %+v", got[0].Recurring)
	}
	if want := time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC); !got[1].Date.Equal(want) {
		t.Errorf("expected occurrence on %s, got %s", want, got[1].Date)
	}
}

func TestLedgerUseCase_RunRecurrence(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	if _, err := f.uc.AddExpense(ctx, usecase.ExpenseInput{Title: "Bus", Amount: "2", Date: ledgerNow, Recurrence: "daily"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spawned, err := f.uc.RunRecurrence(ctx)
	if err != nil || len(spawned) != 0 {
		t.Fatalf("nothing should be due yet, got %d, %v", len(spawned), err)
	}

	f.clock.Advance(24 * time.Hour)
	spawned, err = f.uc.RunRecurrence(ctx)
	if err != nil || len(spawned) != 1 {
		t.Fatalf("expected one occurrence, got %d, %v", len(spawned), err)
	}

	spawned, err = f.uc.RunRecurrence(ctx)
	if err != nil || len(spawned) != 0 {
		t.Fatalf("same day must not spawn again, got %d, %v", len(spawned), err)
	}
}

func TestLedgerUseCase_Import(t *testing.T) {
	snapshot := []byte(`{"expenses":[
		{"id":"x1","title":"Imported","amount":10,"category":"food","date":"2024-09-01T10:00:00Z"},
		{"id":"x2","title":"Also imported","amount":"5","category":"bills","date":"2024-09-02"}
	],"meta":{"createdAt":"2024-01-01T00:00:00Z"}}`)

	t.Run("merge appends new ids", func(t *testing.T) {
		f := newLedgerFixture(t, nil)
		ctx := context.Background()
		f.add(t, "Local", "1")

		res, err := f.uc.Import(ctx, snapshot, usecase.ImportMerge)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Imported != 2 || res.Skipped != 0 || res.Total != 3 {
			t.Errorf("unexpected result %+v", res)
		}

		res, err = f.uc.Import(ctx, snapshot, usecase.ImportMerge)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Imported != 0 || res.Skipped != 2 || res.Total != 3 {
			t.Errorf("re-import must skip existing ids, got %+v", res)
		}
		if len(f.confirmer.Prompts) != 0 {
			t.Error("merge must not ask for confirmation")
		}
	})

	t.Run("replace swaps ledger after confirmation", func(t *testing.T) {
		f := newLedgerFixture(t, nil)
		ctx := context.Background()
		f.add(t, "Local", "1")

		res, err := f.uc.Import(ctx, snapshot, usecase.ImportReplace)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Imported != 2 || res.Total != 2 {
			t.Errorf("unexpected result %+v", res)
		}
		snap := f.uc.Snapshot(ctx)
		if snap.Expenses[0].ID != "x1" {
			t.Errorf("expected imported ledger, got %+v", snap.Expenses)
		}
		if !snap.Meta.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Error("replace must take the imported metadata")
		}
	})

	t.Run("replace stores the snapshot as given", func(t *testing.T) {
		f := newLedgerFixture(t, nil)
		ctx := context.Background()
		f.add(t, "Local", "1")

		due := []byte(`{"expenses":[
			{"id":"t1","title":"Bus","amount":2,"category":"transport","date":"2024-09-10T08:00:00Z","recurring":{"frequency":"daily"}}
		],"meta":{"createdAt":"2024-01-01T00:00:00Z"}}`)
		want, err := usecase.ParseSnapshot(due, time.UTC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		res, err := f.uc.Import(ctx, due, usecase.ImportReplace)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Imported != 1 || res.Total != 1 {
			t.Errorf("unexpected result %+v", res)
		}
		if got := f.uc.Snapshot(ctx); !reflect.DeepEqual(got, want) {
			t.Errorf("expected imported ledger unchanged, got %+v", got.Expenses)
		}

		stored, err := usecase.ParseSnapshot(f.blobs.Raw(usecase.LedgerKey), time.UTC)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored.Expenses) != 1 || stored.Expenses[0].Recurring.SpawnedID != "" {
			t.Errorf("expected stored template without occurrences, got %+v", stored.Expenses)
		}
	})

	t.Run("merge reads date-only values in the ledger location", func(t *testing.T) {
		berlin := time.FixedZone("CEST", 2*60*60)
		f := newLedgerFixtureIn(t, nil, berlin)
		ctx := context.Background()

		if _, err := f.uc.Import(ctx, snapshot, usecase.ImportMerge); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := f.uc.Get(ctx, "x2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := time.Date(2024, 9, 1, 22, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
			t.Errorf("expected %s, got %s", want, got.Date.UTC())
		}
	})

	t.Run("declined replace keeps ledger", func(t *testing.T) {
		f := newLedgerFixture(t, nil)
		ctx := context.Background()
		f.add(t, "Local", "1")
		f.confirmer.Answer = false

		if _, err := f.uc.Import(ctx, snapshot, usecase.ImportReplace); !errors.Is(err, domain.ErrConfirmationDeclined) {
			t.Fatalf("expected ErrConfirmationDeclined, got %v", err)
		}
		if got := f.uc.Expenses(ctx); len(got) != 1 || got[0].Title != "Local" {
			t.Errorf("expected ledger unchanged, got %+v", got)
		}
	})

	t.Run("malformed snapshot keeps ledger", func(t *testing.T) {
		f := newLedgerFixture(t, nil)
		ctx := context.Background()
		f.add(t, "Local", "1")
		puts := f.blobs.Puts()

		if _, err := f.uc.Import(ctx, []byte(`{"items":[]}`), usecase.ImportReplace); !errors.Is(err, domain.ErrMalformedSnapshot) {
			t.Fatalf("expected ErrMalformedSnapshot, got %v", err)
		}
		if f.blobs.Puts() != puts {
			t.Error("malformed import must not write")
		}
		if len(f.confirmer.Prompts) != 0 {
			t.Error("malformed import must fail before asking for confirmation")
		}
	})
}

func TestLedgerUseCase_Import_Metrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metrics := mocks.NewMockMetrics(ctrl)
	metrics.EXPECT().ImportCompleted("merge", 1)

	f := newLedgerFixture(t, metrics)
	if _, err := f.uc.Import(context.Background(), []byte(`{"expenses":[{"id":"a","title":"t","amount":1,"date":"2024-09-01"}]}`), usecase.ImportMerge); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLedgerUseCase_BudgetStatus(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()

	if status := f.uc.BudgetStatus(ctx); status.HasBudget || status.Tier != domain.TierNone {
		t.Errorf("expected no budget, got %+v", status)
	}

	f.add(t, "Rent", "850")
	if _, err := f.prefs.SetBudget(ctx, "1000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := f.uc.BudgetStatus(ctx)
	if status.Tier != domain.TierWarning || !status.Percent.Equal(decimal.NewFromInt(85)) || status.RemainingPercent != 15 {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestLedgerUseCase_Exports(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	f.add(t, "Tea", "2")

	csvData, csvName := f.uc.ExportCSV(ctx)
	if csvName != "expenses-2024-09-15.csv" || len(csvData) == 0 {
		t.Errorf("unexpected csv export %q (%d bytes)", csvName, len(csvData))
	}

	jsonData, jsonName, err := f.uc.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jsonName != "expenses-backup-2024-09-15.json" {
		t.Errorf("unexpected json name %q", jsonName)
	}
	parsed, err := usecase.ParseSnapshot(jsonData, time.UTC)
	if err != nil || len(parsed.Expenses) != 1 {
		t.Errorf("export must be importable, got %v", err)
	}
}

func TestLedgerUseCase_ReadsReturnCopies(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	e := f.add(t, "Tea", "2")

	got := f.uc.Expenses(ctx)
	got[0].Title = "mutated"

	fresh, err := f.uc.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh.Title != "Tea" {
		t.Error("callers must not be able to modify the ledger")
	}
}
