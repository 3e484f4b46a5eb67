package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iho/gospend/internal/domain"
)

// ImportMode selects how an imported snapshot is combined with the ledger.
type ImportMode string

const (
	ImportReplace ImportMode = "replace"
	ImportMerge   ImportMode = "merge"
)

// ParseImportMode validates an import mode. Empty selects ImportMerge.
func ParseImportMode(raw string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ImportMerge, nil
	case ImportReplace, ImportMerge:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidImportMode, raw)
	}
}

// ExportKind is the format of an exported file.
type ExportKind string

const (
	ExportCSV  ExportKind = "csv"
	ExportJSON ExportKind = "json"
)

var csvHeader = []string{"id", "title", "amount", "category", "date", "notes", "recurring"}

// ToCSV renders the ledger as CSV in ledger order. Every cell is quoted.
func ToCSV(ledger *domain.Ledger) []byte {
	var buf bytes.Buffer
	writeCSVRow(&buf, csvHeader)

	for _, e := range ledger.Expenses {
		recurring, err := json.Marshal(e.Recurring)
		if err != nil {
			recurring = []byte("null")
		}
		writeCSVRow(&buf, []string{
			e.ID,
			e.Title,
			e.Amount.String(),
			string(e.Category),
			e.Date.UTC().Format(time.RFC3339),
			e.Notes,
			string(recurring),
		})
	}

	return buf.Bytes()
}

// writeCSVRow quotes every cell, unlike encoding/csv.
func writeCSVRow(buf *bytes.Buffer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// ToJSONSnapshot renders the ledger as indented JSON.
func ToJSONSnapshot(ledger *domain.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// ParseSnapshot decodes a JSON snapshot. The root must be an object with an
// expenses array; anything else is domain.ErrMalformedSnapshot. Dates
// without a zone are taken in loc.
func ParseSnapshot(raw []byte, loc *time.Location) (*domain.Ledger, error) {
	if loc == nil {
		loc = time.Local
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil || root == nil {
		return nil, fmt.Errorf("%w: root is not an object", domain.ErrMalformedSnapshot)
	}

	expenses, ok := root["expenses"]
	if !ok {
		return nil, fmt.Errorf("%w: missing expenses", domain.ErrMalformedSnapshot)
	}
	if trimmed := bytes.TrimSpace(expenses); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expenses is not an array", domain.ErrMalformedSnapshot)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(expenses, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}

	ledger := domain.Ledger{Expenses: make([]domain.Expense, 0, len(records))}
	for i, record := range records {
		e, err := domain.DecodeExpense(record, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", domain.ErrMalformedSnapshot, i, err)
		}
		ledger.Expenses = append(ledger.Expenses, e)
	}

	if meta, ok := root["meta"]; ok {
		if err := json.Unmarshal(meta, &ledger.Meta); err != nil {
			return nil, fmt.Errorf("%w: meta: %v", domain.ErrMalformedSnapshot, err)
		}
	}

	return &ledger, nil
}

// MergeSnapshot appends the incoming records whose id is not present yet.
// Colliding ids keep the current record. Returns the merged ledger and the
// number of records added; neither argument is modified.
func MergeSnapshot(current, incoming *domain.Ledger) (*domain.Ledger, int) {
	merged := current.Clone()
	seen := current.IDs()
	added := 0

	for _, e := range incoming.Expenses {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		merged.Expenses = append(merged.Expenses, e.Clone())
		added++
	}

	return merged, added
}

// ExportFilename returns the download name for an export made at now.
func ExportFilename(kind ExportKind, now time.Time) string {
	day := now.Format(dayLayout)
	if kind == ExportJSON {
		return "expenses-backup-" + day + ".json"
	}
	return "expenses-" + day + ".csv"
}
