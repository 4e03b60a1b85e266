package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/tally/internal/currency"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Columns is the header of every export and of the tally import format.
var Columns = []string{"Date", "Type", "From", "To", "Amount", "Tag", "Note", "Status"}

const DateLayout = time.DateOnly

// StatusReverted marks an original that was reverted.
const StatusReverted = "Reverted"

const sheetName = "Transactions"

// Table renders one row per transaction, in the given order. Account legs
// are shown by name; accounts missing from names fall back to their id.
func Table(txs []transaction.Transaction, names map[uuid.UUID]string) [][]string {
	rows := make([][]string, 0, len(txs))

	for _, t := range txs {
		rows = append(rows, []string{
			t.Date.Format(DateLayout),
			t.Kind.String(),
			partyName(t.From, names),
			partyName(t.To(), names),
			t.Amount.StringFixed(2),
			t.Category,
			t.Note,
			status(t),
		})
	}

	return rows
}

func status(t transaction.Transaction) string {
	if t.Reverted() {
		return StatusReverted
	}

	return ""
}

func partyName(p transaction.Party, names map[uuid.UUID]string) string {
	if !p.IsAccount() {
		return p.Label
	}

	if name, ok := names[*p.AccountID]; ok {
		return name
	}

	return p.AccountID.String()
}

// WriteCSV writes the header followed by rows.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	return nil
}

// WriteXLSX writes the header followed by rows to a single-sheet workbook.
// Amounts are stored as numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	amountCol := slices.Index(Columns, "Amount")

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v

			if j == amountCol {
				if d, err := decimal.NewFromString(v); err == nil {
					cells[j] = d.InexactFloat64()
				}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

// Summary renders a plain-text digest of txs, one line per transaction,
// with amounts formatted in the given currency.
func Summary(txs []transaction.Transaction, names map[uuid.UUID]string, code string) string {
	var sb strings.Builder

	for _, t := range txs {
		amount := t.Amount
		if t.Kind != transaction.KindIncome {
			amount = amount.Neg()
		}

		desc := t.Note
		if desc == "" {
			desc = t.Category
		}

		fmt.Fprintf(&sb, "* %s | %s | %s -> %s | %s | %s\n",
			t.Date.Format(DateLayout),
			t.Kind,
			partyName(t.From, names),
			partyName(t.To(), names),
			currency.Signed(amount, code),
			desc,
		)
	}

	return sb.String()
}
