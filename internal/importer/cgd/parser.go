package cgd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching CGD format found: expected columns for conta, extrato, or cartão")

const dateLayout = "02-01-2006"

// Parser reads Caixa Geral de Depósitos CSV exports. Debits become expense
// drafts and credits become income drafts; accounts are left unbound.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.Draft, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, header := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	return parseRows(*profile, cols, rows[header+1:], header+1)
}

type colIndex map[string]int

// detectProfile returns the first profile whose columns all appear in a row,
// with that row's column index and position.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex, len(row))

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if cols.hasAll(profiles[i].columns()) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func (c colIndex) hasAll(names []string) bool {
	for _, name := range names {
		if _, ok := c[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p Profile, cols colIndex, rows [][]string, firstRow int) ([]transaction.Draft, error) {
	var drafts []transaction.Draft

	for i, row := range rows {
		date, err := time.ParseInLocation(dateLayout, cell(row, cols[p.Date]), time.Local)
		if err != nil {
			// Footers and page markers carry no date.
			continue
		}

		desc := cell(row, cols[p.Desc])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", firstRow+i+1)
		}

		amount, kind, ok := movement(p, cols, row)
		if !ok {
			continue
		}

		drafts = append(drafts, transaction.Draft{
			Kind:   kind,
			Amount: amount,
			Date:   date,
			Note:   desc,
		})
	}

	return drafts, nil
}

// movement returns the unsigned amount and direction of a row.
func movement(p Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Kind, bool) {
	if p.Layout == signedColumn {
		v, ok := amountAt(row, cols[p.Amount])
		if !ok {
			return decimal.Decimal{}, "", false
		}

		if v.IsNegative() {
			return v.Neg(), transaction.KindExpense, true
		}

		return v, transaction.KindIncome, true
	}

	if v, ok := amountAt(row, cols[p.Debit]); ok {
		return v.Abs(), transaction.KindExpense, true
	}

	if v, ok := amountAt(row, cols[p.Credit]); ok {
		return v.Abs(), transaction.KindIncome, true
	}

	return decimal.Decimal{}, "", false
}

// amountAt parses a non-zero amount from the cell.
func amountAt(row []string, idx int) (decimal.Decimal, bool) {
	s := cell(row, idx)
	if s == "" {
		return decimal.Decimal{}, false
	}

	v, err := parseEuropeanAmount(s)
	if err != nil || v.IsZero() {
		return decimal.Decimal{}, false
	}

	return v, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
