package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// TallyParser reads the application's own CSV export. Reversal rows are
// skipped: originals marked reverted come back as Row.Reverted and their
// reversal is re-created on import. Exports without the Status column are
// accepted.
type TallyParser struct{}

func NewTallyParser() *TallyParser {
	return &TallyParser{}
}

func (p *TallyParser) Parse(r io.Reader) ([]Row, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	legacy := export.Columns[:len(export.Columns)-1]
	if !slices.Equal(header, export.Columns) && !slices.Equal(header, legacy) {
		return nil, fmt.Errorf("unexpected header %q", header)
	}

	var rows []Row

	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, skip, err := parseTallyRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if !skip {
			rows = append(rows, row)
		}
	}
}

func parseTallyRecord(rec []string) (Row, bool, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}

	date, err := time.ParseInLocation(export.DateLayout, rec[0], time.Local)
	if err != nil {
		return Row{}, false, fmt.Errorf("invalid date %q", rec[0])
	}

	kind, err := transaction.ParseKind(rec[1])
	if err != nil {
		return Row{}, false, err
	}

	if kind == transaction.KindReversal {
		return Row{}, true, nil
	}

	amount, err := decimal.NewFromString(rec[4])
	if err != nil {
		return Row{}, false, fmt.Errorf("invalid amount %q", rec[4])
	}

	var reverted bool
	if len(rec) > 7 {
		switch {
		case rec[7] == "":
		case strings.EqualFold(rec[7], export.StatusReverted):
			reverted = true
		default:
			return Row{}, false, fmt.Errorf("invalid status %q", rec[7])
		}
	}

	return Row{
		Draft: transaction.Draft{
			Kind:     kind,
			Amount:   amount,
			Date:     date,
			Category: rec[5],
			Note:     rec[6],
		},
		FromName: rec[2],
		ToName:   rec[3],
		Reverted: reverted,
	}, false, nil
}
