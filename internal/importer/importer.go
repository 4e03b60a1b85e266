package importer

import (
	"io"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Format names a supported CSV layout.
type Format string

const (
	FormatCGD   Format = "cgd"
	FormatTally Format = "tally"
)

// Row is an imported transaction template. FromName and ToName carry the
// party names found in the file, if any; binding them to accounts is left to
// the caller. Reverted is set when the source ledger had reverted the row.
type Row struct {
	Draft    transaction.Draft
	FromName string
	ToName   string
	Reverted bool
}

type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}
