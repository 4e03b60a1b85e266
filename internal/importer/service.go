package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrUnknownFormat = errors.New("unknown import format")
	ErrInvalidFile   = errors.New("invalid import file")
)

type Service struct {
	parsers map[Format]Parser
}

func NewService() *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatCGD:   draftsOnly{cgd.NewParser()},
			FormatTally: NewTallyParser(),
		},
	}
}

func (s *Service) Import(format Format, r io.Reader) ([]Row, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	rows, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s file: %w", format, err)
	}

	return rows, nil
}

// draftsOnly adapts bank statement parsers, which carry no party names.
type draftsOnly struct {
	p interface {
		Parse(r io.Reader) ([]transaction.Draft, error)
	}
}

func (d draftsOnly) Parse(r io.Reader) ([]Row, error) {
	drafts, err := d.p.Parse(r)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(drafts))
	for i, draft := range drafts {
		rows[i] = Row{Draft: draft}
	}

	return rows, nil
}
