package query

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Filter reads a report.Filter from query parameters. account, kind and tag
// may repeat; start and end are dates (YYYY-MM-DD); min and max are amounts.
func Filter(q url.Values) (report.Filter, error) {
	var f report.Filter

	for _, s := range q["account"] {
		id, err := uuid.Parse(s)
		if err != nil {
			return report.Filter{}, fmt.Errorf("invalid account %q", s)
		}

		f.AccountIDs = append(f.AccountIDs, id)
	}

	for _, s := range q["kind"] {
		k, err := transaction.ParseKind(s)
		if err != nil {
			return report.Filter{}, err
		}

		f.Kinds = append(f.Kinds, k)
	}

	f.Tags = q["tag"]

	var err error

	if f.Start, err = date(q, "start"); err != nil {
		return report.Filter{}, err
	}

	if f.End, err = date(q, "end"); err != nil {
		return report.Filter{}, err
	}

	if f.MinAmount, err = amount(q, "min"); err != nil {
		return report.Filter{}, err
	}

	if f.MaxAmount, err = amount(q, "max"); err != nil {
		return report.Filter{}, err
	}

	return f, nil
}

func date(q url.Values, key string) (time.Time, error) {
	s := q.Get(key)
	if s == "" {
		return time.Time{}, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q", key, s)
	}

	return t, nil
}

func amount(q url.Values, key string) (*decimal.Decimal, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s amount %q", key, s)
	}

	return &d, nil
}
