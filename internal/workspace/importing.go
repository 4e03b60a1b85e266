package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Import parses r and appends every row as one batch: either all rows are
// recorded or none. Rows the source had reverted are recorded together with
// a fresh reversal. Rows whose file names no account of the user are bound
// to accountID: expenses and transfers out leave it, income lands in it.
// accountID may be uuid.Nil when every row names its accounts. Empty
// categories are filled from the user's rules.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, format importer.Format, accountID uuid.UUID, r io.Reader) ([]transaction.Transaction, error) {
	rows, err := s.importer.Import(format, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", importer.ErrInvalidFile, err)
	}

	var added []transaction.Transaction

	err = s.mutate(ctx, userID, func(u *user.User, b *ledger.Book) error {
		var fallback *uuid.UUID

		if accountID != uuid.Nil {
			if _, err := b.Account(accountID); err != nil {
				return err
			}

			fallback = &accountID
		}

		for i, row := range rows {
			d := bind(b, row, fallback)
			if d.Category == "" {
				d.Category = matching.Suggest(u.Rules, d.Note)
			}

			t, err := b.Append(d)
			if err != nil {
				return rowErr(i, len(rows), err)
			}

			added = append(added, t)

			if !row.Reverted {
				continue
			}

			rev, err := b.RevertAsNew(t.ID)
			if err != nil {
				return rowErr(i, len(rows), err)
			}

			added[len(added)-1].RevertedBy = &rev.ID
			added = append(added, rev)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "transactions imported", "user_id", userID, "format", format, "count", len(added))

	for _, t := range added {
		s.appended(ctx, userID, t)
	}

	return added, nil
}

func rowErr(i, n int, err error) error {
	if n == 1 {
		return err
	}

	return fmt.Errorf("transaction %d of %d: %w", i+1, n, err)
}

func bind(b *ledger.Book, row importer.Row, fallback *uuid.UUID) transaction.Draft {
	d := row.Draft
	d.From = party(b, row.FromName)

	if to := party(b, row.ToName); to.IsAccount() {
		d.CounterpartyAccountID = to.AccountID
	} else {
		d.ToLabel = to.Label
	}

	if fallback == nil {
		return d
	}

	switch d.Kind {
	case transaction.KindExpense, transaction.KindTransferOut:
		if !d.From.IsAccount() {
			d.From = transaction.AccountParty(*fallback)
		}
	case transaction.KindIncome:
		if d.CounterpartyAccountID == nil {
			d.CounterpartyAccountID = fallback
			d.ToLabel = ""
		}
	}

	return d
}

func party(b *ledger.Book, name string) transaction.Party {
	if name == "" {
		return transaction.ExternalParty("")
	}

	if a, err := b.AccountByName(name); err == nil {
		return transaction.AccountParty(a.ID)
	}

	return transaction.ExternalParty(name)
}
