package workspace

import (
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

func (s *Service) Summary(userID uuid.UUID, f report.Filter) (report.Summary, error) {
	txs, err := s.Transactions(userID, f)
	if err != nil {
		return report.Summary{}, err
	}

	return report.Aggregate(txs), nil
}

func (s *Service) Daily(userID uuid.UUID, f report.Filter) ([]report.DailyTotals, error) {
	txs, err := s.Transactions(userID, f)
	if err != nil {
		return nil, err
	}

	return report.GroupByDate(txs), nil
}

func (s *Service) Dashboard(userID uuid.UUID) (report.Dashboard, error) {
	var d report.Dashboard

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		d = report.BuildDashboard(b.Accounts(), b.List())
		return nil
	})

	return d, err
}

// Export returns the export table of the transactions matching f, newest
// first, with account legs resolved to names.
func (s *Service) Export(userID uuid.UUID, f report.Filter) ([][]string, error) {
	var (
		txs   []transaction.Transaction
		names map[uuid.UUID]string
	)

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		txs = report.SortByDateDesc(f.Apply(b.List()))
		names = accountNames(b.Accounts())

		return nil
	})
	if err != nil {
		return nil, err
	}

	return export.Table(txs, names), nil
}

// ExportSummary renders the plain-text digest of the matching transactions.
func (s *Service) ExportSummary(userID uuid.UUID, f report.Filter, currency string) (string, error) {
	var out string

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		txs := report.SortByDateDesc(f.Apply(b.List()))
		out = export.Summary(txs, accountNames(b.Accounts()), currency)

		return nil
	})

	return out, err
}

func accountNames(accounts []account.Account) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	return names
}
