package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func TestService_ImportTally(t *testing.T) {
	csv := `Date,Type,From,To,Amount,Tag,Note
2024-03-01,Income,Salary,Sarath HDFC savings,95000,Salary,March pay
2024-03-02,Expense,HDFC Master Credit,Others,9500.50,Rent,
2024-03-03,Reversal,Others,HDFC Master Credit,9500.50,Rent,Reversal of expense
2024-03-04,self_transfer,Sarath HDFC savings,Sarath Wallet,500,,
`

	rows, err := importer.NewService().Import(importer.FormatTally, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, transaction.KindIncome, rows[0].Draft.Kind)
	assert.Equal(t, "Salary", rows[0].FromName)
	assert.Equal(t, "Sarath HDFC savings", rows[0].ToName)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), rows[0].Draft.Date)
	assert.Equal(t, "March pay", rows[0].Draft.Note)

	assert.Equal(t, "9500.5", rows[1].Draft.Amount.String())
	assert.Equal(t, "Rent", rows[1].Draft.Category)

	assert.Equal(t, transaction.KindSelfTransfer, rows[2].Draft.Kind)
}

func TestService_ImportTallyStatus(t *testing.T) {
	csv := `Date,Type,From,To,Amount,Tag,Note,Status
2024-03-02,Expense,Wallet,Others,300.00,Rent,,Reverted
2024-03-03,Reversal,Others,Wallet,300.00,Rent,Reversal of expense on 2024-03-02,
2024-03-04,Expense,Wallet,Others,40.00,Food,,
`

	rows, err := importer.NewService().Import(importer.FormatTally, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Reverted)
	assert.False(t, rows[1].Reverted)
}

func TestService_ImportTallyErrors(t *testing.T) {
	type testCase struct {
		name    string
		csv     string
		wantErr string
	}

	tests := []testCase{
		{name: "Empty", csv: "", wantErr: "empty file"},
		{name: "WrongHeader", csv: "Date,Kind,From,To,Amount,Tag,Note\n", wantErr: "unexpected header"},
		{name: "BadDate", csv: "Date,Type,From,To,Amount,Tag,Note\n03/01/2024,Income,a,b,1,,\n", wantErr: "line 2: invalid date"},
		{name: "BadKind", csv: "Date,Type,From,To,Amount,Tag,Note\n2024-03-01,Gift,a,b,1,,\n", wantErr: "line 2"},
		{name: "BadAmount", csv: "Date,Type,From,To,Amount,Tag,Note\n2024-03-01,Income,a,b,lots,,\n", wantErr: "invalid amount"},
		{name: "BadStatus", csv: "Date,Type,From,To,Amount,Tag,Note,Status\n2024-03-01,Income,a,b,1,,,Pending\n", wantErr: "invalid status"},
		{name: "ShortRow", csv: "Date,Type,From,To,Amount,Tag,Note,Status\n2024-03-01,Income,a,b,1,,\n", wantErr: "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.NewService().Import(importer.FormatTally, strings.NewReader(tt.csv))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestService_ImportCGD(t *testing.T) {
	csv := "Data mov.;Descrição;Montante\n30-01-2026;CONTINENTE;-42,10\n"

	rows, err := importer.NewService().Import(importer.FormatCGD, strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, transaction.KindExpense, rows[0].Draft.Kind)
	assert.Equal(t, "CONTINENTE", rows[0].Draft.Note)
	assert.Empty(t, rows[0].FromName)
}

func TestService_UnknownFormat(t *testing.T) {
	_, err := importer.NewService().Import("ofx", strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrUnknownFormat)
}
