package cgd

// layout describes where a CGD export keeps its movement amounts.
type layout int

const (
	// signedColumn holds one column whose sign gives the direction ("-10,00").
	signedColumn layout = iota
	// debitCredit holds unsigned amounts split across debit and credit columns.
	debitCredit
)

// Profile is the header layout of one CGD CSV export. New exports are
// supported by appending a profile.
type Profile struct {
	Name   string
	Date   string
	Desc   string
	Layout layout
	Amount string
	Debit  string
	Credit string
}

func (p Profile) columns() []string {
	if p.Layout == debitCredit {
		return []string{p.Date, p.Desc, p.Debit, p.Credit}
	}

	return []string{p.Date, p.Desc, p.Amount}
}

// profiles are tried in order, most specific first.
var profiles = []Profile{
	{Name: "cartão", Date: "Data", Desc: "Descrição", Layout: debitCredit, Debit: "Débito", Credit: "Crédito"},
	{Name: "extrato", Date: "Data mov.", Desc: "Descrição", Layout: signedColumn, Amount: "Movimento"},
	{Name: "conta", Date: "Data mov.", Desc: "Descrição", Layout: signedColumn, Amount: "Montante"},
}
