package cgd

type amountColumns int

const (
	// signedAmount is one column where money out is negative, e.g. "Montante" = "-10,00".
	signedAmount amountColumns = iota
	// debitCredit is a pair of unsigned columns, e.g. "Débito" and "Crédito".
	debitCredit
)

// layout names the header cells of one CGD export. A layout matches a header
// row when every column it needs is present, in any order.
type layout struct {
	name    string
	date    string
	desc    string
	columns amountColumns
	amount  string
	debit   string
	credit  string
}

func (l layout) required() []string {
	if l.columns == debitCredit {
		return []string{l.date, l.desc, l.debit, l.credit}
	}

	return []string{l.date, l.desc, l.amount}
}

// layouts are tried in order, so the more specific ones come first.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", columns: debitCredit, debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", columns: signedAmount, amount: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", columns: signedAmount, amount: "Montante"},
}
