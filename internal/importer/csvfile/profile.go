package csvfile

import "strings"

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountTyped means an unsigned amount column plus a debit/credit type column.
	amountTyped amountMode = iota
	// amountSigned means one signed column, e.g. "-10,00".
	amountSigned
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// column is a logical field recognised under several header spellings.
type column string

const (
	colTitle  column = "title"
	colAmount column = "amount"
	colType   column = "type"
	colDebit  column = "debit"
	colCredit column = "credit"
)

var aliases = map[column][]string{
	colTitle:  {"title", "description", "descrição", "descricao", "descrição do movimento"},
	colAmount: {"amount", "valor", "montante", "movimento"},
	colType:   {"type", "tipo"},
	colDebit:  {"debit", "débito", "debito"},
	colCredit: {"credit", "crédito", "credito"},
}

// Profile describes one supported column layout.
type Profile struct {
	Name       string
	AmountMode amountMode
}

func (p Profile) requiredCols() []column {
	switch p.AmountMode {
	case amountTyped:
		return []column{colTitle, colAmount, colType}
	case amountSplit:
		return []column{colTitle, colDebit, colCredit}
	default:
		return []column{colTitle, colAmount}
	}
}

// profiles is tried in order, so layouts needing more columns come first.
var profiles = []Profile{
	{Name: "ledger", AmountMode: amountTyped},
	{Name: "split", AmountMode: amountSplit},
	{Name: "signed", AmountMode: amountSigned},
}

// colIndex maps logical columns to their position in a row.
type colIndex map[column]int

// indexHeader resolves the logical columns present in a candidate header row.
// The first matching cell wins when a header repeats an alias.
func indexHeader(row []string) colIndex {
	lookup := make(map[string]column)

	for col, names := range aliases {
		for _, name := range names {
			lookup[name] = col
		}
	}

	cols := make(colIndex)

	for i, cell := range row {
		col, ok := lookup[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}

		if _, seen := cols[col]; !seen {
			cols[col] = i
		}
	}

	return cols
}

func (c colIndex) has(p Profile) bool {
	for _, col := range p.requiredCols() {
		if _, ok := c[col]; !ok {
			return false
		}
	}

	return true
}

// matchProfile returns the first profile whose columns are all present.
func matchProfile(cols colIndex) (Profile, bool) {
	for _, p := range profiles {
		if cols.has(p) {
			return p, true
		}
	}

	return Profile{}, false
}
