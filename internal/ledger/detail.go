package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/aresmartinezoscar-dev/App-Hotel-Angelina/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultDetailLimit = 10
	NoRecords          = "no records"
)

// DetailLine is one rendered record. AmountCOP is signed: income is
// positive, expenses are negative.
type DetailLine struct {
	ID        string `json:"id"`
	At        int64  `json:"at"`
	Title     string `json:"title"`
	Info      string `json:"info,omitempty"`
	AmountCOP int64  `json:"amountCOP"`
}

// DetailSection holds the most recent lines of one collection, newest
// first. An empty collection carries Placeholder instead of lines.
type DetailSection struct {
	Collection  string       `json:"collection"`
	Lines       []DetailLine `json:"lines"`
	Placeholder string       `json:"placeholder,omitempty"`
}

type Detail struct {
	Sales    DetailSection `json:"sales"`
	Stays    DetailSection `json:"stays"`
	Expenses DetailSection `json:"expenses"`
}

// ProjectDetail renders the last limit records of each collection by
// arrival order, most recent first. limit <= 0 means DefaultDetailLimit.
func ProjectDetail(sales []domain.Sale, stays []domain.Stay, expenses []domain.Expense, limit int) Detail {
	if limit <= 0 {
		limit = DefaultDetailLimit
	}
	return Detail{
		Sales: section(domain.CollectionSales, len(sales), limit, func(i int) DetailLine {
			s := sales[i]
			return DetailLine{
				ID:        s.ID,
				At:        s.At,
				Title:     s.ProductName,
				Info:      fmt.Sprintf("%d x %d", s.Quantity, s.UnitPriceCOP),
				AmountCOP: s.TotalCOP,
			}
		}),
		Stays: section(domain.CollectionStays, len(stays), limit, func(i int) DetailLine {
			s := stays[i]
			return DetailLine{
				ID:        s.ID,
				At:        s.At,
				Title:     s.GuestName,
				Info:      fmt.Sprintf("%d room(s), %d night(s)", s.Rooms, s.Nights),
				AmountCOP: s.PriceCOP,
			}
		}),
		Expenses: section(domain.CollectionExpenses, len(expenses), limit, func(i int) DetailLine {
			e := expenses[i]
			return DetailLine{
				ID:        e.ID,
				At:        e.At,
				Title:     e.Concept,
				Info:      e.Notes,
				AmountCOP: -e.AmountCOP,
			}
		}),
	}
}

func section(collection string, n, limit int, line func(i int) DetailLine) DetailSection {
	sec := DetailSection{Collection: collection, Lines: []DetailLine{}}
	if n == 0 {
		sec.Placeholder = NoRecords
		return sec
	}
	start := n - limit
	if start < 0 {
		start = 0
	}
	for i := n - 1; i >= start; i-- {
		sec.Lines = append(sec.Lines, line(i))
	}
	return sec
}

var esCO = message.NewPrinter(language.MustParse("es-CO"))

// FormatCOP renders amount as Colombian pesos without decimals.
func FormatCOP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return esCO.Sprintf("%s$ %v", sign, number.Decimal(amount, number.MaxFractionDigits(0)))
}

// RenderDetailText formats d as plain text, one line per record.
func RenderDetailText(d Detail, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	var sb strings.Builder
	for i, sec := range []DetailSection{d.Sales, d.Stays, d.Expenses} {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.ToUpper(sec.Collection))
		sb.WriteString("\n")
		if len(sec.Lines) == 0 {
			sb.WriteString("  ")
			sb.WriteString(sec.Placeholder)
			sb.WriteString("\n")
			continue
		}
		for _, l := range sec.Lines {
			at := "-"
			if l.At > 0 {
				at = domain.FromMillis(l.At).In(loc).Format("2006-01-02 15:04")
			}
			fmt.Fprintf(&sb, "  %s  %-24s %-22s %14s\n", at, l.Title, l.Info, FormatCOP(l.AmountCOP))
		}
	}
	return sb.String()
}

// RenderBalanceText formats b as plain text.
func RenderBalanceText(b Balance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-16s %14s\n", "sales", FormatCOP(b.TotalSales))
	fmt.Fprintf(&sb, "%-16s %14s\n", "stays", FormatCOP(b.TotalStays))
	fmt.Fprintf(&sb, "%-16s %14s\n", "income", FormatCOP(b.TotalIncome))
	fmt.Fprintf(&sb, "%-16s %14s\n", "expenses", FormatCOP(-b.TotalExpenses))
	fmt.Fprintf(&sb, "%-16s %14s\n", "net", FormatCOP(b.NetBalance))
	return sb.String()
}
