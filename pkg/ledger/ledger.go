// Package ledger turns raw account entries into the display-ready statement
// data the template engine renders.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alsaadxx12/roda10-sub000/pkg/statement"
)

// Supported entry currencies. Only IQD entries move the running balance.
const (
	CurrencyIQD = "IQD"
	CurrencyUSD = "USD"
)

// Placeholder is rendered for zero amounts and missing text.
const Placeholder = "-"

const dateLayout = "2006-01-02"

// ErrInvalidEntry is returned when an entry cannot be placed on a statement.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// Entry is a single posting on a customer account.
type Entry struct {
	Date      time.Time       `json:"date"`
	PNR       string          `json:"pnr"`
	BookingID string          `json:"booking_id"`
	Details   string          `json:"details"`
	Type      string          `json:"type"`
	InvoiceNo string          `json:"invoice_no"`
	Currency  string          `json:"currency"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// Input is everything needed to build a statement for one account.
type Input struct {
	From            time.Time         `json:"from"`
	To              time.Time         `json:"to"`
	PreviousBalance decimal.Decimal   `json:"previous_balance"`
	User            statement.User    `json:"user"`
	Company         statement.Company `json:"company"`
	Entries         []Entry           `json:"entries"`
}

// Totals are the aggregate IQD figures of a statement.
type Totals struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Build converts entries to statement lines in the order given. The IQD
// running balance starts at PreviousBalance and grows by debit minus credit.
func Build(in Input) (statement.StatementData, Totals, error) {
	totals := Totals{Balance: in.PreviousBalance}
	lines := make([]statement.TransactionLine, 0, len(in.Entries))

	for i, e := range in.Entries {
		currency := strings.ToUpper(strings.TrimSpace(e.Currency))
		if currency == "" {
			currency = CurrencyIQD
		}
		if currency != CurrencyIQD && currency != CurrencyUSD {
			return statement.StatementData{}, Totals{}, fmt.Errorf("%w: entry %d has unsupported currency %q", ErrInvalidEntry, i+1, e.Currency)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return statement.StatementData{}, Totals{}, fmt.Errorf("%w: entry %d has a negative amount", ErrInvalidEntry, i+1)
		}

		line := statement.TransactionLine{
			No:         strconv.Itoa(i + 1),
			Date:       formatDate(e.Date),
			PNR:        text(e.PNR),
			BookingID:  text(e.BookingID),
			Details:    text(e.Details),
			Type:       text(e.Type),
			InvoiceNo:  text(e.InvoiceNo),
			DebitIQD:   Placeholder,
			DebitUSD:   Placeholder,
			CreditIQD:  Placeholder,
			CreditUSD:  Placeholder,
			BalanceIQD: FormatAmount(totals.Balance),
		}

		if currency == CurrencyIQD {
			totals.Debit = totals.Debit.Add(e.Debit)
			totals.Credit = totals.Credit.Add(e.Credit)
			totals.Balance = totals.Balance.Add(e.Debit).Sub(e.Credit)
			line.DebitIQD = amount(e.Debit)
			line.CreditIQD = amount(e.Credit)
			line.BalanceIQD = FormatAmount(totals.Balance)
		} else {
			line.DebitUSD = amount(e.Debit)
			line.CreditUSD = amount(e.Credit)
		}

		lines = append(lines, line)
	}

	data := statement.StatementData{
		Summary: statement.Summary{
			From:            formatDate(in.From),
			To:              formatDate(in.To),
			PreviousBalance: FormatAmount(in.PreviousBalance),
			TotalDebit:      FormatAmount(totals.Debit),
			TotalCredit:     FormatAmount(totals.Credit),
			BalanceDue:      FormatAmount(totals.Balance),
			Currency:        CurrencyIQD,
		},
		User:         in.User,
		Company:      in.Company,
		Transactions: lines,
	}
	return data, totals, nil
}

// FormatAmount renders an amount rounded to two places, without trailing
// zeros, with the integer part grouped by thousands.
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return Placeholder
	}
	return FormatAmount(d)
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(dateLayout)
}
