package statement

// TemplateData represents the data context a template is evaluated against.
// Nested objects are maps; the transactions collection is a slice of maps.
//
// Example:
//
//	data := TemplateData{
//	    "summary": map[string]interface{}{"currency": "IQD"},
//	    "transactions": []interface{}{
//	        map[string]interface{}{"no": "1", "type": "DT-ISSUE"},
//	    },
//	}
type TemplateData map[string]interface{}

// StatementData is the root context of an account statement.
type StatementData struct {
	Summary      Summary           `json:"summary"`
	User         User              `json:"user"`
	Company      Company           `json:"company"`
	Transactions []TransactionLine `json:"transactions"`
}

// Summary holds the pre-formatted statement totals. From and To are raw text.
type Summary struct {
	From            string `json:"from"`
	To              string `json:"to"`
	PreviousBalance string `json:"previousBalance"`
	TotalCredit     string `json:"totalCredit"`
	TotalDebit      string `json:"totalDebit"`
	BalanceDue      string `json:"balanceDue"`
	Currency        string `json:"currency"`
}

// User is the account holder.
type User struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// Company is the issuing company.
type Company struct {
	LogoURL  string `json:"logoUrl"`
	TextLogo bool   `json:"textLogo"`
	Name     string `json:"name"`
	Address  string `json:"address"`
}

// TransactionLine is one display-ready row of the statement. The engine never
// computes with these values; "-" is the conventional placeholder for "none".
type TransactionLine struct {
	No         string `json:"no"`
	Date       string `json:"date"`
	PNR        string `json:"pnr"`
	BookingID  string `json:"booking_id"`
	Details    string `json:"details"`
	Type       string `json:"type"`
	DebitIQD   string `json:"debit_iqd"`
	DebitUSD   string `json:"debit_usd"`
	CreditIQD  string `json:"credit_iqd"`
	CreditUSD  string `json:"credit_usd"`
	BalanceIQD string `json:"balance_iqd"`
	InvoiceNo  string `json:"invoice_no"`
}

// TransactionFields lists the line item fields in column order.
var TransactionFields = []string{
	"no", "date", "pnr", "booking_id", "details", "type",
	"debit_iqd", "debit_usd", "credit_iqd", "credit_usd", "balance_iqd", "invoice_no",
}

// Fields returns the line item as a flat map keyed by template field name.
func (t TransactionLine) Fields() map[string]interface{} {
	return map[string]interface{}{
		"no":          t.No,
		"date":        t.Date,
		"pnr":         t.PNR,
		"booking_id":  t.BookingID,
		"details":     t.Details,
		"type":        t.Type,
		"debit_iqd":   t.DebitIQD,
		"debit_usd":   t.DebitUSD,
		"credit_iqd":  t.CreditIQD,
		"credit_usd":  t.CreditUSD,
		"balance_iqd": t.BalanceIQD,
		"invoice_no":  t.InvoiceNo,
	}
}

func (c Company) fields() map[string]interface{} {
	return map[string]interface{}{
		"logoUrl":  c.LogoURL,
		"textLogo": c.TextLogo,
		"name":     c.Name,
		"address":  c.Address,
	}
}

// TemplateData converts the statement into the engine's evaluation context.
// Transactions keep their order.
func (d StatementData) TemplateData() TemplateData {
	transactions := make([]interface{}, len(d.Transactions))
	for i, t := range d.Transactions {
		transactions[i] = t.Fields()
	}
	return TemplateData{
		"summary": map[string]interface{}{
			"from":            d.Summary.From,
			"to":              d.Summary.To,
			"previousBalance": d.Summary.PreviousBalance,
			"totalCredit":     d.Summary.TotalCredit,
			"totalDebit":      d.Summary.TotalDebit,
			"balanceDue":      d.Summary.BalanceDue,
			"currency":        d.Summary.Currency,
		},
		"user": map[string]interface{}{
			"name":   d.User.Name,
			"email":  d.User.Email,
			"mobile": d.User.Mobile,
		},
		"company":      d.Company.fields(),
		"transactions": transactions,
	}
}

// VoucherData is the root context of a payment or receipt voucher.
type VoucherData struct {
	Voucher  Voucher  `json:"voucher"`
	Company  Company  `json:"company"`
	Employee Employee `json:"employee"`
}

// Voucher holds the display-ready fields of a single voucher.
type Voucher struct {
	Number        string `json:"number"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	AmountInWords string `json:"amountInWords"`
	Description   string `json:"description"`
	ReceivedFrom  string `json:"receivedFrom"`
	PaidTo        string `json:"paidTo"`
	Method        string `json:"method"`
}

// Employee is the staff member who issued a voucher.
type Employee struct {
	Name string `json:"name"`
}

// TemplateData converts the voucher into the engine's evaluation context.
func (d VoucherData) TemplateData() TemplateData {
	return TemplateData{
		"voucher": map[string]interface{}{
			"number":        d.Voucher.Number,
			"date":          d.Voucher.Date,
			"type":          d.Voucher.Type,
			"amount":        d.Voucher.Amount,
			"currency":      d.Voucher.Currency,
			"amountInWords": d.Voucher.AmountInWords,
			"description":   d.Voucher.Description,
			"receivedFrom":  d.Voucher.ReceivedFrom,
			"paidTo":        d.Voucher.PaidTo,
			"method":        d.Voucher.Method,
		},
		"company": d.Company.fields(),
		"employee": map[string]interface{}{
			"name": d.Employee.Name,
		},
	}
}
