package statement

import "unicode/utf8"

// Kind selects the data model a template is written against.
type Kind string

const (
	KindStatement Kind = "statement"
	KindVoucher   Kind = "voucher"
)

// ParseKind converts a name to a Kind. Unknown names yield false.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindStatement, "":
		return KindStatement, true
	case KindVoucher:
		return KindVoucher, true
	default:
		return "", false
	}
}

// CatalogueEntry is one insertable directive offered to template authors.
type CatalogueEntry struct {
	Label   string `json:"label"`
	Path    string `json:"path,omitempty"`
	Snippet string `json:"snippet"`
}

// CatalogueGroup is a named category of entries.
type CatalogueGroup struct {
	Name    string           `json:"name"`
	Entries []CatalogueEntry `json:"entries"`
}

func variable(label, path string) CatalogueEntry {
	return CatalogueEntry{Label: label, Path: path, Snippet: "{{" + path + "}}"}
}

// Catalogue returns the directive vocabulary for statement templates.
func Catalogue() []CatalogueGroup {
	loop := []CatalogueEntry{
		{Label: "Transactions loop", Snippet: "{{#each transactions}}\n\n{{/each}}"},
		{Label: "Row number", Snippet: "{{@index}}"},
	}
	for _, field := range TransactionFields {
		loop = append(loop, variable(field, field))
	}

	return []CatalogueGroup{
		{Name: "Summary", Entries: []CatalogueEntry{
			variable("From", "summary.from"),
			variable("To", "summary.to"),
			variable("Previous balance", "summary.previousBalance"),
			variable("Total credit", "summary.totalCredit"),
			variable("Total debit", "summary.totalDebit"),
			variable("Balance due", "summary.balanceDue"),
			variable("Currency", "summary.currency"),
		}},
		{Name: "User", Entries: []CatalogueEntry{
			variable("Name", "user.name"),
			variable("Email", "user.email"),
			variable("Mobile", "user.mobile"),
		}},
		{Name: "Company", Entries: []CatalogueEntry{
			variable("Logo", "company.logoUrl"),
			variable("Name", "company.name"),
			variable("Address", "company.address"),
		}},
		{Name: "Transactions Loop", Entries: loop},
		{Name: "Conditionals", Entries: []CatalogueEntry{
			{Label: "If", Snippet: "{{#if variable}}\n\n{{/if}}"},
		}},
	}
}

// VoucherCatalogue returns the directive vocabulary for voucher templates.
func VoucherCatalogue() []CatalogueGroup {
	return []CatalogueGroup{
		{Name: "Voucher", Entries: []CatalogueEntry{
			variable("Number", "voucher.number"),
			variable("Date", "voucher.date"),
			variable("Type", "voucher.type"),
			variable("Amount", "voucher.amount"),
			variable("Currency", "voucher.currency"),
			variable("Amount in words", "voucher.amountInWords"),
			variable("Description", "voucher.description"),
			variable("Received from", "voucher.receivedFrom"),
			variable("Paid to", "voucher.paidTo"),
			variable("Method", "voucher.method"),
		}},
		{Name: "Company", Entries: []CatalogueEntry{
			variable("Logo", "company.logoUrl"),
			variable("Name", "company.name"),
			variable("Address", "company.address"),
		}},
		{Name: "Employee", Entries: []CatalogueEntry{
			variable("Name", "employee.name"),
		}},
		{Name: "Conditionals", Entries: []CatalogueEntry{
			{Label: "If", Snippet: "{{#if variable}}\n\n{{/if}}"},
		}},
	}
}

// CatalogueFor returns the vocabulary of a kind.
func CatalogueFor(kind Kind) []CatalogueGroup {
	if kind == KindVoucher {
		return VoucherCatalogue()
	}
	return Catalogue()
}

var (
	statementPaths = rootPaths(Catalogue(), "company.textLogo")
	voucherPaths   = rootPaths(VoucherCatalogue(), "company.textLogo")
	itemFields     = fieldSet(TransactionFields)
)

func rootPaths(groups []CatalogueGroup, extra ...string) map[string]bool {
	paths := make(map[string]bool)
	for _, g := range groups {
		if g.Name == "Transactions Loop" {
			continue
		}
		for _, e := range g.Entries {
			if e.Path != "" {
				paths[e.Path] = true
			}
		}
	}
	for _, p := range extra {
		paths[p] = true
	}
	return paths
}

func fieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// KnownPath reports whether path belongs to the vocabulary of kind. Line item
// fields are only known inside a loop body.
func KnownPath(kind Kind, path string, inLoop bool) bool {
	if kind == KindVoucher {
		return voucherPaths[path]
	}
	if inLoop && itemFields[path] {
		return true
	}
	return statementPaths[path]
}

// Insert places snippet into text at the given byte offset, as an editor does
// at the caret. The offset is clamped and moved back to a rune boundary. It
// returns the new text and the offset just after the inserted snippet.
func Insert(text string, offset int, snippet string) (string, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return text[:offset] + snippet + text[offset:], offset + len(snippet)
}
