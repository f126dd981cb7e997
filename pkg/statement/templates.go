package statement

// DefaultStatementTemplate is the built-in account statement fragment. It is
// used whenever no operator-authored template is stored.
const DefaultStatementTemplate = `<div class="statement">
  <header class="statement-header">
    <div class="brand">
      {{#if company.logoUrl}}<img class="logo" src="{{company.logoUrl}}" alt="{{company.name}}" style="max-height:64px" />{{/if}}
      {{#if company.textLogo}}<div class="text-logo">{{company.name}}</div>{{/if}}
      <div class="company-name">{{company.name}}</div>
      {{#if company.address}}<div class="company-address">{{company.address}}</div>{{/if}}
    </div>
    <div class="meta">
      <h1>Account Statement</h1>
      <div>Period: {{summary.from}} to {{summary.to}}</div>
    </div>
  </header>

  <section class="account">
    <div><strong>{{user.name}}</strong></div>
    {{#if user.email}}<div>Email: {{user.email}}</div>{{/if}}
    {{#if user.mobile}}<div>Mobile: {{user.mobile}}</div>{{/if}}
  </section>

  <table class="summary">
    <tr><th>Previous Balance</th><td>{{summary.previousBalance}} {{summary.currency}}</td></tr>
    <tr><th>Total Debit</th><td>{{summary.totalDebit}} {{summary.currency}}</td></tr>
    <tr><th>Total Credit</th><td>{{summary.totalCredit}} {{summary.currency}}</td></tr>
    <tr><th>Balance Due</th><td>{{summary.balanceDue}} {{summary.currency}}</td></tr>
  </table>

  <table class="transactions">
    <thead>
      <tr>
        <th>#</th>
        <th>Date</th>
        <th>Details</th>
        <th>Type</th>
        <th>Debit IQD</th>
        <th>Debit USD</th>
        <th>Credit IQD</th>
        <th>Credit USD</th>
        <th>Balance IQD</th>
        <th>Invoice</th>
      </tr>
    </thead>
    <tbody>
{{#each transactions}}
      <tr class="txn-row{{#if (eq type 'DT-ISSUE')}} issue-row{{/if}}">
        <td>{{@index}}</td>
        <td>{{date}}</td>
        <td class="details">{{#if pnr}}<span class="pnr">PNR: {{pnr}}</span> {{/if}}{{details}}</td>
        <td>{{type}}</td>
        <td class="debit">{{debit_iqd}}</td>
        <td class="debit">{{debit_usd}}</td>
        <td class="credit">{{credit_iqd}}</td>
        <td class="credit">{{credit_usd}}</td>
        <td class="balance">{{balance_iqd}}</td>
        <td>{{invoice_no}}</td>
      </tr>
{{/each}}
    </tbody>
  </table>
</div>
`

// DefaultVoucherTemplate is the built-in payment and receipt voucher fragment.
const DefaultVoucherTemplate = `<div class="voucher">
  <header class="voucher-header">
    {{#if company.logoUrl}}<img class="logo" src="{{company.logoUrl}}" alt="{{company.name}}" style="max-height:64px" />{{/if}}
    {{#if company.textLogo}}<div class="text-logo">{{company.name}}</div>{{/if}}
    <div class="company-name">{{company.name}}</div>
    {{#if company.address}}<div class="company-address">{{company.address}}</div>{{/if}}
  </header>

  <h1>{{voucher.type}} Voucher</h1>
  <table class="voucher-details">
    <tr><th>Number</th><td>{{voucher.number}}</td></tr>
    <tr><th>Date</th><td>{{voucher.date}}</td></tr>
    {{#if voucher.receivedFrom}}<tr><th>Received From</th><td>{{voucher.receivedFrom}}</td></tr>{{/if}}
    {{#if voucher.paidTo}}<tr><th>Paid To</th><td>{{voucher.paidTo}}</td></tr>{{/if}}
    <tr><th>Amount</th><td>{{voucher.amount}} {{voucher.currency}}</td></tr>
    {{#if voucher.amountInWords}}<tr><th>In Words</th><td>{{voucher.amountInWords}}</td></tr>{{/if}}
    {{#if voucher.method}}<tr><th>Method</th><td>{{voucher.method}}</td></tr>{{/if}}
    {{#if voucher.description}}<tr><th>Description</th><td>{{voucher.description}}</td></tr>{{/if}}
  </table>

  <footer class="signatures">
    <div>Issued by: {{employee.name}}</div>
    <div>Signature: ____________________</div>
  </footer>
</div>
`

// DefaultTemplate returns the built-in template for a kind.
func DefaultTemplate(kind Kind) string {
	if kind == KindVoucher {
		return DefaultVoucherTemplate
	}
	return DefaultStatementTemplate
}
