// Package statement renders account statement and voucher templates to
// printable HTML documents.
//
// Basic Usage:
//
//	data := statement.SampleStatementData()
//	html := statement.RenderDocument(statement.DefaultStatementTemplate, data)
//
// Template Syntax:
//
// Variables: {{summary.balanceDue}}, {{user.name}}
//
// Loop over the transaction lines: {{#each transactions}}<tr><td>{{@index}}</td><td>{{details}}</td></tr>{{/each}}
//
// Truthiness: {{#if pnr}}PNR: {{pnr}}{{/if}}. Empty strings, "0", "-" and
// whitespace are false.
//
// Equality, inside a loop only: {{#if (eq type 'DT-ISSUE')}} issue-row{{/if}}
//
// Inside a loop body, line item fields bind to the current transaction and
// other paths resolve against the root. Conditionals there only see the
// line item. Unresolved paths render as the empty string.
//
// Malformed templates never fail: unterminated blocks, stray closing tags and
// unsupported directives are kept as literal text and reported as
// SyntaxWarning values. Fragments are wrapped in a standalone document unless
// they already carry a doctype or an html tag.
package statement
