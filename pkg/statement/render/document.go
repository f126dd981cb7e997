// Package render assembles evaluated template fragments into standalone
// documents.
package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
)

// DocumentOptions controls the shell generated around a fragment.
type DocumentOptions struct {
	Title string `yaml:"title" json:"title"`
	Lang  string `yaml:"lang" json:"lang"`
	Dir   string `yaml:"dir" json:"dir"`
}

// DefaultDocumentOptions returns the options used when none are given.
func DefaultDocumentOptions() DocumentOptions {
	return DocumentOptions{
		Title: "Statement",
		Lang:  "en",
		Dir:   "ltr",
	}
}

// WithDefaults fills empty fields from DefaultDocumentOptions.
func (o DocumentOptions) WithDefaults() DocumentOptions {
	d := DefaultDocumentOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Lang == "" {
		o.Lang = d.Lang
	}
	if o.Dir == "" {
		o.Dir = d.Dir
	}
	return o
}

var completeDocumentRegex = regexp.MustCompile(`(?i)<!doctype|<html`)

// IsCompleteDocument reports whether s already carries a doctype or an
// opening html tag.
func IsCompleteDocument(s string) bool {
	return completeDocumentRegex.MatchString(s)
}

const documentShell = `<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 24px;
      font-family: "Segoe UI", Tahoma, "Helvetica Neue", Arial, sans-serif;
      font-size: 13px;
      color: #111827;
      background: #ffffff;
    }
    table {
      width: 100%;
      border-collapse: collapse;
    }
    th, td {
      padding: 6px 8px;
      border: 1px solid #d1d5db;
      text-align: start;
    }
    th {
      background: #f3f4f6;
      font-weight: 600;
    }
    .issue-row { background: #fef2f2; }
    .pnr { color: #6b7280; font-size: 11px; }
    .text-logo { font-size: 22px; font-weight: 700; }
    .page-break { page-break-after: always; break-after: page; }
    @page {
      size: A4;
      margin: 12mm;
    }
    @media print {
      body { padding: 0; }
      thead { display: table-header-group; }
      tfoot { display: table-footer-group; }
      tr { page-break-inside: avoid; break-inside: avoid; }
      .no-print { display: none; }
    }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var shellTemplate = template.Must(template.New("document").Parse(documentShell))

// WrapDocument returns s unchanged when it is already a complete document,
// otherwise it inserts s into the body of a standalone shell. Wrapping the
// result again is a no-op.
func WrapDocument(s string, opts DocumentOptions) string {
	if IsCompleteDocument(s) {
		return s
	}
	opts = opts.WithDefaults()

	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, struct {
		Title string
		Lang  string
		Dir   string
		Body  template.HTML
	}{
		Title: opts.Title,
		Lang:  strings.ToLower(opts.Lang),
		Dir:   opts.Dir,
		Body:  template.HTML(s),
	})
	if err != nil {
		return s
	}
	return buf.String()
}
