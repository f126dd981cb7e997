package statement

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func warningCodes(warnings []SyntaxWarning) []WarningCode {
	var codes []WarningCode
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestParseNodes(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		maxDepth int
		wantTree string
		wantWarn []WarningCode
	}{
		{
			name:     "text and variable",
			content:  "Hello {{user.name}}",
			wantTree: "Text(\"Hello \")\nVar(user.name)\n",
		},
		{
			name:    "loop with index",
			content: "{{#each transactions}}<td>{{@index}}</td>{{/each}}",
			wantTree: "Each(transactions)\n" +
				"  Text(\"<td>\")\n" +
				"  Index\n" +
				"  Text(\"</td>\")\n",
		},
		{
			name:    "equality inside loop",
			content: "{{#each transactions}}{{#if (eq type 'DT-ISSUE')}}I{{/if}}{{/each}}",
			wantTree: "Each(transactions)\n" +
				"  IfEq(type, \"DT-ISSUE\")\n" +
				"    Text(\"I\")\n",
		},
		{
			name:    "document conditional",
			content: "{{#if company.logoUrl}}<img src=\"{{company.logoUrl}}\">{{/if}}",
			wantTree: "If(company.logoUrl)\n" +
				"  Text(\"<img src=\\\"\")\n" +
				"  Var(company.logoUrl)\n" +
				"  Text(\"\\\">\")\n",
		},
		{
			name:     "unterminated conditional is literal",
			content:  "a{{#if x}}b",
			wantTree: "Text(\"a{{#if x}}b\")\n",
			wantWarn: []WarningCode{WarnUnterminatedBlock},
		},
		{
			name:     "unterminated loop is literal",
			content:  "{{#each transactions}}{{no}}",
			wantTree: "Text(\"{{#each transactions}}\")\nVar(no)\n",
			wantWarn: []WarningCode{WarnUnterminatedBlock},
		},
		{
			name:     "stray close is literal",
			content:  "a{{/if}}b{{/each}}",
			wantTree: "Text(\"a{{/if}}b{{/each}}\")\n",
			wantWarn: []WarningCode{WarnUnmatchedClose, WarnUnmatchedClose},
		},
		{
			name:    "unclosed conditional inside loop is literal",
			content: "{{#each transactions}}{{#if pnr}}x{{/each}}",
			wantTree: "Each(transactions)\n" +
				"  Text(\"{{#if pnr}}x\")\n",
			wantWarn: []WarningCode{WarnUnterminatedBlock},
		},
		{
			name:    "closer of the other kind stays literal inside a block",
			content: "{{#each transactions}}{{#if a}}{{/each}}{{/if}}",
			wantTree: "Text(\"{{#each transactions}}\")\n" +
				"If(a)\n" +
				"  Text(\"{{/each}}\")\n",
			wantWarn: []WarningCode{WarnUnterminatedBlock, WarnUnmatchedClose},
		},
		{
			name:    "nested loop is verbatim",
			content: "{{#each transactions}}{{#each transactions}}x{{/each}}{{/each}}",
			wantTree: "Each(transactions)\n" +
				"  Verbatim({{#each transactions}})\n" +
				"    Text(\"x\")\n",
			wantWarn: []WarningCode{WarnNestedLoop},
		},
		{
			name:    "unsupported collection is verbatim",
			content: "{{#each users}}{{name}}{{/each}}",
			wantTree: "Verbatim({{#each users}})\n" +
				"  Var(name)\n",
			wantWarn: []WarningCode{WarnUnsupportedCollection},
		},
		{
			name:    "equality outside loop is verbatim",
			content: "{{#if (eq type 'A')}}x{{/if}}",
			wantTree: "Verbatim({{#if (eq type 'A')}})\n" +
				"  Text(\"x\")\n",
			wantWarn: []WarningCode{WarnEqOutsideLoop},
		},
		{
			name:     "index outside loop is literal",
			content:  "#{{@index}}",
			wantTree: "Text(\"#{{@index}}\")\n",
			wantWarn: []WarningCode{WarnIndexOutsideLoop},
		},
		{
			name:     "nesting limit inside loop",
			content:  "{{#each transactions}}{{#if a}}{{#if b}}{{#if c}}x{{/if}}{{/if}}{{/if}}{{/each}}",
			maxDepth: 2,
			wantTree: "Each(transactions)\n" +
				"  If(a)\n" +
				"    If(b)\n" +
				"      Verbatim({{#if c}})\n" +
				"        Text(\"x\")\n",
			wantWarn: []WarningCode{WarnNestingTooDeep},
		},
		{
			name:     "unknown directive is text",
			content:  "{{> partial}}",
			wantTree: "Text(\"{{> partial}}\")\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, warnings := ParseNodes(tt.content, tt.maxDepth)
			if got := FormatTree(nodes); got != tt.wantTree {
				t.Errorf("ParseNodes() tree =\n%s\nwant\n%s", got, tt.wantTree)
			}
			if diff := cmp.Diff(tt.wantWarn, warningCodes(warnings)); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWarningPosition(t *testing.T) {
	_, warnings := ParseNodes("line one\n  {{/if}}", 0)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Line != 2 || w.Column != 3 || w.Offset != 11 {
		t.Errorf("position = line %d, column %d, offset %d; want 2, 3, 11", w.Line, w.Column, w.Offset)
	}
	if w.Directive != "{{/if}}" {
		t.Errorf("Directive = %q, want {{/if}}", w.Directive)
	}
}

func TestParseNodesManyUnterminatedBlocks(t *testing.T) {
	const n = 10000
	source := strings.Repeat("{{#if x}}a\n", n)

	start := time.Now()
	nodes, warnings := ParseNodes(source, 0)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("ParseNodes() took %v for %d unclosed blocks", elapsed, n)
	}

	if len(warnings) != n {
		t.Fatalf("got %d warnings, want %d", len(warnings), n)
	}
	if last := warnings[n-1]; last.Line != n || last.Column != 1 {
		t.Errorf("last warning at line %d, column %d; want %d, 1", last.Line, last.Column, n)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want a single text node", len(nodes))
	}
	if text, ok := nodes[0].(*TextNode); !ok || text.Content != source {
		t.Errorf("unterminated blocks were not kept verbatim")
	}
}

func TestParseNodesMixedUnterminatedBlocks(t *testing.T) {
	source := strings.Repeat("{{#if a}}{{#each transactions}}", 2000) + "{{/if}}"
	nodes, warnings := ParseNodes(source, 0)
	if len(warnings) != 3999 {
		t.Fatalf("got %d warnings, want 3999", len(warnings))
	}
	// Only the last conditional finds the closer; every earlier opener is text.
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want text followed by a conditional", len(nodes))
	}
	if _, ok := nodes[1].(*IfNode); !ok {
		t.Errorf("last node = %s, want If(a)", nodes[1])
	}
}

func BenchmarkParseNodesUnclosed(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		source := strings.Repeat("{{#if x}}a", n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ParseNodes(source, 0)
			}
		})
	}
}
