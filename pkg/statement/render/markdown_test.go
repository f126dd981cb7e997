package render

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	src := "# Statement\n\n| No | Amount |\n|----|--------|\n| 1 | 500,000 |\n\n<span class=\"pnr\">PNR: ABC123</span>\n"

	out, err := MarkdownToHTML(src)
	if err != nil {
		t.Fatalf("MarkdownToHTML() error = %v", err)
	}

	for _, want := range []string{
		"<h1>Statement</h1>",
		"<table>",
		"<td>500,000</td>",
		`<span class="pnr">PNR: ABC123</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
