package statement

import (
	"fmt"
	"strings"
	"testing"
)

func TestTemplateErrorMessage(t *testing.T) {
	w := newWarning(newLineIndex("ab\ncd{{/if}}"), WarnUnmatchedClose, "{{/if}}", 5, "%s has no matching opening block", "{{/if}}")
	if w.Line != 2 || w.Column != 3 {
		t.Fatalf("position = %d:%d, want 2:3", w.Line, w.Column)
	}

	tests := []struct {
		name     string
		warnings []SyntaxWarning
		want     string
	}{
		{"no warnings", nil, "template error: bad"},
		{"one warning", []SyntaxWarning{w}, "template error: bad: UNMATCHED_CLOSE at line 2, column 3: {{/if}} has no matching opening block"},
		{"many warnings", []SyntaxWarning{w, w, w}, "(and 2 more)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTemplateError("bad", tt.warnings)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestIsTemplateErrorWrapped(t *testing.T) {
	err := fmt.Errorf("render failed: %w", NewTemplateError("x", []SyntaxWarning{{Code: WarnNestedLoop}}))
	if !IsTemplateError(err) {
		t.Error("IsTemplateError() = false for a wrapped template error")
	}
	if got := WarningsOf(err); len(got) != 1 || got[0].Code != WarnNestedLoop {
		t.Errorf("WarningsOf() = %v", got)
	}
	if IsTemplateError(fmt.Errorf("plain")) {
		t.Error("IsTemplateError() = true for a plain error")
	}
	if WarningsOf(nil) != nil {
		t.Error("WarningsOf(nil) != nil")
	}
}
