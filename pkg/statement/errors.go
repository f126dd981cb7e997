package statement

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// WarningCode identifies a class of template problem.
type WarningCode string

const (
	WarnUnterminatedBlock     WarningCode = "UNTERMINATED_BLOCK"
	WarnUnmatchedClose        WarningCode = "UNMATCHED_CLOSE"
	WarnUnsupportedCollection WarningCode = "UNSUPPORTED_COLLECTION"
	WarnNestedLoop            WarningCode = "NESTED_LOOP"
	WarnEqOutsideLoop         WarningCode = "EQ_OUTSIDE_LOOP"
	WarnIndexOutsideLoop      WarningCode = "INDEX_OUTSIDE_LOOP"
	WarnNestingTooDeep        WarningCode = "NESTING_TOO_DEEP"
	WarnUnknownVariable       WarningCode = "UNKNOWN_VARIABLE"
)

// SyntaxWarning describes a directive the engine rendered leniently.
// Rendering never stops because of a warning.
type SyntaxWarning struct {
	Code      WarningCode `json:"code"`
	Message   string      `json:"message"`
	Directive string      `json:"directive"`
	Offset    int         `json:"offset"`
	Line      int         `json:"line"`
	Column    int         `json:"column"`
}

func (w SyntaxWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", w.Code, w.Line, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// newWarning builds a warning with line and column computed from the offset
func newWarning(lines *lineIndex, code WarningCode, directive string, offset int, format string, args ...interface{}) SyntaxWarning {
	line, column := lines.position(offset)
	return SyntaxWarning{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Directive: directive,
		Offset:    offset,
		Line:      line,
		Column:    column,
	}
}

// lineIndex maps byte offsets of one source to lines and columns.
type lineIndex struct {
	// starts holds the offset of the first byte of every line.
	starts []int
	size   int
}

func newLineIndex(source string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(source); {
		j := strings.IndexByte(source[i:], '\n')
		if j < 0 {
			break
		}
		i += j + 1
		starts = append(starts, i)
	}
	return &lineIndex{starts: starts, size: len(source)}
}

// position converts a byte offset to a 1-based line and column
func (l *lineIndex) position(offset int) (int, int) {
	if offset > l.size {
		offset = l.size
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
	return line, offset - l.starts[line-1] + 1
}

// TemplateError is returned in strict mode when a template rendered with
// warnings.
type TemplateError struct {
	Message  string
	Warnings []SyntaxWarning
}

func (e *TemplateError) Error() string {
	if len(e.Warnings) == 0 {
		return fmt.Sprintf("template error: %s", e.Message)
	}
	first := e.Warnings[0]
	if len(e.Warnings) == 1 {
		return fmt.Sprintf("template error: %s: %s", e.Message, first)
	}
	return fmt.Sprintf("template error: %s: %s (and %d more)", e.Message, first, len(e.Warnings)-1)
}

// NewTemplateError creates a template error carrying the given warnings
func NewTemplateError(message string, warnings []SyntaxWarning) error {
	return &TemplateError{
		Message:  message,
		Warnings: warnings,
	}
}

// IsTemplateError checks if an error is, or wraps, a template error
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

// WarningsOf returns the warnings carried by a template error, or nil.
func WarningsOf(err error) []SyntaxWarning {
	var te *TemplateError
	if errors.As(err, &te) {
		return te.Warnings
	}
	return nil
}
