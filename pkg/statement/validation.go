package statement

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ValidationSummary contains validation counters.
type ValidationSummary struct {
	CheckedDirectives int `json:"checkedDirectives"`
	WarningCount      int `json:"warningCount"`
}

// ValidationResult contains the outcome of validating a template.
type ValidationResult struct {
	Valid        bool              `json:"valid"`
	Kind         Kind              `json:"kind"`
	Summary      ValidationSummary `json:"summary"`
	Warnings     []SyntaxWarning   `json:"warnings"`
	Variables    []string          `json:"variables"`
	TemplateHash string            `json:"templateHash"`
}

// Validate reports every structural warning of a template plus the
// variables and conditional paths that are not part of the vocabulary of
// kind. Rendering is unaffected by anything reported here.
func Validate(source string, kind Kind) *ValidationResult {
	tmpl := Parse(source)
	warnings := tmpl.Warnings()

	v := &referenceWalker{kind: kind, lines: newLineIndex(source), seen: make(map[string]bool)}
	v.walk(tmpl.nodes, false)
	warnings = append(warnings, v.warnings...)

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Offset < warnings[j].Offset
	})

	variables := make([]string, 0, len(v.seen))
	for path := range v.seen {
		variables = append(variables, path)
	}
	sort.Strings(variables)

	sum := sha256.Sum256([]byte(source))
	return &ValidationResult{
		Valid: len(warnings) == 0,
		Kind:  kind,
		Summary: ValidationSummary{
			CheckedDirectives: countDirectives(source),
			WarningCount:      len(warnings),
		},
		Warnings:     warnings,
		Variables:    variables,
		TemplateHash: hex.EncodeToString(sum[:]),
	}
}

// ExtractVariables returns the distinct paths referenced by variables and
// conditionals, sorted.
func ExtractVariables(source string) []string {
	return Validate(source, KindStatement).Variables
}

type referenceWalker struct {
	kind     Kind
	lines    *lineIndex
	seen     map[string]bool
	warnings []SyntaxWarning
}

// check records a reference. Conditionals inside a loop only see the line
// item, variables there also fall back to the root.
func (v *referenceWalker) check(path string, offset int, inLoop, conditional bool) {
	v.seen[path] = true
	if KnownPath(v.kind, path, inLoop) {
		if !(inLoop && conditional) || itemFields[path] {
			return
		}
		v.warnings = append(v.warnings, newWarning(v.lines, WarnUnknownVariable, path, offset,
			"conditionals inside a loop only see line item fields, %q is always false there", path))
		return
	}
	v.warnings = append(v.warnings, newWarning(v.lines, WarnUnknownVariable, path, offset,
		"%q is not a known %s variable", path, v.kind))
}

func (v *referenceWalker) walk(nodes []Node, inLoop bool) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *VariableNode:
			v.check(n.Path, n.Offset, inLoop, false)
		case *IfNode:
			v.check(n.Path, n.Offset, inLoop, true)
			v.walk(n.Body, inLoop)
		case *IfEqNode:
			v.check(n.Field, n.Offset, inLoop, true)
			v.walk(n.Body, inLoop)
		case *EachNode:
			v.walk(n.Body, true)
		case *VerbatimNode:
			v.walk(n.Body, inLoop)
		}
	}
}

func countDirectives(source string) int {
	return len(tokenRegex.FindAllStringIndex(source, -1))
}
