package statement

import (
	"strings"

	"go.uber.org/zap"
)

// Template is a parsed template source. It is immutable and safe for
// concurrent use.
type Template struct {
	source   string
	nodes    []Node
	warnings []SyntaxWarning
}

// Parse parses template source using the global nesting limit. Parsing never
// fails; problems are available from Warnings.
func Parse(source string) *Template {
	return parseTemplate(source, GetGlobalConfig().MaxNestingDepth)
}

func parseTemplate(source string, maxDepth int) *Template {
	nodes, warnings := ParseNodes(source, maxDepth)

	logger := GetLogger()
	if len(warnings) > 0 && logger.IsDebug() {
		logger.Debug("template parsed with warnings",
			zap.Int("node_count", len(nodes)),
			zap.Int("warning_count", len(warnings)))
	}

	return &Template{
		source:   source,
		nodes:    nodes,
		warnings: warnings,
	}
}

// Source returns the original template text.
func (t *Template) Source() string {
	return t.source
}

// Warnings returns the problems found while parsing.
func (t *Template) Warnings() []SyntaxWarning {
	out := make([]SyntaxWarning, len(t.warnings))
	copy(out, t.warnings)
	return out
}

// Nodes returns the parsed node tree.
func (t *Template) Nodes() []Node {
	return t.nodes
}

// String returns an outline of the node tree.
func (t *Template) String() string {
	return FormatTree(t.nodes)
}

// Execute renders the template fragment against data with the default
// truthiness rules. The result is not wrapped in a document.
func (t *Template) Execute(data TemplateData) string {
	return t.execute(data, nil, false)
}

func (t *Template) execute(data TemplateData, isEmpty func(string) bool, escape bool) string {
	if isEmpty == nil {
		isEmpty = IsSentinelEmpty
	}
	if data == nil {
		data = TemplateData{}
	}
	ctx := &renderContext{
		root:    data,
		isEmpty: isEmpty,
		escape:  escape,
	}

	var b strings.Builder
	b.Grow(len(t.source))
	renderNodes(&b, t.nodes, ctx)
	return b.String()
}
