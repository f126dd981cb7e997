package statement

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// LoopCollection is the only collection a loop may iterate.
const LoopCollection = "transactions"

// Node is one element of a parsed template.
type Node interface {
	render(b *strings.Builder, ctx *renderContext)
	String() string
}

// renderContext carries the evaluation scope. Inside a loop body item is the
// current line item and index its 0-based position.
type renderContext struct {
	root    map[string]interface{}
	item    map[string]interface{}
	index   int
	inLoop  bool
	isEmpty func(string) bool
	escape  bool
}

func (c *renderContext) write(b *strings.Builder, s string) {
	if c.escape {
		s = html.EscapeString(s)
	}
	b.WriteString(s)
}

// TextNode represents plain text content
type TextNode struct {
	Content string
}

func (n *TextNode) String() string {
	return fmt.Sprintf("Text(%q)", n.Content)
}

func (n *TextNode) render(b *strings.Builder, _ *renderContext) {
	b.WriteString(n.Content)
}

// VariableNode substitutes the value at Path.
type VariableNode struct {
	Path   string
	Offset int
}

func (n *VariableNode) String() string {
	return fmt.Sprintf("Var(%s)", n.Path)
}

func (n *VariableNode) render(b *strings.Builder, ctx *renderContext) {
	// Inside a loop, names of line item fields bind to the item; everything
	// else is resolved later against the root, as at document level.
	if ctx.inLoop {
		head := n.Path
		if i := strings.IndexByte(head, '.'); i >= 0 {
			head = head[:i]
		}
		if _, ok := ctx.item[head]; ok {
			value, _ := ResolvePath(ctx.item, n.Path)
			ctx.write(b, FormatValue(value))
			return
		}
	}
	value, _ := ResolvePath(ctx.root, n.Path)
	ctx.write(b, FormatValue(value))
}

// IndexNode renders the 1-based position of the current line item.
type IndexNode struct{}

func (n *IndexNode) String() string {
	return "Index"
}

func (n *IndexNode) render(b *strings.Builder, ctx *renderContext) {
	b.WriteString(strconv.Itoa(ctx.index + 1))
}

// EachNode repeats its body once per transaction.
type EachNode struct {
	Collection string
	Body       []Node
}

func (n *EachNode) String() string {
	return fmt.Sprintf("Each(%s)", n.Collection)
}

func (n *EachNode) render(b *strings.Builder, ctx *renderContext) {
	items := toItems(ctx.root[n.Collection])
	for i, item := range items {
		loopCtx := *ctx
		loopCtx.item = item
		loopCtx.index = i
		loopCtx.inLoop = true
		renderNodes(b, n.Body, &loopCtx)
	}
}

// IfNode renders its body when the value at Path is truthy. Inside a loop the
// path is resolved against the line item only.
type IfNode struct {
	Path   string
	Offset int
	Body   []Node
}

func (n *IfNode) String() string {
	return fmt.Sprintf("If(%s)", n.Path)
}

func (n *IfNode) render(b *strings.Builder, ctx *renderContext) {
	scope := ctx.root
	if ctx.inLoop {
		scope = ctx.item
	}
	value, ok := ResolvePath(scope, n.Path)
	if ok && IsTruthy(value, ctx.isEmpty) {
		renderNodes(b, n.Body, ctx)
	}
}

// IfEqNode renders its body when the line item field stringifies exactly to
// Literal. It only occurs inside loop bodies.
type IfEqNode struct {
	Field   string
	Literal string
	Offset  int
	Body    []Node
}

func (n *IfEqNode) String() string {
	return fmt.Sprintf("IfEq(%s, %q)", n.Field, n.Literal)
}

func (n *IfEqNode) render(b *strings.Builder, ctx *renderContext) {
	value, ok := ResolvePath(ctx.item, n.Field)
	if ok && FormatValue(value) == n.Literal {
		renderNodes(b, n.Body, ctx)
	}
}

// VerbatimNode writes its opening and closing directives unchanged around its
// rendered body. It holds blocks the engine recognises but does not evaluate.
type VerbatimNode struct {
	Open  string
	Close string
	Body  []Node
}

func (n *VerbatimNode) String() string {
	return fmt.Sprintf("Verbatim(%s)", n.Open)
}

func (n *VerbatimNode) render(b *strings.Builder, ctx *renderContext) {
	b.WriteString(n.Open)
	renderNodes(b, n.Body, ctx)
	b.WriteString(n.Close)
}

func renderNodes(b *strings.Builder, nodes []Node, ctx *renderContext) {
	for _, node := range nodes {
		node.render(b, ctx)
	}
}

// parser builds a node tree from tokens. It never fails: malformed input is
// kept as literal text and reported as warnings.
type parser struct {
	tokens    []Token
	lines     *lineIndex
	loopDepth int
	condDepth int
	maxDepth  int
	warnings  []SyntaxWarning

	// closers holds the index of the closing token of each opening token,
	// or -1 when the block is never closed.
	closers []int
}

// ParseNodes parses template source into a node tree and returns the
// warnings produced along the way.
func ParseNodes(source string, maxDepth int) ([]Node, []SyntaxWarning) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}
	tokens := Tokenize(source)
	p := &parser{
		tokens:   tokens,
		lines:    newLineIndex(source),
		maxDepth: maxDepth,
		closers:  matchClosers(tokens),
	}
	nodes := p.parseRange(0, len(tokens))
	return mergeText(nodes), p.warnings
}

// matchClosers pairs opening tokens with their closing tokens in one
// backward pass. A block ends at the first closer of its own type that no
// closed block nested inside it consumes; closers of the other type inside
// it stay literal. nextIf[i] and nextEach[i] hold the first such closer
// reachable from token i, skipping over closed blocks.
func matchClosers(tokens []Token) []int {
	n := len(tokens)
	closers := make([]int, n)
	nextIf := make([]int, n+1)
	nextEach := make([]int, n+1)
	nextIf[n], nextEach[n] = -1, -1

	for i := n - 1; i >= 0; i-- {
		closers[i] = -1
		nextIf[i], nextEach[i] = nextIf[i+1], nextEach[i+1]

		switch tokens[i].Type {
		case TokenEndIf:
			nextIf[i] = i
		case TokenEndEach:
			nextEach[i] = i
		case TokenEach:
			closers[i] = nextEach[i+1]
		case TokenIf, TokenIfEq:
			closers[i] = nextIf[i+1]
		}

		if c := closers[i]; c >= 0 {
			nextIf[i], nextEach[i] = nextIf[c+1], nextEach[c+1]
		}
	}
	return closers
}

func (p *parser) warn(code WarningCode, tok Token, format string, args ...interface{}) {
	p.warnings = append(p.warnings, newWarning(p.lines, code, tok.Raw, tok.Offset, format, args...))
}

// parseRange parses tokens[from:to]. Blocks opened in the range close
// inside it.
func (p *parser) parseRange(from, to int) []Node {
	var nodes []Node

	for i := from; i < to; {
		tok := p.tokens[i]

		switch tok.Type {
		case TokenText:
			if tok.Value != "" {
				nodes = append(nodes, &TextNode{Content: tok.Value})
			}
			i++

		case TokenVariable:
			nodes = append(nodes, &VariableNode{Path: tok.Value, Offset: tok.Offset})
			i++

		case TokenIndex:
			if p.loopDepth > 0 {
				nodes = append(nodes, &IndexNode{})
			} else {
				p.warn(WarnIndexOutsideLoop, tok, "{{@index}} is only defined inside {{#each %s}}", LoopCollection)
				nodes = append(nodes, &TextNode{Content: tok.Raw})
			}
			i++

		case TokenEndEach, TokenEndIf:
			p.warn(WarnUnmatchedClose, tok, "%s has no matching opening block", tok.Raw)
			nodes = append(nodes, &TextNode{Content: tok.Raw})
			i++

		case TokenEach, TokenIf, TokenIfEq:
			closeAt := p.closers[i]
			if closeAt < 0 {
				p.warn(WarnUnterminatedBlock, tok, "%s is never closed", tok.Raw)
				nodes = append(nodes, &TextNode{Content: tok.Raw})
				i++
				continue
			}
			nodes = append(nodes, p.parseBlock(tok, i+1, closeAt))
			i = closeAt + 1

		default:
			i++
		}
	}

	return nodes
}

// parseBlock builds the node for a closed block whose body spans
// tokens[from:closeAt].
func (p *parser) parseBlock(open Token, from, closeAt int) Node {
	savedLoop, savedCond := p.loopDepth, p.condDepth
	build := p.classify(open)
	body := p.parseRange(from, closeAt)
	p.loopDepth, p.condDepth = savedLoop, savedCond
	return build(mergeText(body), p.tokens[closeAt].Raw)
}

// classify decides how an opening directive is evaluated, adjusts the scope
// depth for its body and returns a constructor for the finished node.
func (p *parser) classify(open Token) func(body []Node, closeRaw string) Node {
	verbatim := func(body []Node, closeRaw string) Node {
		return &VerbatimNode{Open: open.Raw, Close: closeRaw, Body: body}
	}

	switch open.Type {
	case TokenEach:
		if open.Value != LoopCollection {
			p.warn(WarnUnsupportedCollection, open, "only {{#each %s}} is supported, got %q", LoopCollection, open.Value)
			return verbatim
		}
		if p.loopDepth > 0 {
			p.warn(WarnNestedLoop, open, "loops cannot be nested")
			return verbatim
		}
		p.loopDepth++
		p.condDepth = 0
		return func(body []Node, _ string) Node {
			return &EachNode{Collection: open.Value, Body: body}
		}

	case TokenIfEq:
		if p.loopDepth == 0 {
			p.warn(WarnEqOutsideLoop, open, "equality conditionals are only evaluated inside {{#each %s}}", LoopCollection)
			return verbatim
		}
		if !p.enterConditional(open) {
			return verbatim
		}
		return func(body []Node, _ string) Node {
			return &IfEqNode{Field: open.Field, Literal: open.Literal, Offset: open.Offset, Body: body}
		}

	default:
		if !p.enterConditional(open) {
			return verbatim
		}
		return func(body []Node, _ string) Node {
			return &IfNode{Path: open.Value, Offset: open.Offset, Body: body}
		}
	}
}

// enterConditional bounds conditional nesting inside loop bodies.
func (p *parser) enterConditional(open Token) bool {
	if p.loopDepth == 0 {
		return true
	}
	if p.condDepth >= p.maxDepth {
		p.warn(WarnNestingTooDeep, open, "conditional nesting deeper than %d is not evaluated", p.maxDepth)
		return false
	}
	p.condDepth++
	return true
}

// mergeText joins runs of adjacent text nodes produced by lenient recovery
func mergeText(nodes []Node) []Node {
	if len(nodes) < 2 {
		return nodes
	}
	merged := make([]Node, 0, len(nodes))
	for i := 0; i < len(nodes); {
		j := i
		for j < len(nodes) {
			if _, ok := nodes[j].(*TextNode); !ok {
				break
			}
			j++
		}

		switch j - i {
		case 0:
			merged = append(merged, nodes[i])
			i++
		case 1:
			merged = append(merged, nodes[i])
			i = j
		default:
			var b strings.Builder
			for _, node := range nodes[i:j] {
				b.WriteString(node.(*TextNode).Content)
			}
			merged = append(merged, &TextNode{Content: b.String()})
			i = j
		}
	}
	return merged
}

// FormatTree renders a node tree as an indented outline for debugging.
func FormatTree(nodes []Node) string {
	var b strings.Builder
	formatTree(&b, nodes, 0)
	return b.String()
}

func formatTree(b *strings.Builder, nodes []Node, depth int) {
	for _, node := range nodes {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(node.String())
		b.WriteString("\n")
		switch n := node.(type) {
		case *EachNode:
			formatTree(b, n.Body, depth+1)
		case *IfNode:
			formatTree(b, n.Body, depth+1)
		case *IfEqNode:
			formatTree(b, n.Body, depth+1)
		case *VerbatimNode:
			formatTree(b, n.Body, depth+1)
		}
	}
}
