package statement

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// TokenType represents the type of a template token
type TokenType int

const (
	TokenText TokenType = iota
	TokenVariable
	TokenIndex
	TokenEach
	TokenEndEach
	TokenIf
	TokenIfEq
	TokenEndIf
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "Text"
	case TokenVariable:
		return "Variable"
	case TokenIndex:
		return "Index"
	case TokenEach:
		return "Each"
	case TokenEndEach:
		return "EndEach"
	case TokenIf:
		return "If"
	case TokenIfEq:
		return "IfEq"
	case TokenEndIf:
		return "EndIf"
	default:
		return "Unknown"
	}
}

// Token represents a parsed template token.
//
// Value holds the variable path, the loop collection or the conditional path.
// Field and Literal are only set for equality conditionals. Raw is the exact
// source text of the token and Offset its byte position in the template.
type Token struct {
	Type    TokenType
	Value   string
	Field   string
	Literal string
	Raw     string
	Offset  int
}

var (
	// Regular expression to match template tokens
	tokenRegex = regexp.MustCompile(`\{\{([^}]*)\}\}`)

	pathRegex = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*$`)

	// (eq field 'literal') or (eq field "literal")
	eqRegex = regexp.MustCompile(`^\(\s*eq\s+([\w-]+(?:\.[\w-]+)*)\s+(?:'([^']*)'|"([^"]*)")\s*\)$`)
)

// Tokenize splits a template into text and directive tokens. Directives that
// are not part of the grammar stay text tokens.
func Tokenize(input string) []Token {
	var tokens []Token
	lastEnd := 0

	logger := GetLogger()
	if logger.IsDebug() {
		logger.Debug("starting tokenization", zap.Int("input_length", len(input)))
	}

	matches := tokenRegex.FindAllStringSubmatchIndex(input, -1)

	for _, match := range matches {
		if match[0] > lastEnd {
			tokens = append(tokens, Token{
				Type:   TokenText,
				Value:  input[lastEnd:match[0]],
				Raw:    input[lastEnd:match[0]],
				Offset: lastEnd,
			})
		}

		raw := input[match[0]:match[1]]
		content := strings.TrimSpace(input[match[2]:match[3]])
		token := parseToken(content)
		token.Raw = raw
		token.Offset = match[0]
		if token.Type == TokenText {
			token.Value = raw
		}
		tokens = append(tokens, token)

		lastEnd = match[1]
	}

	if lastEnd < len(input) {
		tokens = append(tokens, Token{
			Type:   TokenText,
			Value:  input[lastEnd:],
			Raw:    input[lastEnd:],
			Offset: lastEnd,
		})
	}

	if logger.IsDebug() {
		logger.Debug("tokenization complete", zap.Int("token_count", len(tokens)))
	}

	return tokens
}

// parseToken determines the type of token from its trimmed content
func parseToken(content string) Token {
	parts := strings.Fields(content)
	if len(parts) == 0 {
		return Token{Type: TokenText}
	}

	switch keyword := parts[0]; {
	case content == "@index":
		return Token{Type: TokenIndex}
	case content == "/each":
		return Token{Type: TokenEndEach}
	case content == "/if":
		return Token{Type: TokenEndIf}
	case keyword == "#each":
		return Token{
			Type:  TokenEach,
			Value: strings.TrimSpace(strings.TrimPrefix(content, "#each")),
		}
	case keyword == "#if" || strings.HasPrefix(keyword, "#if("):
		return parseConditional(strings.TrimSpace(strings.TrimPrefix(content, "#if")))
	case pathRegex.MatchString(content):
		return Token{Type: TokenVariable, Value: content}
	default:
		// Unknown helpers, expressions and stray braces pass through untouched.
		return Token{Type: TokenText}
	}
}

func parseConditional(rest string) Token {
	if strings.HasPrefix(rest, "(") {
		m := eqRegex.FindStringSubmatchIndex(rest)
		if m == nil {
			return Token{Type: TokenText}
		}
		field := rest[m[2]:m[3]]
		var literal string
		if m[4] >= 0 {
			literal = rest[m[4]:m[5]]
		} else {
			literal = rest[m[6]:m[7]]
		}
		return Token{Type: TokenIfEq, Field: field, Literal: literal, Value: field}
	}
	if !pathRegex.MatchString(rest) {
		return Token{Type: TokenText}
	}
	return Token{Type: TokenIf, Value: rest}
}

// FindTemplateTokens finds all directive-shaped substrings in a template.
// This is a utility function for debugging and analysis
func FindTemplateTokens(input string) []string {
	matches := tokenRegex.FindAllString(input, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}
