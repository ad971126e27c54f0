// Package solidity parses the subset of Solidity the namespace analyzer
// inspects: pragma directives, contract definitions with inheritance,
// structs, functions, and state variable declarations. Comments and
// whitespace are kept in the tree as trivia terminals so annotation
// attachment and range trimming work on real source layout.
package solidity

import (
	"strings"

	"github.com/oxhq/slotguard/core"
	"github.com/oxhq/slotguard/syntax"
)

var keywords = map[string]bool{
	"pragma": true, "import": true,
	"contract": true, "abstract": true, "interface": true, "library": true,
	"is": true, "struct": true, "enum": true, "using": true, "for": true,
	"function": true, "constructor": true, "modifier": true, "event": true,
	"error": true, "receive": true, "fallback": true, "returns": true,
	"mapping": true, "memory": true, "storage": true, "calldata": true,
	"public": true, "private": true, "internal": true, "external": true,
	"pure": true, "view": true, "payable": true,
	"constant": true, "immutable": true, "transient": true,
	"override": true, "virtual": true,
	"if": true, "else": true, "while": true, "return": true, "emit": true,
	"new": true, "delete": true,
}

var twoCharPunct = map[string]bool{
	">=": true, "<=": true, "==": true, "!=": true, "&&": true, "||": true,
	"=>": true, "+=": true, "-=": true, "*=": true, "/=": true, "->": true,
	"**": true, "++": true, "--": true,
}

// lex splits source into terminals, trivia included. The lexer never
// fails: unrecognized bytes become single-character punctuation tokens.
func lex(src string) []*syntax.Terminal {
	var toks []*syntax.Terminal
	pos := 0
	emit := func(kind syntax.Kind, end int) {
		toks = append(toks, &syntax.Terminal{
			Kind:  kind,
			Text:  src[pos:end],
			Range: core.Range{Start: pos, End: end},
		})
		pos = end
	}

	for pos < len(src) {
		c := src[pos]
		switch {
		case c == '\n':
			emit(syntax.KindEndOfLine, pos+1)
		case c == '\r':
			end := pos + 1
			if end < len(src) && src[end] == '\n' {
				end++
			}
			emit(syntax.KindEndOfLine, end)
		case c == ' ' || c == '\t':
			end := pos
			for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
				end++
			}
			emit(syntax.KindWhitespace, end)
		case strings.HasPrefix(src[pos:], "//"):
			end := pos
			for end < len(src) && src[end] != '\n' && src[end] != '\r' {
				end++
			}
			kind := syntax.KindLineComment
			if strings.HasPrefix(src[pos:], "///") {
				kind = syntax.KindDocLineComment
			}
			emit(kind, end)
		case strings.HasPrefix(src[pos:], "/*"):
			kind := syntax.KindBlockComment
			if strings.HasPrefix(src[pos:], "/**") && !strings.HasPrefix(src[pos:], "/**/") {
				kind = syntax.KindDocBlockComment
			}
			end := strings.Index(src[pos+2:], "*/")
			if end < 0 {
				emit(kind, len(src))
			} else {
				emit(kind, pos+2+end+2)
			}
		case c == '"' || c == '\'':
			emit(syntax.KindString, scanString(src, pos))
		case isIdentStart(c):
			end := pos + 1
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			kind := syntax.KindIdentifier
			if keywords[src[pos:end]] {
				kind = syntax.KindKeyword
			}
			emit(kind, end)
		case c >= '0' && c <= '9':
			emit(syntax.KindNumber, scanNumber(src, pos))
		default:
			if pos+2 <= len(src) && twoCharPunct[src[pos:pos+2]] {
				emit(syntax.KindPunct, pos+2)
			} else {
				emit(syntax.KindPunct, pos+1)
			}
		}
	}
	return toks
}

func scanString(src string, pos int) int {
	quote := src[pos]
	end := pos + 1
	for end < len(src) {
		switch src[end] {
		case '\\':
			end += 2
			continue
		case quote:
			return end + 1
		case '\n':
			return end // unterminated, stop at the line break
		}
		end++
	}
	return len(src)
}

// scanNumber consumes integer, hex, and dotted version literals such as
// "0.8.20" so pragma constraints lex as single tokens.
func scanNumber(src string, pos int) int {
	end := pos
	for end < len(src) {
		c := src[end]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F',
			c == 'x', c == 'X', c == '_':
			end++
		case c == '.' && end+1 < len(src) && src[end+1] >= '0' && src[end+1] <= '9':
			end++
		default:
			return end
		}
	}
	return end
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
