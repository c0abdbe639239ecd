// Package text implements the text (JSON) wire encoding, including the
// decimal-fraction extension (`m"e"e`, e.g. "123e-2") that a strict
// `encoding/json` tokenizer would mis-split. The tokenizer here is
// deliberately small and bounded: it never grows past its configured
// capacity and reports RequestTooLarge instead.
package text

import (
	"strings"

	"github.com/thingset-io/thingset-core/registry"
)

// DefaultTokenCapacity is the parser's token budget when the caller does
// not configure one. Payloads needing more tokens are rejected rather than
// grown over.
const DefaultTokenCapacity = 50

type TokenKind int

const (
	TokLBrace TokenKind = iota
	TokRBrace
	TokLBracket
	TokRBracket
	TokColon
	TokComma
	TokString
	TokNumber
	TokDecFrac // mantissa"e"exponent, e.g. 123e-2, not a plain float token
	TokTrue
	TokFalse
	TokNull
	TokIdent // a bare identifier such as an object name used unquoted
)

type Token struct {
	Kind  TokenKind
	Text  string // raw source text (unescaped strings: content only)
	Int   int64  // valid for TokNumber when the text has no '.' or 'e'
	Float float64
	DecM  int64
	DecE  int32
}

// Tokenize splits buf into at most capacity tokens. Exceeding capacity
// yields registry.ErrRequestTooLarge.
func Tokenize(buf []byte, capacity int) ([]Token, error) {
	if capacity <= 0 {
		capacity = DefaultTokenCapacity
	}
	var toks []Token
	s := string(buf)
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
			continue
		case c == '{':
			toks = append(toks, Token{Kind: TokLBrace})
			i++
		case c == '}':
			toks = append(toks, Token{Kind: TokRBrace})
			i++
		case c == '[':
			toks = append(toks, Token{Kind: TokLBracket})
			i++
		case c == ']':
			toks = append(toks, Token{Kind: TokRBracket})
			i++
		case c == ':':
			toks = append(toks, Token{Kind: TokColon})
			i++
		case c == ',':
			toks = append(toks, Token{Kind: TokComma})
			i++
		case c == '"':
			tok, n, err := scanString(s[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case c == '-' || (c >= '0' && c <= '9'):
			tok, n, err := scanNumber(s[i:])
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case strings.HasPrefix(s[i:], "true"):
			toks = append(toks, Token{Kind: TokTrue})
			i += 4
		case strings.HasPrefix(s[i:], "false"):
			toks = append(toks, Token{Kind: TokFalse})
			i += 5
		case strings.HasPrefix(s[i:], "null"):
			toks = append(toks, Token{Kind: TokNull})
			i += 4
		case isIdentStart(c):
			n := scanIdent(s[i:])
			toks = append(toks, Token{Kind: TokIdent, Text: s[i : i+n]})
			i += n
		default:
			return nil, registry.Newf(registry.ErrKindBadRequest, "unexpected byte %q in payload", c)
		}
		if len(toks) > capacity {
			return nil, registry.ErrRequestTooLarge
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '/'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '.'
}

func scanIdent(s string) int {
	i := 1
	for i < len(s) && isIdentCont(s[i]) {
		i++
	}
	return i
}

func scanString(s string) (Token, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			return Token{Kind: TokString, Text: b.String()}, i + 1, nil
		}
		if c == '\\' && i+1 < len(s) {
			// No escape-sequence extensions; pass the escaped
			// byte through verbatim.
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	return Token{}, 0, registry.Newf(registry.ErrKindBadRequest, "unterminated string literal")
}

// scanNumber scans a standard JSON number, OR a DECFRAC literal (mantissa,
// literal 'e', base-10 exponent) which standard JSON would treat as a
// float in scientific notation. The latter is recognized as its own token
// carrying the separate mantissa/exponent pair rather than collapsed into
// one float64, so DECFRAC round-trips exactly.
func scanNumber(s string) (Token, int, error) {
	i := 0
	if s[i] == '-' {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	mantissaEnd := i
	isFloat := false
	if i < len(s) && s[i] == '.' {
		isFloat = true
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		expStart := i + 1
		j := expStart
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > expStart {
			if !isFloat {
				// Bare mantissa + literal "e" + exponent, no decimal point:
				// this is the DECFRAC convention, not a scientific float.
				mant, err := parseInt(s[:mantissaEnd])
				if err != nil {
					return Token{}, 0, err
				}
				exp, err := parseInt(s[expStart:j])
				if err != nil {
					return Token{}, 0, err
				}
				return Token{Kind: TokDecFrac, Text: s[:j], DecM: mant, DecE: int32(exp)}, j, nil
			}
			i = j
		}
	}
	text := s[:i]
	if !isFloat {
		n, err := parseInt(text)
		if err != nil {
			return Token{}, 0, err
		}
		return Token{Kind: TokNumber, Text: text, Int: n, Float: float64(n)}, i, nil
	}
	f, err := parseFloat(text)
	if err != nil {
		return Token{}, 0, err
	}
	return Token{Kind: TokNumber, Text: text, Float: f}, i, nil
}
