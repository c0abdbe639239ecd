package text

import (
	"math"
	"strconv"
	"strings"

	"github.com/thingset-io/thingset-core/registry"
)

// Value is a parsed JSON(-extended) value: exactly one field is meaningful,
// selected by Kind, mirroring binary.Item's "decoded item" shape so the
// handler suite can treat both wire encodings uniformly where possible.
type Value struct {
	Kind ValueKind

	Bool   bool
	Int    int64
	Float  float64
	Text   string
	DecM   int64
	DecE   int32
	Array  []Value
	Object []KV // preserves declaration order, unlike a map
}

type KV struct {
	Key   string
	Value Value
}

type ValueKind int

const (
	VKNull ValueKind = iota
	VKBool
	VKInt
	VKFloat
	VKDecFrac
	VKString
	VKArray
	VKObject
	VKUndefined // absent/omitted payload -> discovery request
)

// Parser consumes a bounded token stream and builds a Value tree.
type Parser struct {
	toks []Token
	pos  int
}

func NewParser(toks []Token) *Parser { return &Parser{toks: toks} }

func (p *Parser) AtEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

// ParseValue parses exactly one JSON value from the remaining tokens.
func (p *Parser) ParseValue() (Value, error) {
	tok, ok := p.peek()
	if !ok {
		return Value{}, registry.Newf(registry.ErrKindBadRequest, "expected value, got end of payload")
	}
	switch tok.Kind {
	case TokLBrace:
		return p.parseObject()
	case TokLBracket:
		return p.parseArray()
	case TokString:
		p.pos++
		return Value{Kind: VKString, Text: tok.Text}, nil
	case TokNumber:
		p.pos++
		if strings.ContainsAny(tok.Text, ".eE") {
			return Value{Kind: VKFloat, Float: tok.Float}, nil
		}
		return Value{Kind: VKInt, Int: tok.Int}, nil
	case TokDecFrac:
		p.pos++
		return Value{Kind: VKDecFrac, DecM: tok.DecM, DecE: tok.DecE}, nil
	case TokTrue:
		p.pos++
		return Value{Kind: VKBool, Bool: true}, nil
	case TokFalse:
		p.pos++
		return Value{Kind: VKBool, Bool: false}, nil
	case TokNull:
		p.pos++
		return Value{Kind: VKNull}, nil
	case TokIdent:
		// A bare name/path token used as a FETCH/POST/DELETE payload
		// (e.g. `+.report "Bat_V"` uses a quoted string, but some callers
		// send an unquoted path for convenience); treat it as a string.
		p.pos++
		return Value{Kind: VKString, Text: tok.Text}, nil
	default:
		return Value{}, registry.Newf(registry.ErrKindBadRequest, "unexpected token in payload")
	}
}

func (p *Parser) expect(k TokenKind, what string) error {
	tok, ok := p.peek()
	if !ok || tok.Kind != k {
		return registry.Newf(registry.ErrKindBadRequest, "expected %s", what)
	}
	p.pos++
	return nil
}

func (p *Parser) parseArray() (Value, error) {
	if err := p.expect(TokLBracket, "'['"); err != nil {
		return Value{}, err
	}
	var items []Value
	if tok, ok := p.peek(); ok && tok.Kind == TokRBracket {
		p.pos++
		return Value{Kind: VKArray, Array: items}, nil
	}
	for {
		v, err := p.ParseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		tok, ok := p.peek()
		if !ok {
			return Value{}, registry.Newf(registry.ErrKindBadRequest, "unterminated array")
		}
		if tok.Kind == TokComma {
			p.pos++
			continue
		}
		if tok.Kind == TokRBracket {
			p.pos++
			break
		}
		return Value{}, registry.Newf(registry.ErrKindBadRequest, "expected ',' or ']' in array")
	}
	return Value{Kind: VKArray, Array: items}, nil
}

func (p *Parser) parseObject() (Value, error) {
	if err := p.expect(TokLBrace, "'{'"); err != nil {
		return Value{}, err
	}
	var kvs []KV
	if tok, ok := p.peek(); ok && tok.Kind == TokRBrace {
		p.pos++
		return Value{Kind: VKObject, Object: kvs}, nil
	}
	for {
		keyTok, ok := p.peek()
		if !ok || (keyTok.Kind != TokString && keyTok.Kind != TokIdent) {
			return Value{}, registry.Newf(registry.ErrKindBadRequest, "expected object key")
		}
		p.pos++
		if err := p.expect(TokColon, "':'"); err != nil {
			return Value{}, err
		}
		v, err := p.ParseValue()
		if err != nil {
			return Value{}, err
		}
		kvs = append(kvs, KV{Key: keyTok.Text, Value: v})
		tok, ok := p.peek()
		if !ok {
			return Value{}, registry.Newf(registry.ErrKindBadRequest, "unterminated object")
		}
		if tok.Kind == TokComma {
			p.pos++
			continue
		}
		if tok.Kind == TokRBrace {
			p.pos++
			break
		}
		return Value{}, registry.Newf(registry.ErrKindBadRequest, "expected ',' or '}' in object")
	}
	return Value{Kind: VKObject, Object: kvs}, nil
}

// ParsePayload tokenizes and parses buf as a single value. An empty buf
// (no payload at all) yields VKUndefined, matching the binary codec's
// "undefined value -> discovery" convention.
func ParsePayload(buf []byte, tokenCapacity int) (Value, error) {
	trimmed := strings.TrimSpace(string(buf))
	if trimmed == "" {
		return Value{Kind: VKUndefined}, nil
	}
	toks, err := Tokenize([]byte(trimmed), tokenCapacity)
	if err != nil {
		return Value{}, err
	}
	p := NewParser(toks)
	v, err := p.ParseValue()
	if err != nil {
		return Value{}, err
	}
	if !p.AtEnd() {
		return Value{}, registry.Newf(registry.ErrKindBadRequest, "trailing data after payload")
	}
	return v, nil
}

// --- Rendering ---

// RenderFloat formats v with exactly digits fractional digits; NaN/±Inf
// become the JSON-legal "null".
func RenderFloat(v float64, digits int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "null"
	}
	return strconv.FormatFloat(v, 'f', int(digits), 64)
}

// RenderDecFrac formats a DECFRAC as "m\"e\"e", e.g. "123e-2".
func RenderDecFrac(mantissa int64, exponent int32) string {
	return strconv.FormatInt(mantissa, 10) + "e" + strconv.FormatInt(int64(exponent), 10)
}

// RenderString double-quotes s with no escape-sequence extensions beyond
// what's needed to keep the payload well-formed.
func RenderString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}
