package hints

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedRepr is returned when a debug string cannot be parsed.
var ErrMalformedRepr = errors.New("malformed hint representation")

// Repr renders the canonical debug string of h, for example
//
//	Core(Core(AllocSegment { dst: CellRef { register: AP, offset: 0 } }))
//
// Executors that locate hints by name key them by this string.
func Repr(h Hint) string {
	v, ok := variantOf(h)
	if !ok {
		return "<invalid hint>"
	}
	var w reprWriter
	closing := 1
	switch v.family {
	case FamilyCore:
		w.WriteString("Core(Core(")
		closing = 2
	case FamilyDeprecated:
		w.WriteString("Core(Deprecated(")
		closing = 2
	case FamilyStarknet:
		w.WriteString("Starknet(")
	case FamilyExternal:
		w.WriteString("External(")
	}
	w.WriteString(v.name)
	if !v.unit() {
		w.WriteString(" { ")
		h.walk(&w)
		w.WriteString(" }")
	}
	w.WriteString(strings.Repeat(")", closing))
	return w.String()
}

// ReprResOperand renders the debug string of a single operand.
func ReprResOperand(op ResOperand) string {
	var w reprWriter
	w.resOperand(op)
	return w.String()
}

type reprWriter struct {
	strings.Builder
	n int
}

func (w *reprWriter) key(name string) {
	if w.n > 0 {
		w.WriteString(", ")
	}
	w.n++
	w.WriteString(name)
	w.WriteString(": ")
}

func (w *reprWriter) cellRef(c CellRef) {
	w.WriteString("CellRef { register: ")
	w.WriteString(c.Register.String())
	w.WriteString(", offset: ")
	w.WriteString(strconv.Itoa(int(c.Offset)))
	w.WriteString(" }")
}

func (w *reprWriter) bigInt(b BigIntAsHex) {
	w.WriteString("BigIntAsHex { value: ")
	w.WriteString(b.Decimal())
	w.WriteString(" }")
}

func (w *reprWriter) resOperand(op ResOperand) {
	if isNilOperand(op) {
		w.WriteString("<invalid operand>")
		return
	}
	switch o := op.(type) {
	case *Deref:
		w.WriteString("Deref(")
		w.cellRef(o.Cell)
		w.WriteString(")")
	case *DoubleDeref:
		w.WriteString("DoubleDeref(")
		w.cellRef(o.Cell)
		w.WriteString(", ")
		w.WriteString(strconv.Itoa(int(o.Offset)))
		w.WriteString(")")
	case *Immediate:
		w.WriteString("Immediate(")
		w.bigInt(o.Value)
		w.WriteString(")")
	case *BinOp:
		w.WriteString("BinOp(BinOpOperand { op: ")
		w.WriteString(o.Operand.Op.String())
		w.WriteString(", a: ")
		w.cellRef(o.Operand.A)
		w.WriteString(", b: ")
		w.resOperand(o.Operand.B)
		w.WriteString(" })")
	default:
		w.WriteString("<invalid operand>")
	}
}

func (w *reprWriter) cell(name string, c *CellRef) {
	w.key(name)
	w.cellRef(*c)
}

func (w *reprWriter) res(name string, r *ResOperand) {
	w.key(name)
	w.resOperand(*r)
}

func (w *reprWriter) bigint(name string, b *BigIntAsHex) {
	w.key(name)
	w.bigInt(*b)
}

// ParseRepr parses a string produced by Repr back into a hint.
func ParseRepr(s string) (Hint, error) {
	p, err := newReprParser(s)
	if err != nil {
		return nil, err
	}
	h := p.hint()
	if p.err == nil && p.pos != len(p.toks) {
		p.failf("unexpected %q after hint", p.toks[p.pos].text)
	}
	if p.err != nil {
		return nil, p.err
	}
	return h, nil
}

// ParseReprResOperand parses a string produced by ReprResOperand.
func ParseReprResOperand(s string) (ResOperand, error) {
	p, err := newReprParser(s)
	if err != nil {
		return nil, err
	}
	op := p.resOperand()
	if p.err == nil && p.pos != len(p.toks) {
		p.failf("unexpected %q after operand", p.toks[p.pos].text)
	}
	if p.err != nil {
		return nil, p.err
	}
	return op, nil
}

type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokInt
	tokPunct
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("(){},:", c) >= 0:
			toks = append(toks, token{tokPunct, s[i : i+1]})
			i++
		case c == '-' || isDigit(c):
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if c == '-' && j == i+1 {
				return nil, errors.Wrapf(ErrMalformedRepr, "dangling '-' at %d", i)
			}
			toks = append(toks, token{tokInt, s[i:j]})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && (isIdentStart(s[j]) || isDigit(s[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			return nil, errors.Wrapf(ErrMalformedRepr, "unexpected character %q at %d", c, i)
		}
	}
	return toks, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20) >= 'a' && (c|0x20) <= 'z' }

type reprParser struct {
	toks []token
	pos  int
	err  error
	n    int
}

func newReprParser(s string) (*reprParser, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	return &reprParser{toks: toks}, nil
}

func (p *reprParser) failf(format string, args ...interface{}) {
	if p.err == nil {
		p.err = errors.Wrapf(ErrMalformedRepr, format, args...)
	}
}

func (p *reprParser) next(kind tokenKind) string {
	if p.err != nil {
		return ""
	}
	if p.pos >= len(p.toks) {
		p.failf("unexpected end of input")
		return ""
	}
	t := p.toks[p.pos]
	if t.kind != kind {
		p.failf("unexpected %q", t.text)
		return ""
	}
	p.pos++
	return t.text
}

func (p *reprParser) expect(text string) {
	if p.err != nil {
		return
	}
	if p.pos >= len(p.toks) {
		p.failf("expected %q, got end of input", text)
		return
	}
	if t := p.toks[p.pos]; t.text != text {
		p.failf("expected %q, got %q", text, t.text)
		return
	}
	p.pos++
}

func (p *reprParser) hint() Hint {
	var family Family
	closing := 1
	switch outer := p.next(tokIdent); outer {
	case "Core":
		p.expect("(")
		switch base := p.next(tokIdent); base {
		case "Core":
			family = FamilyCore
		case "Deprecated":
			family = FamilyDeprecated
		default:
			p.failf("unknown hint base %q", base)
		}
		closing = 2
	case "Starknet":
		family = FamilyStarknet
	case "External":
		family = FamilyExternal
	default:
		p.failf("unknown hint group %q", outer)
	}
	p.expect("(")
	name := p.next(tokIdent)
	if p.err != nil {
		return nil
	}
	v, ok := lookupName(name)
	if !ok || v.family != family {
		p.failf("no %s hint named %q", family, name)
		return nil
	}
	h := v.new()
	if !v.unit() {
		p.expect("{")
		h.walk(p)
		p.expect("}")
	}
	for i := 0; i < closing; i++ {
		p.expect(")")
	}
	if p.err != nil {
		return nil
	}
	return h
}

func (p *reprParser) key(name string) {
	if p.n > 0 {
		p.expect(",")
	}
	p.n++
	p.expect(name)
	p.expect(":")
}

func (p *reprParser) i16() int16 {
	text := p.next(tokInt)
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(text, 10, 16)
	if err != nil {
		p.failf("offset %s out of range", text)
		return 0
	}
	return int16(v)
}

func (p *reprParser) cellRef() CellRef {
	var c CellRef
	p.expect("CellRef")
	p.expect("{")
	p.expect("register")
	p.expect(":")
	reg := p.next(tokIdent)
	if p.err == nil {
		r, err := parseRegister(reg)
		if err != nil {
			p.failf("%v", err)
		}
		c.Register = r
	}
	p.expect(",")
	p.expect("offset")
	p.expect(":")
	c.Offset = p.i16()
	p.expect("}")
	return c
}

func (p *reprParser) bigInt() BigIntAsHex {
	p.expect("BigIntAsHex")
	p.expect("{")
	p.expect("value")
	p.expect(":")
	text := p.next(tokInt)
	p.expect("}")
	if p.err != nil {
		return BigIntAsHex{}
	}
	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		p.failf("invalid integer %q", text)
		return BigIntAsHex{}
	}
	return BigIntAsHex{Value: v}
}

func (p *reprParser) resOperand() ResOperand {
	name := p.next(tokIdent)
	p.expect("(")
	var op ResOperand
	switch name {
	case "Deref":
		op = &Deref{Cell: p.cellRef()}
	case "DoubleDeref":
		c := p.cellRef()
		p.expect(",")
		op = &DoubleDeref{Cell: c, Offset: p.i16()}
	case "Immediate":
		op = &Immediate{Value: p.bigInt()}
	case "BinOp":
		var b BinOpOperand
		p.expect("BinOpOperand")
		p.expect("{")
		p.expect("op")
		p.expect(":")
		if opName := p.next(tokIdent); p.err == nil {
			o, err := parseOperation(opName)
			if err != nil {
				p.failf("%v", err)
			}
			b.Op = o
		}
		p.expect(",")
		p.expect("a")
		p.expect(":")
		b.A = p.cellRef()
		p.expect(",")
		p.expect("b")
		p.expect(":")
		if p.err == nil {
			switch rhs := p.resOperand().(type) {
			case *Deref:
				b.B = rhs
			case *Immediate:
				b.B = rhs
			default:
				p.failf("BinOp operand b must be Deref or Immediate")
			}
		}
		p.expect("}")
		op = &BinOp{Operand: b}
	default:
		if p.err == nil {
			p.failf("unknown operand %q", name)
		}
	}
	p.expect(")")
	if p.err != nil {
		return nil
	}
	return op
}

func (p *reprParser) cell(name string, c *CellRef) {
	p.key(name)
	*c = p.cellRef()
}

func (p *reprParser) res(name string, op *ResOperand) {
	p.key(name)
	*op = p.resOperand()
}

func (p *reprParser) bigint(name string, b *BigIntAsHex) {
	p.key(name)
	*b = p.bigInt()
}
