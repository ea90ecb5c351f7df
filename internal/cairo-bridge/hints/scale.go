package hints

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
)

// Outer Hint indexes and CoreHintBase indexes on the binary wire.
const (
	hintIndexCore     byte = 0
	hintIndexStarknet byte = 1
	hintIndexExternal byte = 2

	baseIndexCore       byte = 0
	baseIndexDeprecated byte = 1
)

// BigIntAsHex sign bytes.
const (
	signMinus byte = 0
	signZero  byte = 1
	signPlus  byte = 2
)

// ErrMalformedBinary is returned for any undecodable binary hint payload.
var ErrMalformedBinary = errors.New("malformed binary hint encoding")

// EncodeHint returns the binary encoding of h.
func EncodeHint(h Hint) ([]byte, error) {
	var w scaleWriter
	w.hint(h)
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// DecodeHint decodes exactly one hint; trailing bytes are an error.
func DecodeHint(data []byte) (Hint, error) {
	r := scaleReader{data: data}
	h := r.hint()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return h, nil
}

// EncodeHints encodes a hint list as a compact length followed by the items.
func EncodeHints(hs []Hint) ([]byte, error) {
	var w scaleWriter
	w.compact(uint64(len(hs)))
	for _, h := range hs {
		w.hint(h)
	}
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// DecodeHints reverses EncodeHints.
func DecodeHints(data []byte) ([]Hint, error) {
	r := scaleReader{data: data}
	n := r.length()
	var hs []Hint
	for i := 0; i < n && r.err == nil; i++ {
		hs = append(hs, r.hint())
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return hs, nil
}

// EncodeResOperand returns the binary encoding of a single operand.
func EncodeResOperand(op ResOperand) ([]byte, error) {
	var w scaleWriter
	w.resOperand(op)
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// DecodeResOperand reverses EncodeResOperand.
func DecodeResOperand(data []byte) (ResOperand, error) {
	r := scaleReader{data: data}
	op := r.resOperand()
	if err := r.finish(); err != nil {
		return nil, err
	}
	return op, nil
}

// EncodeBigInt returns the binary encoding of b: a sign byte followed by the
// little-endian magnitude as a byte vector.
func EncodeBigInt(b BigIntAsHex) []byte {
	var w scaleWriter
	w.bigInt(b)
	return w.buf
}

// DecodeBigInt reverses EncodeBigInt.
func DecodeBigInt(data []byte) (BigIntAsHex, error) {
	r := scaleReader{data: data}
	b := r.bigInt()
	if err := r.finish(); err != nil {
		return BigIntAsHex{}, err
	}
	return b, nil
}

type scaleWriter struct {
	buf []byte
	err error
}

func (w *scaleWriter) u8(b byte) {
	w.buf = append(w.buf, b)
}

func (w *scaleWriter) i16(v int16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
}

func (w *scaleWriter) compact(n uint64) {
	switch {
	case n < 1<<6:
		w.u8(byte(n) << 2)
	case n < 1<<14:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(n)<<2|0b01)
	case n < 1<<30:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(n)<<2|0b10)
	default:
		size := (bits.Len64(n) + 7) / 8
		w.u8(byte(size-4)<<2 | 0b11)
		for i := 0; i < size; i++ {
			w.u8(byte(n >> (8 * i)))
		}
	}
}

func (w *scaleWriter) bytes(b []byte) {
	w.compact(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *scaleWriter) cellRef(c CellRef) {
	if c.Register != AP && c.Register != FP {
		w.fail(errors.Errorf("invalid register %d", uint8(c.Register)))
		return
	}
	w.u8(byte(c.Register))
	w.i16(c.Offset)
}

func (w *scaleWriter) bigInt(b BigIntAsHex) {
	v := b.Int()
	switch v.Sign() {
	case -1:
		w.u8(signMinus)
	case 0:
		w.u8(signZero)
	default:
		w.u8(signPlus)
	}
	mag := new(big.Int).Abs(v).Bytes()
	if len(mag) == 0 {
		mag = []byte{0}
	}
	le := make([]byte, len(mag))
	for i := range mag {
		le[len(mag)-1-i] = mag[i]
	}
	w.bytes(le)
}

func (w *scaleWriter) resOperand(op ResOperand) {
	if isNilOperand(op) {
		w.fail(errors.Errorf("nil operand %T", op))
		return
	}
	switch o := op.(type) {
	case *Deref:
		w.u8(ResDeref)
		w.cellRef(o.Cell)
	case *DoubleDeref:
		w.u8(ResDoubleDeref)
		w.cellRef(o.Cell)
		w.i16(o.Offset)
	case *Immediate:
		w.u8(ResImmediate)
		w.bigInt(o.Value)
	case *BinOp:
		w.u8(ResBinOp)
		w.binOp(o.Operand)
	default:
		w.fail(errors.Errorf("unsupported operand %T", op))
	}
}

func (w *scaleWriter) binOp(b BinOpOperand) {
	if b.Op != Add && b.Op != Mul {
		w.fail(errors.Errorf("invalid operation %d", uint8(b.Op)))
		return
	}
	if isNilOperand(b.B) {
		w.fail(errors.Errorf("nil binop operand %T", b.B))
		return
	}
	w.u8(byte(b.Op))
	w.cellRef(b.A)
	switch o := b.B.(type) {
	case *Deref:
		w.u8(OperandDeref)
		w.cellRef(o.Cell)
	case *Immediate:
		w.u8(OperandImmediate)
		w.bigInt(o.Value)
	default:
		w.fail(errors.Errorf("unsupported binop operand %T", b.B))
	}
}

func (w *scaleWriter) hint(h Hint) {
	if _, ok := variantOf(h); !ok {
		w.fail(errors.Errorf("unknown hint %T", h))
		return
	}
	switch h.Family() {
	case FamilyCore:
		w.u8(hintIndexCore)
		w.u8(baseIndexCore)
	case FamilyDeprecated:
		w.u8(hintIndexCore)
		w.u8(baseIndexDeprecated)
	case FamilyStarknet:
		w.u8(hintIndexStarknet)
	case FamilyExternal:
		w.u8(hintIndexExternal)
	}
	w.u8(h.Tag())
	h.walk(w)
}

func (w *scaleWriter) cell(_ string, c *CellRef)      { w.cellRef(*c) }
func (w *scaleWriter) res(_ string, r *ResOperand)    { w.resOperand(*r) }
func (w *scaleWriter) bigint(_ string, b *BigIntAsHex) { w.bigInt(*b) }

func (w *scaleWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

type scaleReader struct {
	data []byte
	pos  int
	err  error
}

func (r *scaleReader) failf(format string, args ...interface{}) {
	if r.err == nil {
		r.err = errors.Wrapf(ErrMalformedBinary, "offset %d: "+format, append([]interface{}{r.pos}, args...)...)
	}
}

func (r *scaleReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.data) {
		r.failf("%d trailing bytes", len(r.data)-r.pos)
		return r.err
	}
	return nil
}

func (r *scaleReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.pos < n {
		r.failf("need %d bytes, have %d", n, len(r.data)-r.pos)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *scaleReader) u8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *scaleReader) i16() int16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *scaleReader) compact() uint64 {
	first := r.u8()
	if r.err != nil {
		return 0
	}
	switch first & 0b11 {
	case 0b00:
		return uint64(first >> 2)
	case 0b01:
		r.pos--
		b := r.take(2)
		if b == nil {
			return 0
		}
		n := uint64(binary.LittleEndian.Uint16(b) >> 2)
		if n < 1<<6 {
			r.failf("non-canonical compact integer")
		}
		return n
	case 0b10:
		r.pos--
		b := r.take(4)
		if b == nil {
			return 0
		}
		n := uint64(binary.LittleEndian.Uint32(b) >> 2)
		if n < 1<<14 {
			r.failf("non-canonical compact integer")
		}
		return n
	default:
		size := int(first>>2) + 4
		if size > 8 {
			r.failf("compact integer of %d bytes overflows u64", size)
			return 0
		}
		b := r.take(size)
		if b == nil {
			return 0
		}
		var n uint64
		for i := size - 1; i >= 0; i-- {
			n = n<<8 | uint64(b[i])
		}
		if n < 1<<30 || b[size-1] == 0 {
			r.failf("non-canonical compact integer")
		}
		return n
	}
}

// length reads a compact length and bounds it by the remaining input.
func (r *scaleReader) length() int {
	n := r.compact()
	if r.err != nil {
		return 0
	}
	if n > uint64(len(r.data)-r.pos) {
		r.failf("length %d exceeds remaining %d bytes", n, len(r.data)-r.pos)
		return 0
	}
	return int(n)
}

func (r *scaleReader) register() Register {
	b := r.u8()
	if r.err == nil && b > byte(FP) {
		r.failf("invalid register index %d", b)
	}
	return Register(b)
}

func (r *scaleReader) cellRef() CellRef {
	reg := r.register()
	off := r.i16()
	return CellRef{Register: reg, Offset: off}
}

func (r *scaleReader) bigInt() BigIntAsHex {
	sign := r.u8()
	le := r.take(r.length())
	if r.err != nil {
		return BigIntAsHex{}
	}
	// The magnitude is minimal: no high zero bytes, and zero is the single byte 0.
	if len(le) == 0 || (len(le) > 1 && le[len(le)-1] == 0) {
		r.failf("non-canonical magnitude of %d bytes", len(le))
		return BigIntAsHex{}
	}
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	v := new(big.Int).SetBytes(be)
	switch sign {
	case signMinus, signPlus:
		if v.Sign() == 0 {
			r.failf("sign %d with zero magnitude", sign)
		}
		if sign == signMinus {
			v.Neg(v)
		}
	case signZero:
		if v.Sign() != 0 {
			r.failf("zero sign with non-zero magnitude")
		}
	default:
		r.failf("invalid sign byte %d", sign)
	}
	return BigIntAsHex{Value: v}
}

func (r *scaleReader) resOperand() ResOperand {
	tag := r.u8()
	if r.err != nil {
		return nil
	}
	switch tag {
	case ResDeref:
		return &Deref{Cell: r.cellRef()}
	case ResDoubleDeref:
		c := r.cellRef()
		return &DoubleDeref{Cell: c, Offset: r.i16()}
	case ResImmediate:
		return &Immediate{Value: r.bigInt()}
	case ResBinOp:
		return &BinOp{Operand: r.binOp()}
	default:
		r.failf("invalid ResOperand index %d", tag)
		return nil
	}
}

func (r *scaleReader) binOp() BinOpOperand {
	var b BinOpOperand
	op := r.u8()
	if r.err == nil && op > byte(Mul) {
		r.failf("invalid operation index %d", op)
	}
	b.Op = Operation(op)
	b.A = r.cellRef()
	tag := r.u8()
	if r.err != nil {
		return b
	}
	switch tag {
	case OperandDeref:
		b.B = &Deref{Cell: r.cellRef()}
	case OperandImmediate:
		b.B = &Immediate{Value: r.bigInt()}
	default:
		r.failf("invalid DerefOrImmediate index %d", tag)
	}
	return b
}

func (r *scaleReader) hint() Hint {
	var family Family
	switch outer := r.u8(); outer {
	case hintIndexCore:
		switch base := r.u8(); base {
		case baseIndexCore:
			family = FamilyCore
		case baseIndexDeprecated:
			family = FamilyDeprecated
		default:
			r.failf("invalid CoreHintBase index %d", base)
		}
	case hintIndexStarknet:
		family = FamilyStarknet
	case hintIndexExternal:
		family = FamilyExternal
	default:
		r.failf("invalid Hint index %d", outer)
	}
	tag := r.u8()
	if r.err != nil {
		return nil
	}
	v, ok := lookupTag(family, tag)
	if !ok {
		r.failf("invalid %s hint index %d", family, tag)
		return nil
	}
	h := v.new()
	h.walk(r)
	if r.err != nil {
		return nil
	}
	return h
}

func (r *scaleReader) cell(_ string, c *CellRef) {
	if r.err == nil {
		*c = r.cellRef()
	}
}

func (r *scaleReader) res(_ string, op *ResOperand) {
	if r.err == nil {
		*op = r.resOperand()
	}
}

func (r *scaleReader) bigint(_ string, b *BigIntAsHex) {
	if r.err == nil {
		*b = r.bigInt()
	}
}
