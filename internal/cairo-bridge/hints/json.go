package hints

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// ErrMalformedText is returned for any undecodable text hint payload.
var ErrMalformedText = errors.New("malformed text hint encoding")

// MarshalHint returns the text encoding of h. Variants are tagged by name
// only; the family is implied because names are unique across families.
// Unit variants encode as a bare string.
func MarshalHint(h Hint) ([]byte, error) {
	v, ok := variantOf(h)
	if !ok {
		return nil, errors.Errorf("unknown hint %T", h)
	}
	name, _ := json.Marshal(v.name)
	if v.unit() {
		return name, nil
	}

	w := jsonWriter{}
	w.buf.WriteByte('{')
	w.buf.Write(name)
	w.buf.WriteString(":{")
	h.walk(&w)
	w.buf.WriteString("}}")
	if w.err != nil {
		return nil, errors.Wrapf(w.err, "encode %s", v.name)
	}
	return w.buf.Bytes(), nil
}

// UnmarshalHint reverses MarshalHint.
func UnmarshalHint(data []byte) (Hint, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return nil, errors.Wrap(ErrMalformedText, err.Error())
		}
		v, ok := lookupName(name)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedText, "unknown hint variant %q", name)
		}
		if !v.unit() {
			return nil, errors.Wrapf(ErrMalformedText, "hint variant %s has fields", name)
		}
		return v.new(), nil
	}

	name, body, err := singleKey(data)
	if err != nil {
		return nil, err
	}
	v, ok := lookupName(name)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedText, "unknown hint variant %q", name)
	}
	if v.unit() {
		return nil, errors.Wrapf(ErrMalformedText, "hint variant %s takes no fields", name)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, errors.Wrapf(ErrMalformedText, "%s: fields must be an object", name)
	}
	h := v.new()
	r := jsonReader{fields: fields}
	h.walk(&r)
	if r.err == nil && r.used != len(fields) {
		r.err = errors.Wrapf(ErrMalformedText, "unknown field in %v", sortedKeys(fields))
	}
	if r.err != nil {
		return nil, errors.Wrapf(r.err, "decode %s", name)
	}
	return h, nil
}

// MarshalResOperand returns the text encoding of a single operand.
func MarshalResOperand(op ResOperand) ([]byte, error) {
	if isNilOperand(op) {
		return nil, errors.Errorf("nil operand %T", op)
	}
	switch o := op.(type) {
	case *Deref:
		c, err := marshalCellRef(o.Cell)
		if err != nil {
			return nil, err
		}
		return tagged("Deref", c), nil
	case *DoubleDeref:
		c, err := marshalCellRef(o.Cell)
		if err != nil {
			return nil, err
		}
		body := append([]byte{'['}, c...)
		body = append(body, ',')
		body = append(body, mustJSON(o.Offset)...)
		body = append(body, ']')
		return tagged("DoubleDeref", body), nil
	case *Immediate:
		return tagged("Immediate", mustJSON(o.Value)), nil
	case *BinOp:
		if o.Operand.Op != Add && o.Operand.Op != Mul {
			return nil, errors.Errorf("invalid operation %d", uint8(o.Operand.Op))
		}
		a, err := marshalCellRef(o.Operand.A)
		if err != nil {
			return nil, err
		}
		var b []byte
		switch rhs := o.Operand.B.(type) {
		case *Deref, *Immediate:
			if b, err = MarshalResOperand(rhs); err != nil {
				return nil, err
			}
		default:
			return nil, errors.Errorf("unsupported binop operand %T", o.Operand.B)
		}
		var body bytes.Buffer
		body.WriteString(`{"op":`)
		body.Write(mustJSON(o.Operand.Op.String()))
		body.WriteString(`,"a":`)
		body.Write(a)
		body.WriteString(`,"b":`)
		body.Write(b)
		body.WriteByte('}')
		return tagged("BinOp", body.Bytes()), nil
	default:
		return nil, errors.Errorf("unsupported operand %T", op)
	}
}

func marshalCellRef(c CellRef) ([]byte, error) {
	if c.Register != AP && c.Register != FP {
		return nil, errors.Errorf("invalid register %d", uint8(c.Register))
	}
	return mustJSON(c), nil
}

// UnmarshalResOperand reverses MarshalResOperand.
func UnmarshalResOperand(data []byte) (ResOperand, error) {
	name, body, err := singleKey(data)
	if err != nil {
		return nil, err
	}
	switch name {
	case "Deref":
		c, err := unmarshalCellRef(body)
		if err != nil {
			return nil, err
		}
		return &Deref{Cell: c}, nil
	case "DoubleDeref":
		var parts []json.RawMessage
		if err := json.Unmarshal(body, &parts); err != nil || len(parts) != 2 {
			return nil, errors.Wrap(ErrMalformedText, "DoubleDeref must be [cell, offset]")
		}
		c, err := unmarshalCellRef(parts[0])
		if err != nil {
			return nil, err
		}
		var off int16
		if err := json.Unmarshal(parts[1], &off); err != nil {
			return nil, errors.Wrapf(ErrMalformedText, "DoubleDeref offset: %v", err)
		}
		return &DoubleDeref{Cell: c, Offset: off}, nil
	case "Immediate":
		var v BigIntAsHex
		if err := v.UnmarshalJSON(body); err != nil {
			return nil, errors.Wrap(ErrMalformedText, err.Error())
		}
		return &Immediate{Value: v}, nil
	case "BinOp":
		return unmarshalBinOp(body)
	default:
		return nil, errors.Wrapf(ErrMalformedText, "unknown operand variant %q", name)
	}
}

func unmarshalBinOp(body []byte) (ResOperand, error) {
	var payload struct {
		Op *string         `json:"op"`
		A  json.RawMessage `json:"a"`
		B  json.RawMessage `json:"b"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Wrapf(ErrMalformedText, "BinOp: %v", err)
	}
	if payload.Op == nil || payload.A == nil || payload.B == nil {
		return nil, errors.Wrap(ErrMalformedText, "BinOp needs op, a and b")
	}
	op, err := parseOperation(*payload.Op)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedText, err.Error())
	}
	a, err := unmarshalCellRef(payload.A)
	if err != nil {
		return nil, err
	}
	rhs, err := UnmarshalResOperand(payload.B)
	if err != nil {
		return nil, err
	}
	b, ok := rhs.(DerefOrImmediate)
	if !ok {
		return nil, errors.Wrap(ErrMalformedText, "BinOp operand b must be Deref or Immediate")
	}
	return &BinOp{Operand: BinOpOperand{Op: op, A: a, B: b}}, nil
}

func unmarshalCellRef(data []byte) (CellRef, error) {
	var raw struct {
		Register *Register `json:"register"`
		Offset   *int16    `json:"offset"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return CellRef{}, errors.Wrapf(ErrMalformedText, "CellRef: %v", err)
	}
	if raw.Register == nil || raw.Offset == nil {
		return CellRef{}, errors.Wrap(ErrMalformedText, "CellRef needs register and offset")
	}
	return CellRef{Register: *raw.Register, Offset: *raw.Offset}, nil
}

// singleKey splits an externally tagged {"Name": body} object.
func singleKey(data []byte) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, errors.Wrapf(ErrMalformedText, "expected tagged object: %v", err)
	}
	if len(obj) != 1 {
		return "", nil, errors.Wrapf(ErrMalformedText, "expected exactly one variant key, got %d", len(obj))
	}
	for k, v := range obj {
		return k, v, nil
	}
	return "", nil, nil
}

func tagged(name string, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"`)
	buf.WriteString(name)
	buf.WriteString(`":`)
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes()
}

// mustJSON marshals values whose encoding cannot fail.
func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type jsonWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *jsonWriter) key(name string) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.n++
	w.buf.Write(mustJSON(name))
	w.buf.WriteByte(':')
}

func (w *jsonWriter) cell(name string, c *CellRef) {
	b, err := marshalCellRef(*c)
	if err != nil {
		w.fail(errors.Wrap(err, name))
		return
	}
	w.key(name)
	w.buf.Write(b)
}

func (w *jsonWriter) res(name string, r *ResOperand) {
	b, err := MarshalResOperand(*r)
	if err != nil {
		w.fail(errors.Wrap(err, name))
		return
	}
	w.key(name)
	w.buf.Write(b)
}

func (w *jsonWriter) bigint(name string, b *BigIntAsHex) {
	w.key(name)
	w.buf.Write(mustJSON(*b))
}

func (w *jsonWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

type jsonReader struct {
	fields map[string]json.RawMessage
	used   int
	err    error
}

func (r *jsonReader) field(name string) (json.RawMessage, bool) {
	if r.err != nil {
		return nil, false
	}
	raw, ok := r.fields[name]
	if !ok {
		r.err = errors.Wrapf(ErrMalformedText, "missing field %q", name)
		return nil, false
	}
	r.used++
	return raw, true
}

func (r *jsonReader) cell(name string, c *CellRef) {
	raw, ok := r.field(name)
	if !ok {
		return
	}
	v, err := unmarshalCellRef(raw)
	if err != nil {
		r.err = errors.Wrap(err, name)
		return
	}
	*c = v
}

func (r *jsonReader) res(name string, op *ResOperand) {
	raw, ok := r.field(name)
	if !ok {
		return
	}
	v, err := UnmarshalResOperand(raw)
	if err != nil {
		r.err = errors.Wrap(err, name)
		return
	}
	*op = v
}

func (r *jsonReader) bigint(name string, b *BigIntAsHex) {
	raw, ok := r.field(name)
	if !ok {
		return
	}
	if err := b.UnmarshalJSON(raw); err != nil {
		r.err = errors.Wrap(errors.Wrap(ErrMalformedText, err.Error()), name)
	}
}

// HintJSON wraps a Hint so it can sit inside encoding/json structures.
type HintJSON struct {
	Hint Hint
}

// MarshalJSON implements json.Marshaler.
func (h HintJSON) MarshalJSON() ([]byte, error) {
	return MarshalHint(h.Hint)
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HintJSON) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalHint(data)
	if err != nil {
		return err
	}
	h.Hint = v
	return nil
}
