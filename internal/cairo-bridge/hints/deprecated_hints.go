package hints

// DeprecatedTag is the wire discriminant of a DeprecatedHint variant.
type DeprecatedTag uint8

// DeprecatedTag tags.
const (
	TagAssertCurrentAccessIndicesIsEmpty DeprecatedTag = 0
	TagAssertAllAccessesUsed             DeprecatedTag = 1
	TagAssertAllKeysUsed                 DeprecatedTag = 2
	TagAssertLeAssertThirdArcExcluded    DeprecatedTag = 3
	TagAssertLtAssertValidInput          DeprecatedTag = 4
	TagFelt252DictRead                   DeprecatedTag = 5
	TagFelt252DictWrite                  DeprecatedTag = 6
)

// AssertCurrentAccessIndicesIsEmpty asserts the current access indices list is empty.
type AssertCurrentAccessIndicesIsEmpty struct{}

// AssertAllAccessesUsed asserts n_used_accesses equals the length of the original accesses list.
type AssertAllAccessesUsed struct {
	NUsedAccesses CellRef
}

// AssertAllKeysUsed asserts the keys list is empty.
type AssertAllKeysUsed struct{}

// AssertLeAssertThirdArcExcluded asserts the arc (b, P) was excluded.
type AssertLeAssertThirdArcExcluded struct{}

// AssertLtAssertValidInput asserts a and b are integers and a < b.
type AssertLtAssertValidInput struct {
	A ResOperand
	B ResOperand
}

// Felt252DictRead reads the value of key in the dict at dict_ptr into value_dst.
type Felt252DictRead struct {
	DictPtr  ResOperand
	Key      ResOperand
	ValueDst CellRef
}

// Felt252DictWrite sets key to value in the dict at dict_ptr.
type Felt252DictWrite struct {
	DictPtr ResOperand
	Key     ResOperand
	Value   ResOperand
}

func (*AssertCurrentAccessIndicesIsEmpty) Family() Family   { return FamilyDeprecated }
func (*AssertCurrentAccessIndicesIsEmpty) Tag() uint8       { return uint8(TagAssertCurrentAccessIndicesIsEmpty) }
func (*AssertCurrentAccessIndicesIsEmpty) walk(fieldWalker) {}

func (*AssertAllAccessesUsed) Family() Family { return FamilyDeprecated }
func (*AssertAllAccessesUsed) Tag() uint8     { return uint8(TagAssertAllAccessesUsed) }
func (h *AssertAllAccessesUsed) walk(w fieldWalker) {
	w.cell("n_used_accesses", &h.NUsedAccesses)
}

func (*AssertAllKeysUsed) Family() Family   { return FamilyDeprecated }
func (*AssertAllKeysUsed) Tag() uint8       { return uint8(TagAssertAllKeysUsed) }
func (*AssertAllKeysUsed) walk(fieldWalker) {}

func (*AssertLeAssertThirdArcExcluded) Family() Family   { return FamilyDeprecated }
func (*AssertLeAssertThirdArcExcluded) Tag() uint8       { return uint8(TagAssertLeAssertThirdArcExcluded) }
func (*AssertLeAssertThirdArcExcluded) walk(fieldWalker) {}

func (*AssertLtAssertValidInput) Family() Family { return FamilyDeprecated }
func (*AssertLtAssertValidInput) Tag() uint8     { return uint8(TagAssertLtAssertValidInput) }
func (h *AssertLtAssertValidInput) walk(w fieldWalker) {
	w.res("a", &h.A)
	w.res("b", &h.B)
}

func (*Felt252DictRead) Family() Family { return FamilyDeprecated }
func (*Felt252DictRead) Tag() uint8     { return uint8(TagFelt252DictRead) }
func (h *Felt252DictRead) walk(w fieldWalker) {
	w.res("dict_ptr", &h.DictPtr)
	w.res("key", &h.Key)
	w.cell("value_dst", &h.ValueDst)
}

func (*Felt252DictWrite) Family() Family { return FamilyDeprecated }
func (*Felt252DictWrite) Tag() uint8     { return uint8(TagFelt252DictWrite) }
func (h *Felt252DictWrite) walk(w fieldWalker) {
	w.res("dict_ptr", &h.DictPtr)
	w.res("key", &h.Key)
	w.res("value", &h.Value)
}
