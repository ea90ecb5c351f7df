package hints

// CoreTag is the wire discriminant of a CoreHint variant. Values are fixed
// and independent of declaration order.
type CoreTag uint8

// CoreTag tags.
const (
	TagAllocSegment                CoreTag = 0
	TagTestLessThan                CoreTag = 1
	TagTestLessThanOrEqual         CoreTag = 2
	TagWideMul128                  CoreTag = 3
	TagDivMod                      CoreTag = 4
	TagUint256DivMod               CoreTag = 5
	TagUint512DivModByUint256      CoreTag = 6
	TagSquareRoot                  CoreTag = 7
	TagUint256SquareRoot           CoreTag = 8
	TagLinearSplit                 CoreTag = 9
	TagAllocFelt252Dict            CoreTag = 10
	TagFelt252DictEntryInit        CoreTag = 11
	TagFelt252DictEntryUpdate      CoreTag = 12
	TagGetSegmentArenaIndex        CoreTag = 13
	TagInitSquashData              CoreTag = 14
	TagGetCurrentAccessIndex       CoreTag = 15
	TagShouldSkipSquashLoop        CoreTag = 16
	TagGetCurrentAccessDelta       CoreTag = 17
	TagShouldContinueSquashLoop    CoreTag = 18
	TagGetNextDictKey              CoreTag = 19
	TagAssertLeFindSmallArcs       CoreTag = 20
	TagAssertLeIsFirstArcExcluded  CoreTag = 21
	TagAssertLeIsSecondArcExcluded CoreTag = 22
	TagRandomEcPoint               CoreTag = 23
	TagFieldSqrt                   CoreTag = 24
	TagDebugPrint                  CoreTag = 25
	TagAllocConstantSize           CoreTag = 26
	TagU256InvModN                 CoreTag = 27
	TagTestLessThanOrEqualAddress  CoreTag = 28
	TagEvalCircuit                 CoreTag = 29
)

// AllocSegment allocates a new memory segment and writes its base address to dst.
type AllocSegment struct {
	Dst CellRef
}

// TestLessThan writes 1 to dst if lhs < rhs, else 0.
type TestLessThan struct {
	Lhs ResOperand
	Rhs ResOperand
	Dst CellRef
}

// TestLessThanOrEqual writes 1 to dst if lhs <= rhs, else 0.
type TestLessThanOrEqual struct {
	Lhs ResOperand
	Rhs ResOperand
	Dst CellRef
}

// WideMul128 multiplies two 128-bit values: lhs * rhs = high * 2^128 + low.
type WideMul128 struct {
	Lhs  ResOperand
	Rhs  ResOperand
	High CellRef
	Low  CellRef
}

// DivMod computes lhs = quotient * rhs + remainder with remainder < rhs.
// It may write an already assigned cell.
type DivMod struct {
	Lhs       ResOperand
	Rhs       ResOperand
	Quotient  CellRef
	Remainder CellRef
}

// Uint256DivMod divides a 256-bit dividend by a 256-bit divisor, both as two
// 128-bit limbs (limb 0 least significant): dividend = quotient * divisor + remainder.
type Uint256DivMod struct {
	Dividend0  ResOperand
	Dividend1  ResOperand
	Divisor0   ResOperand
	Divisor1   ResOperand
	Quotient0  CellRef
	Quotient1  CellRef
	Remainder0 CellRef
	Remainder1 CellRef
}

// Uint512DivModByUint256 divides a 512-bit dividend (four 128-bit limbs) by a 256-bit
// divisor (two limbs). The quotient has four limbs, the remainder two.
type Uint512DivModByUint256 struct {
	Dividend0  ResOperand
	Dividend1  ResOperand
	Dividend2  ResOperand
	Dividend3  ResOperand
	Divisor0   ResOperand
	Divisor1   ResOperand
	Quotient0  CellRef
	Quotient1  CellRef
	Quotient2  CellRef
	Quotient3  CellRef
	Remainder0 CellRef
	Remainder1 CellRef
}

// SquareRoot writes floor(sqrt(value)) to dst.
type SquareRoot struct {
	Value ResOperand
	Dst   CellRef
}

// Uint256SquareRoot computes the square root of value_low + value_high * 2^128 as two
// 64-bit limbs, the remainder value - sqrt^2 as two 128-bit limbs, and whether
// 2*sqrt - remainder >= 2^128.
type Uint256SquareRoot struct {
	ValueLow                     ResOperand
	ValueHigh                    ResOperand
	Sqrt0                        CellRef
	Sqrt1                        CellRef
	RemainderLow                 CellRef
	RemainderHigh                CellRef
	SqrtMul2MinusRemainderGeU128 CellRef
}

// LinearSplit finds x and y with x * scalar + y = value and x <= max_x.
type LinearSplit struct {
	Value  ResOperand
	Scalar ResOperand
	MaxX   ResOperand
	X      CellRef
	Y      CellRef
}

// AllocFelt252Dict allocates a dict segment and records its start in the dict infos segment.
type AllocFelt252Dict struct {
	SegmentArenaPtr ResOperand
}

// Felt252DictEntryInit fetches the previous value of key and writes it into a new dict access.
type Felt252DictEntryInit struct {
	DictPtr ResOperand
	Key     ResOperand
}

// Felt252DictEntryUpdate updates an existing dict entry without writing the previous value.
type Felt252DictEntryUpdate struct {
	DictPtr ResOperand
	Value   ResOperand
}

// GetSegmentArenaIndex writes the index of the dict ending at dict_end_ptr.
type GetSegmentArenaIndex struct {
	DictEndPtr ResOperand
	DictIndex  CellRef
}

// InitSquashData prepares the per-key access lists consumed by squash_dict.
type InitSquashData struct {
	DictAccesses ResOperand
	PtrDiff      ResOperand
	NAccesses    ResOperand
	BigKeys      CellRef
	FirstKey     CellRef
}

// GetCurrentAccessIndex writes the index of the current dict access to the range check segment.
type GetCurrentAccessIndex struct {
	RangeCheckPtr ResOperand
}

// ShouldSkipSquashLoop writes whether the squash loop should be skipped.
type ShouldSkipSquashLoop struct {
	ShouldSkipLoop CellRef
}

// GetCurrentAccessDelta writes next access index - current access index - 1.
type GetCurrentAccessDelta struct {
	IndexDeltaMinus1 CellRef
}

// ShouldContinueSquashLoop writes whether the squash loop should continue.
type ShouldContinueSquashLoop struct {
	ShouldContinue CellRef
}

// GetNextDictKey writes the next dict key to process.
type GetNextDictKey struct {
	NextKey CellRef
}

// AssertLeFindSmallArcs finds the two small arcs among (0,a), (a,b), (b,P) and writes
// them to the range check segment.
type AssertLeFindSmallArcs struct {
	RangeCheckPtr ResOperand
	A             ResOperand
	B             ResOperand
}

// AssertLeIsFirstArcExcluded writes whether the arc (0,a) was excluded.
type AssertLeIsFirstArcExcluded struct {
	SkipExcludeAFlag CellRef
}

// AssertLeIsSecondArcExcluded writes whether the arc (a,b) was excluded.
type AssertLeIsSecondArcExcluded struct {
	SkipExcludeBMinusA CellRef
}

// RandomEcPoint samples a random point (x, y) on the STARK curve.
type RandomEcPoint struct {
	X CellRef
	Y CellRef
}

// FieldSqrt writes sqrt(val) if val is a quadratic residue, sqrt(3 * val)
// otherwise. Exactly one of the two is a residue unless val is 0.
type FieldSqrt struct {
	Val  ResOperand
	Sqrt CellRef
}

// DebugPrint prints the cells in [start, end). Both operands are pointers.
type DebugPrint struct {
	Start ResOperand
	End   ResOperand
}

// AllocConstantSize writes an address with size free cells after it to dst.
type AllocConstantSize struct {
	Size ResOperand
	Dst  CellRef
}

// U256InvModN provides r = 1/b mod n and k = (r*b - 1)/n with g0_or_no_inv = 0,
// or, when b has no inverse, g > 1 with g*s = b and g*t = n. All values are two
// 128-bit limbs, limb 0 least significant. n = 1 is reported as no inverse with g = 1.
type U256InvModN struct {
	B0        ResOperand
	B1        ResOperand
	N0        ResOperand
	N1        ResOperand
	G0OrNoInv CellRef
	G1Option  CellRef
	SOrR0     CellRef
	SOrR1     CellRef
	TOrK0     CellRef
	TOrK1     CellRef
}

// TestLessThanOrEqualAddress is TestLessThanOrEqual over relocatable addresses.
type TestLessThanOrEqualAddress struct {
	Lhs ResOperand
	Rhs ResOperand
	Dst CellRef
}

// EvalCircuit fills the add_mod and mul_mod builtin instances of a circuit.
type EvalCircuit struct {
	NAddMods      ResOperand
	AddModBuiltin ResOperand
	NMulMods      ResOperand
	MulModBuiltin ResOperand
}

func (*AllocSegment) Family() Family { return FamilyCore }
func (*AllocSegment) Tag() uint8     { return uint8(TagAllocSegment) }
func (h *AllocSegment) walk(w fieldWalker) {
	w.cell("dst", &h.Dst)
}

func (*TestLessThan) Family() Family { return FamilyCore }
func (*TestLessThan) Tag() uint8     { return uint8(TagTestLessThan) }
func (h *TestLessThan) walk(w fieldWalker) {
	w.res("lhs", &h.Lhs)
	w.res("rhs", &h.Rhs)
	w.cell("dst", &h.Dst)
}

func (*TestLessThanOrEqual) Family() Family { return FamilyCore }
func (*TestLessThanOrEqual) Tag() uint8     { return uint8(TagTestLessThanOrEqual) }
func (h *TestLessThanOrEqual) walk(w fieldWalker) {
	w.res("lhs", &h.Lhs)
	w.res("rhs", &h.Rhs)
	w.cell("dst", &h.Dst)
}

func (*WideMul128) Family() Family { return FamilyCore }
func (*WideMul128) Tag() uint8     { return uint8(TagWideMul128) }
func (h *WideMul128) walk(w fieldWalker) {
	w.res("lhs", &h.Lhs)
	w.res("rhs", &h.Rhs)
	w.cell("high", &h.High)
	w.cell("low", &h.Low)
}

func (*DivMod) Family() Family { return FamilyCore }
func (*DivMod) Tag() uint8     { return uint8(TagDivMod) }
func (h *DivMod) walk(w fieldWalker) {
	w.res("lhs", &h.Lhs)
	w.res("rhs", &h.Rhs)
	w.cell("quotient", &h.Quotient)
	w.cell("remainder", &h.Remainder)
}

func (*Uint256DivMod) Family() Family { return FamilyCore }
func (*Uint256DivMod) Tag() uint8     { return uint8(TagUint256DivMod) }
func (h *Uint256DivMod) walk(w fieldWalker) {
	w.res("dividend0", &h.Dividend0)
	w.res("dividend1", &h.Dividend1)
	w.res("divisor0", &h.Divisor0)
	w.res("divisor1", &h.Divisor1)
	w.cell("quotient0", &h.Quotient0)
	w.cell("quotient1", &h.Quotient1)
	w.cell("remainder0", &h.Remainder0)
	w.cell("remainder1", &h.Remainder1)
}

func (*Uint512DivModByUint256) Family() Family { return FamilyCore }
func (*Uint512DivModByUint256) Tag() uint8     { return uint8(TagUint512DivModByUint256) }
func (h *Uint512DivModByUint256) walk(w fieldWalker) {
	w.res("dividend0", &h.Dividend0)
	w.res("dividend1", &h.Dividend1)
	w.res("dividend2", &h.Dividend2)
	w.res("dividend3", &h.Dividend3)
	w.res("divisor0", &h.Divisor0)
	w.res("divisor1", &h.Divisor1)
	w.cell("quotient0", &h.Quotient0)
	w.cell("quotient1", &h.Quotient1)
	w.cell("quotient2", &h.Quotient2)
	w.cell("quotient3", &h.Quotient3)
	w.cell("remainder0", &h.Remainder0)
	w.cell("remainder1", &h.Remainder1)
}

func (*SquareRoot) Family() Family { return FamilyCore }
func (*SquareRoot) Tag() uint8     { return uint8(TagSquareRoot) }
func (h *SquareRoot) walk(w fieldWalker) {
	w.res("value", &h.Value)
	w.cell("dst", &h.Dst)
}

func (*Uint256SquareRoot) Family() Family { return FamilyCore }
func (*Uint256SquareRoot) Tag() uint8     { return uint8(TagUint256SquareRoot) }
func (h *Uint256SquareRoot) walk(w fieldWalker) {
	w.res("value_low", &h.ValueLow)
	w.res("value_high", &h.ValueHigh)
	w.cell("sqrt0", &h.Sqrt0)
	w.cell("sqrt1", &h.Sqrt1)
	w.cell("remainder_low", &h.RemainderLow)
	w.cell("remainder_high", &h.RemainderHigh)
	w.cell("sqrt_mul_2_minus_remainder_ge_u128", &h.SqrtMul2MinusRemainderGeU128)
}

func (*LinearSplit) Family() Family { return FamilyCore }
func (*LinearSplit) Tag() uint8     { return uint8(TagLinearSplit) }
func (h *LinearSplit) walk(w fieldWalker) {
	w.res("value", &h.Value)
	w.res("scalar", &h.Scalar)
	w.res("max_x", &h.MaxX)
	w.cell("x", &h.X)
	w.cell("y", &h.Y)
}

func (*AllocFelt252Dict) Family() Family { return FamilyCore }
func (*AllocFelt252Dict) Tag() uint8     { return uint8(TagAllocFelt252Dict) }
func (h *AllocFelt252Dict) walk(w fieldWalker) {
	w.res("segment_arena_ptr", &h.SegmentArenaPtr)
}

func (*Felt252DictEntryInit) Family() Family { return FamilyCore }
func (*Felt252DictEntryInit) Tag() uint8     { return uint8(TagFelt252DictEntryInit) }
func (h *Felt252DictEntryInit) walk(w fieldWalker) {
	w.res("dict_ptr", &h.DictPtr)
	w.res("key", &h.Key)
}

func (*Felt252DictEntryUpdate) Family() Family { return FamilyCore }
func (*Felt252DictEntryUpdate) Tag() uint8     { return uint8(TagFelt252DictEntryUpdate) }
func (h *Felt252DictEntryUpdate) walk(w fieldWalker) {
	w.res("dict_ptr", &h.DictPtr)
	w.res("value", &h.Value)
}

func (*GetSegmentArenaIndex) Family() Family { return FamilyCore }
func (*GetSegmentArenaIndex) Tag() uint8     { return uint8(TagGetSegmentArenaIndex) }
func (h *GetSegmentArenaIndex) walk(w fieldWalker) {
	w.res("dict_end_ptr", &h.DictEndPtr)
	w.cell("dict_index", &h.DictIndex)
}

func (*InitSquashData) Family() Family { return FamilyCore }
func (*InitSquashData) Tag() uint8     { return uint8(TagInitSquashData) }
func (h *InitSquashData) walk(w fieldWalker) {
	w.res("dict_accesses", &h.DictAccesses)
	w.res("ptr_diff", &h.PtrDiff)
	w.res("n_accesses", &h.NAccesses)
	w.cell("big_keys", &h.BigKeys)
	w.cell("first_key", &h.FirstKey)
}

func (*GetCurrentAccessIndex) Family() Family { return FamilyCore }
func (*GetCurrentAccessIndex) Tag() uint8     { return uint8(TagGetCurrentAccessIndex) }
func (h *GetCurrentAccessIndex) walk(w fieldWalker) {
	w.res("range_check_ptr", &h.RangeCheckPtr)
}

func (*ShouldSkipSquashLoop) Family() Family { return FamilyCore }
func (*ShouldSkipSquashLoop) Tag() uint8     { return uint8(TagShouldSkipSquashLoop) }
func (h *ShouldSkipSquashLoop) walk(w fieldWalker) {
	w.cell("should_skip_loop", &h.ShouldSkipLoop)
}

func (*GetCurrentAccessDelta) Family() Family { return FamilyCore }
func (*GetCurrentAccessDelta) Tag() uint8     { return uint8(TagGetCurrentAccessDelta) }
func (h *GetCurrentAccessDelta) walk(w fieldWalker) {
	w.cell("index_delta_minus1", &h.IndexDeltaMinus1)
}

func (*ShouldContinueSquashLoop) Family() Family { return FamilyCore }
func (*ShouldContinueSquashLoop) Tag() uint8     { return uint8(TagShouldContinueSquashLoop) }
func (h *ShouldContinueSquashLoop) walk(w fieldWalker) {
	w.cell("should_continue", &h.ShouldContinue)
}

func (*GetNextDictKey) Family() Family { return FamilyCore }
func (*GetNextDictKey) Tag() uint8     { return uint8(TagGetNextDictKey) }
func (h *GetNextDictKey) walk(w fieldWalker) {
	w.cell("next_key", &h.NextKey)
}

func (*AssertLeFindSmallArcs) Family() Family { return FamilyCore }
func (*AssertLeFindSmallArcs) Tag() uint8     { return uint8(TagAssertLeFindSmallArcs) }
func (h *AssertLeFindSmallArcs) walk(w fieldWalker) {
	w.res("range_check_ptr", &h.RangeCheckPtr)
	w.res("a", &h.A)
	w.res("b", &h.B)
}

func (*AssertLeIsFirstArcExcluded) Family() Family { return FamilyCore }
func (*AssertLeIsFirstArcExcluded) Tag() uint8     { return uint8(TagAssertLeIsFirstArcExcluded) }
func (h *AssertLeIsFirstArcExcluded) walk(w fieldWalker) {
	w.cell("skip_exclude_a_flag", &h.SkipExcludeAFlag)
}

func (*AssertLeIsSecondArcExcluded) Family() Family { return FamilyCore }
func (*AssertLeIsSecondArcExcluded) Tag() uint8     { return uint8(TagAssertLeIsSecondArcExcluded) }
func (h *AssertLeIsSecondArcExcluded) walk(w fieldWalker) {
	w.cell("skip_exclude_b_minus_a", &h.SkipExcludeBMinusA)
}

func (*RandomEcPoint) Family() Family { return FamilyCore }
func (*RandomEcPoint) Tag() uint8     { return uint8(TagRandomEcPoint) }
func (h *RandomEcPoint) walk(w fieldWalker) {
	w.cell("x", &h.X)
	w.cell("y", &h.Y)
}

func (*FieldSqrt) Family() Family { return FamilyCore }
func (*FieldSqrt) Tag() uint8     { return uint8(TagFieldSqrt) }
func (h *FieldSqrt) walk(w fieldWalker) {
	w.res("val", &h.Val)
	w.cell("sqrt", &h.Sqrt)
}

func (*DebugPrint) Family() Family { return FamilyCore }
func (*DebugPrint) Tag() uint8     { return uint8(TagDebugPrint) }
func (h *DebugPrint) walk(w fieldWalker) {
	w.res("start", &h.Start)
	w.res("end", &h.End)
}

func (*AllocConstantSize) Family() Family { return FamilyCore }
func (*AllocConstantSize) Tag() uint8     { return uint8(TagAllocConstantSize) }
func (h *AllocConstantSize) walk(w fieldWalker) {
	w.res("size", &h.Size)
	w.cell("dst", &h.Dst)
}

func (*U256InvModN) Family() Family { return FamilyCore }
func (*U256InvModN) Tag() uint8     { return uint8(TagU256InvModN) }
func (h *U256InvModN) walk(w fieldWalker) {
	w.res("b0", &h.B0)
	w.res("b1", &h.B1)
	w.res("n0", &h.N0)
	w.res("n1", &h.N1)
	w.cell("g0_or_no_inv", &h.G0OrNoInv)
	w.cell("g1_option", &h.G1Option)
	w.cell("s_or_r0", &h.SOrR0)
	w.cell("s_or_r1", &h.SOrR1)
	w.cell("t_or_k0", &h.TOrK0)
	w.cell("t_or_k1", &h.TOrK1)
}

func (*TestLessThanOrEqualAddress) Family() Family { return FamilyCore }
func (*TestLessThanOrEqualAddress) Tag() uint8     { return uint8(TagTestLessThanOrEqualAddress) }
func (h *TestLessThanOrEqualAddress) walk(w fieldWalker) {
	w.res("lhs", &h.Lhs)
	w.res("rhs", &h.Rhs)
	w.cell("dst", &h.Dst)
}

func (*EvalCircuit) Family() Family { return FamilyCore }
func (*EvalCircuit) Tag() uint8     { return uint8(TagEvalCircuit) }
func (h *EvalCircuit) walk(w fieldWalker) {
	w.res("n_add_mods", &h.NAddMods)
	w.res("add_mod_builtin", &h.AddModBuiltin)
	w.res("n_mul_mods", &h.NMulMods)
	w.res("mul_mod_builtin", &h.MulModBuiltin)
}
