package hints

import "fmt"

type variant struct {
	family  Family
	tag     uint8
	name    string
	purpose Purpose
	new     func() Hint
}

type variantKey struct {
	family Family
	tag    uint8
}

// variants is the single source of truth for discriminants and names. Name
// and tag lookups in every codec derive from it.
var variants = []variant{
	// Core
	{FamilyCore, uint8(TagAllocSegment), "AllocSegment", PurposeSegment, func() Hint { return new(AllocSegment) }},
	{FamilyCore, uint8(TagTestLessThan), "TestLessThan", PurposeComparison, func() Hint { return new(TestLessThan) }},
	{FamilyCore, uint8(TagTestLessThanOrEqual), "TestLessThanOrEqual", PurposeComparison, func() Hint { return new(TestLessThanOrEqual) }},
	{FamilyCore, uint8(TagWideMul128), "WideMul128", PurposeArithmetic, func() Hint { return new(WideMul128) }},
	{FamilyCore, uint8(TagDivMod), "DivMod", PurposeArithmetic, func() Hint { return new(DivMod) }},
	{FamilyCore, uint8(TagUint256DivMod), "Uint256DivMod", PurposeArithmetic, func() Hint { return new(Uint256DivMod) }},
	{FamilyCore, uint8(TagUint512DivModByUint256), "Uint512DivModByUint256", PurposeArithmetic, func() Hint { return new(Uint512DivModByUint256) }},
	{FamilyCore, uint8(TagSquareRoot), "SquareRoot", PurposeArithmetic, func() Hint { return new(SquareRoot) }},
	{FamilyCore, uint8(TagUint256SquareRoot), "Uint256SquareRoot", PurposeArithmetic, func() Hint { return new(Uint256SquareRoot) }},
	{FamilyCore, uint8(TagLinearSplit), "LinearSplit", PurposeArithmetic, func() Hint { return new(LinearSplit) }},
	{FamilyCore, uint8(TagAllocFelt252Dict), "AllocFelt252Dict", PurposeDict, func() Hint { return new(AllocFelt252Dict) }},
	{FamilyCore, uint8(TagFelt252DictEntryInit), "Felt252DictEntryInit", PurposeDict, func() Hint { return new(Felt252DictEntryInit) }},
	{FamilyCore, uint8(TagFelt252DictEntryUpdate), "Felt252DictEntryUpdate", PurposeDict, func() Hint { return new(Felt252DictEntryUpdate) }},
	{FamilyCore, uint8(TagGetSegmentArenaIndex), "GetSegmentArenaIndex", PurposeDict, func() Hint { return new(GetSegmentArenaIndex) }},
	{FamilyCore, uint8(TagInitSquashData), "InitSquashData", PurposeSquash, func() Hint { return new(InitSquashData) }},
	{FamilyCore, uint8(TagGetCurrentAccessIndex), "GetCurrentAccessIndex", PurposeSquash, func() Hint { return new(GetCurrentAccessIndex) }},
	{FamilyCore, uint8(TagShouldSkipSquashLoop), "ShouldSkipSquashLoop", PurposeSquash, func() Hint { return new(ShouldSkipSquashLoop) }},
	{FamilyCore, uint8(TagGetCurrentAccessDelta), "GetCurrentAccessDelta", PurposeSquash, func() Hint { return new(GetCurrentAccessDelta) }},
	{FamilyCore, uint8(TagShouldContinueSquashLoop), "ShouldContinueSquashLoop", PurposeSquash, func() Hint { return new(ShouldContinueSquashLoop) }},
	{FamilyCore, uint8(TagGetNextDictKey), "GetNextDictKey", PurposeSquash, func() Hint { return new(GetNextDictKey) }},
	{FamilyCore, uint8(TagAssertLeFindSmallArcs), "AssertLeFindSmallArcs", PurposeRangeCheck, func() Hint { return new(AssertLeFindSmallArcs) }},
	{FamilyCore, uint8(TagAssertLeIsFirstArcExcluded), "AssertLeIsFirstArcExcluded", PurposeRangeCheck, func() Hint { return new(AssertLeIsFirstArcExcluded) }},
	{FamilyCore, uint8(TagAssertLeIsSecondArcExcluded), "AssertLeIsSecondArcExcluded", PurposeRangeCheck, func() Hint { return new(AssertLeIsSecondArcExcluded) }},
	{FamilyCore, uint8(TagRandomEcPoint), "RandomEcPoint", PurposeEC, func() Hint { return new(RandomEcPoint) }},
	{FamilyCore, uint8(TagFieldSqrt), "FieldSqrt", PurposeField, func() Hint { return new(FieldSqrt) }},
	{FamilyCore, uint8(TagDebugPrint), "DebugPrint", PurposeDebug, func() Hint { return new(DebugPrint) }},
	{FamilyCore, uint8(TagAllocConstantSize), "AllocConstantSize", PurposeSegment, func() Hint { return new(AllocConstantSize) }},
	{FamilyCore, uint8(TagU256InvModN), "U256InvModN", PurposeArithmetic, func() Hint { return new(U256InvModN) }},
	{FamilyCore, uint8(TagTestLessThanOrEqualAddress), "TestLessThanOrEqualAddress", PurposeComparison, func() Hint { return new(TestLessThanOrEqualAddress) }},
	{FamilyCore, uint8(TagEvalCircuit), "EvalCircuit", PurposeCircuit, func() Hint { return new(EvalCircuit) }},
	// Deprecated
	{FamilyDeprecated, uint8(TagAssertCurrentAccessIndicesIsEmpty), "AssertCurrentAccessIndicesIsEmpty", PurposeSquash, func() Hint { return new(AssertCurrentAccessIndicesIsEmpty) }},
	{FamilyDeprecated, uint8(TagAssertAllAccessesUsed), "AssertAllAccessesUsed", PurposeSquash, func() Hint { return new(AssertAllAccessesUsed) }},
	{FamilyDeprecated, uint8(TagAssertAllKeysUsed), "AssertAllKeysUsed", PurposeSquash, func() Hint { return new(AssertAllKeysUsed) }},
	{FamilyDeprecated, uint8(TagAssertLeAssertThirdArcExcluded), "AssertLeAssertThirdArcExcluded", PurposeRangeCheck, func() Hint { return new(AssertLeAssertThirdArcExcluded) }},
	{FamilyDeprecated, uint8(TagAssertLtAssertValidInput), "AssertLtAssertValidInput", PurposeComparison, func() Hint { return new(AssertLtAssertValidInput) }},
	{FamilyDeprecated, uint8(TagFelt252DictRead), "Felt252DictRead", PurposeDict, func() Hint { return new(Felt252DictRead) }},
	{FamilyDeprecated, uint8(TagFelt252DictWrite), "Felt252DictWrite", PurposeDict, func() Hint { return new(Felt252DictWrite) }},
	// Starknet
	{FamilyStarknet, uint8(TagSystemCall), "SystemCall", PurposeSyscall, func() Hint { return new(SystemCall) }},
	{FamilyStarknet, uint8(TagCheatcode), "Cheatcode", PurposeSyscall, func() Hint { return new(Cheatcode) }},
	// External
	{FamilyExternal, uint8(TagAddRelocationRule), "AddRelocationRule", PurposeTooling, func() Hint { return new(AddRelocationRule) }},
	{FamilyExternal, uint8(TagWriteRunParam), "WriteRunParam", PurposeTooling, func() Hint { return new(WriteRunParam) }},
	{FamilyExternal, uint8(TagAddMarker), "AddMarker", PurposeTooling, func() Hint { return new(AddMarker) }},
	{FamilyExternal, uint8(TagAddTrace), "AddTrace", PurposeTooling, func() Hint { return new(AddTrace) }},
}

var (
	variantsByKey  map[variantKey]*variant
	variantsByName map[string]*variant
)

func init() {
	variantsByKey = make(map[variantKey]*variant, len(variants))
	variantsByName = make(map[string]*variant, len(variants))
	for i := range variants {
		v := &variants[i]
		key := variantKey{family: v.family, tag: v.tag}
		if _, dup := variantsByKey[key]; dup {
			panic(fmt.Sprintf("hints: duplicate tag %d in family %s", v.tag, v.family))
		}
		if _, dup := variantsByName[v.name]; dup {
			panic(fmt.Sprintf("hints: duplicate variant name %s", v.name))
		}
		h := v.new()
		if h.Family() != v.family || h.Tag() != v.tag {
			panic(fmt.Sprintf("hints: %s reports %s/%d, table says %s/%d", v.name, h.Family(), h.Tag(), v.family, v.tag))
		}
		variantsByKey[key] = v
		variantsByName[v.name] = v
	}
}

// unit reports whether the variant carries no fields.
func (v *variant) unit() bool {
	return len(Fields(v.new())) == 0
}

func lookupTag(f Family, tag uint8) (*variant, bool) {
	v, ok := variantsByKey[variantKey{family: f, tag: tag}]
	return v, ok
}

func lookupName(name string) (*variant, bool) {
	v, ok := variantsByName[name]
	return v, ok
}

func variantOf(h Hint) (*variant, bool) {
	if h == nil {
		return nil, false
	}
	return lookupTag(h.Family(), h.Tag())
}

// New returns a zero-valued hint of the named variant.
func New(name string) (Hint, bool) {
	v, ok := lookupName(name)
	if !ok {
		return nil, false
	}
	return v.new(), true
}

// Variants returns every variant name, grouped by family in tag order.
func Variants() []string {
	names := make([]string, len(variants))
	for i := range variants {
		names[i] = variants[i].name
	}
	return names
}
