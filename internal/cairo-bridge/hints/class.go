package hints

import "fmt"

// Purpose groups hint variants by what they do for the executor. Core and
// deprecated dictionary hints share purposes; neither family is preferred.
type Purpose uint8

const (
	PurposeUnknown Purpose = iota
	PurposeSegment
	PurposeComparison
	PurposeArithmetic
	PurposeDict
	PurposeSquash
	PurposeRangeCheck
	PurposeEC
	PurposeField
	PurposeDebug
	PurposeSyscall
	PurposeTooling
	PurposeCircuit
)

var purposeNames = [...]string{
	PurposeUnknown:    "unknown",
	PurposeSegment:    "segment",
	PurposeComparison: "comparison",
	PurposeArithmetic: "arithmetic",
	PurposeDict:       "dict",
	PurposeSquash:     "squash",
	PurposeRangeCheck: "range-check",
	PurposeEC:         "ec",
	PurposeField:      "field",
	PurposeDebug:      "debug",
	PurposeSyscall:    "syscall",
	PurposeTooling:    "tooling",
	PurposeCircuit:    "circuit",
}

func (p Purpose) String() string {
	if int(p) < len(purposeNames) {
		return purposeNames[p]
	}
	return fmt.Sprintf("Purpose(%d)", uint8(p))
}

// PurposeOf classifies h.
func PurposeOf(h Hint) Purpose {
	v, ok := variantOf(h)
	if !ok {
		return PurposeUnknown
	}
	return v.purpose
}

// ProofBearing reports whether h influences the proven execution. External
// hints only drive tooling.
func ProofBearing(h Hint) bool {
	return h != nil && h.Family() != FamilyExternal
}
