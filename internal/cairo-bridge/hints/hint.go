package hints

import "fmt"

// Family is the top-level group a hint variant belongs to. Core and
// Deprecated together form the core hint base.
type Family uint8

const (
	FamilyCore Family = iota
	FamilyDeprecated
	FamilyStarknet
	FamilyExternal
)

func (f Family) String() string {
	switch f {
	case FamilyCore:
		return "Core"
	case FamilyDeprecated:
		return "Deprecated"
	case FamilyStarknet:
		return "Starknet"
	case FamilyExternal:
		return "External"
	default:
		return fmt.Sprintf("Family(%d)", uint8(f))
	}
}

// Hint is a non-deterministic advice instruction attached to a program
// offset. Hints write memory cells; they never redirect control flow.
type Hint interface {
	// Family returns the group the variant belongs to.
	Family() Family
	// Tag returns the variant's wire discriminant within its family.
	Tag() uint8

	walk(w fieldWalker)
}

// fieldWalker visits the fields of a variant in declaration order. The
// binary, text and debug codecs are all walkers.
type fieldWalker interface {
	cell(name string, c *CellRef)
	res(name string, r *ResOperand)
	bigint(name string, b *BigIntAsHex)
}

// Name returns the variant name of h, e.g. "AllocSegment".
func Name(h Hint) string {
	v, ok := variantOf(h)
	if !ok {
		return fmt.Sprintf("%T", h)
	}
	return v.name
}

// Fields returns the snake_case field names of h in declaration order.
func Fields(h Hint) []string {
	var c fieldCollector
	h.walk(&c)
	return c.names
}

type fieldCollector struct {
	names []string
}

func (c *fieldCollector) cell(name string, _ *CellRef)      { c.names = append(c.names, name) }
func (c *fieldCollector) res(name string, _ *ResOperand)    { c.names = append(c.names, name) }
func (c *fieldCollector) bigint(name string, _ *BigIntAsHex) { c.names = append(c.names, name) }
