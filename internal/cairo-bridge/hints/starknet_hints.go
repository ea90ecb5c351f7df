package hints

// StarknetTag is the wire discriminant of a StarknetHint variant.
type StarknetTag uint8

// StarknetTag tags.
const (
	TagSystemCall StarknetTag = 0
	TagCheatcode  StarknetTag = 1
)

// SystemCall executes the system call whose request starts at system.
type SystemCall struct {
	System ResOperand
}

// Cheatcode invokes a test cheatcode identified by selector on the input range
// and writes the output range bounds.
type Cheatcode struct {
	Selector    BigIntAsHex
	InputStart  ResOperand
	InputEnd    ResOperand
	OutputStart CellRef
	OutputEnd   CellRef
}

func (*SystemCall) Family() Family { return FamilyStarknet }
func (*SystemCall) Tag() uint8     { return uint8(TagSystemCall) }
func (h *SystemCall) walk(w fieldWalker) {
	w.res("system", &h.System)
}

func (*Cheatcode) Family() Family { return FamilyStarknet }
func (*Cheatcode) Tag() uint8     { return uint8(TagCheatcode) }
func (h *Cheatcode) walk(w fieldWalker) {
	w.bigint("selector", &h.Selector)
	w.res("input_start", &h.InputStart)
	w.res("input_end", &h.InputEnd)
	w.cell("output_start", &h.OutputStart)
	w.cell("output_end", &h.OutputEnd)
}
