package hints

// ExternalTag is the wire discriminant of an ExternalHint variant. External
// hints drive tooling and carry no proof obligation.
type ExternalTag uint8

// ExternalTag tags.
const (
	TagAddRelocationRule ExternalTag = 0
	TagWriteRunParam     ExternalTag = 1
	TagAddMarker         ExternalTag = 2
	TagAddTrace          ExternalTag = 3
)

// AddRelocationRule relocates the segment at src to dst.
type AddRelocationRule struct {
	Src ResOperand
	Dst ResOperand
}

// WriteRunParam writes run argument number index to dst and on.
type WriteRunParam struct {
	Index ResOperand
	Dst   CellRef
}

// AddMarker stores an array marker for debugging.
type AddMarker struct {
	Start ResOperand
	End   ResOperand
}

// AddTrace records a trace call with the given flag.
type AddTrace struct {
	Flag ResOperand
}

func (*AddRelocationRule) Family() Family { return FamilyExternal }
func (*AddRelocationRule) Tag() uint8     { return uint8(TagAddRelocationRule) }
func (h *AddRelocationRule) walk(w fieldWalker) {
	w.res("src", &h.Src)
	w.res("dst", &h.Dst)
}

func (*WriteRunParam) Family() Family { return FamilyExternal }
func (*WriteRunParam) Tag() uint8     { return uint8(TagWriteRunParam) }
func (h *WriteRunParam) walk(w fieldWalker) {
	w.res("index", &h.Index)
	w.cell("dst", &h.Dst)
}

func (*AddMarker) Family() Family { return FamilyExternal }
func (*AddMarker) Tag() uint8     { return uint8(TagAddMarker) }
func (h *AddMarker) walk(w fieldWalker) {
	w.res("start", &h.Start)
	w.res("end", &h.End)
}

func (*AddTrace) Family() Family { return FamilyExternal }
func (*AddTrace) Tag() uint8     { return uint8(TagAddTrace) }
func (h *AddTrace) walk(w fieldWalker) {
	w.res("flag", &h.Flag)
}
