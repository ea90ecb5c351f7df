package hints

import (
	"sort"

	"github.com/pkg/errors"
)

// Registry maps each hint's debug string and program offset to the hint.
// Executors that receive hints by name only dispatch through it. It is
// built once per program and read-only afterwards.
type Registry struct {
	byRepr   map[string]Hint
	byOffset map[int][]Hint
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byRepr:   make(map[string]Hint),
		byOffset: make(map[int][]Hint),
	}
}

// Add registers the hints attached to offset. An offset may only be added once.
func (r *Registry) Add(offset int, hs ...Hint) error {
	if offset < 0 {
		return errors.Errorf("negative hint offset %d", offset)
	}
	if _, dup := r.byOffset[offset]; dup {
		return errors.Errorf("hints already registered at offset %d", offset)
	}
	for _, h := range hs {
		if _, ok := variantOf(h); !ok {
			return errors.Errorf("unknown hint %T at offset %d", h, offset)
		}
	}
	for _, h := range hs {
		r.byRepr[Repr(h)] = h
	}
	r.byOffset[offset] = append([]Hint(nil), hs...)
	return nil
}

// Lookup returns the hint whose debug string is repr. A string that differs
// from the canonical rendering only in spacing resolves to the same hint.
func (r *Registry) Lookup(repr string) (Hint, bool) {
	if h, ok := r.byRepr[repr]; ok {
		return h, true
	}
	parsed, err := ParseRepr(repr)
	if err != nil {
		return nil, false
	}
	h, ok := r.byRepr[Repr(parsed)]
	return h, ok
}

// At returns the hints attached to offset, in execution order.
func (r *Registry) At(offset int) []Hint {
	return r.byOffset[offset]
}

// Offsets returns every offset carrying hints, ascending.
func (r *Registry) Offsets() []int {
	offsets := make([]int, 0, len(r.byOffset))
	for off := range r.byOffset {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)
	return offsets
}

// Len returns the number of distinct hints.
func (r *Registry) Len() int {
	return len(r.byRepr)
}
