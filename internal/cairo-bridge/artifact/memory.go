package artifact

import (
	"github.com/google/btree"

	"github.com/vybium/vybium-cairo-bridge/internal/cairo-bridge/core"
)

const memoryTreeDegree = 32

// Cell is one defined memory address and its value.
type Cell struct {
	Address uint64
	Value   core.Felt
}

func (c Cell) less(o Cell) bool {
	return c.Address < o.Address
}

// Memory is a sparse memory image ordered by address. An absent address is
// undefined, which is different from holding zero.
type Memory struct {
	cells *btree.BTreeG[Cell]
}

// NewMemory creates an empty memory image.
func NewMemory() *Memory {
	return &Memory{cells: btree.NewG(memoryTreeDegree, Cell.less)}
}

// Set defines addr, replacing any previous value.
func (m *Memory) Set(addr uint64, v core.Felt) {
	m.cells.ReplaceOrInsert(Cell{Address: addr, Value: v})
}

// Get returns the value at addr and whether it is defined.
func (m *Memory) Get(addr uint64) (core.Felt, bool) {
	c, ok := m.cells.Get(Cell{Address: addr})
	return c.Value, ok
}

// Has reports whether addr is defined.
func (m *Memory) Has(addr uint64) bool {
	return m.cells.Has(Cell{Address: addr})
}

// Len returns the number of defined addresses.
func (m *Memory) Len() int {
	return m.cells.Len()
}

// Ascend calls fn for every defined cell in increasing address order until fn
// returns false.
func (m *Memory) Ascend(fn func(addr uint64, v core.Felt) bool) {
	m.cells.Ascend(func(c Cell) bool {
		return fn(c.Address, c.Value)
	})
}

// Cells returns all defined cells in increasing address order.
func (m *Memory) Cells() []Cell {
	cells := make([]Cell, 0, m.Len())
	m.cells.Ascend(func(c Cell) bool {
		cells = append(cells, c)
		return true
	})
	return cells
}

// MaxAddress returns the highest defined address.
func (m *Memory) MaxAddress() (uint64, bool) {
	c, ok := m.cells.Max()
	return c.Address, ok
}
