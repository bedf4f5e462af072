// Package table holds validated, immutable slot descriptor tables.
//
// A Table is the single source of truth for how a Dock's slots are wired. It
// is checked once at construction and never mutated, so one Table may back
// any number of Dock instances.
package table

import (
	"fmt"
	"slices"

	"clixx-go/errcode"
	"clixx-go/types"
)

// Table maps slot ids to descriptors.
type Table struct {
	byID map[types.SlotID]types.Descriptor
	ids  []types.SlotID
}

// New validates descs and returns a frozen table. Any inconsistent row fails
// the whole table with errcode.InvalidTable.
func New(descs ...types.Descriptor) (*Table, error) {
	t := &Table{byID: make(map[types.SlotID]types.Descriptor, len(descs))}
	dirs := make(map[int]dirUse)
	for _, d := range descs {
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, dup := t.byID[d.ID]; dup {
			return nil, invalid(d.ID, "duplicate id")
		}
		for _, u := range d.Pins() {
			if prev, seen := dirs[u.Pin]; seen && prev.dir != u.Dir {
				return nil, invalid(d.ID, fmt.Sprintf("pin %d is %s here but %s for %s", u.Pin, u.Dir, prev.dir, prev.id))
			}
			dirs[u.Pin] = dirUse{id: d.ID, dir: u.Dir}
		}
		t.byID[d.ID] = d
		t.ids = append(t.ids, d.ID)
	}
	slices.SortFunc(t.ids, types.SlotID.Compare)
	return t, nil
}

// MustNew is New for package-level catalogues; it panics on an invalid table.
func MustNew(descs ...types.Descriptor) *Table {
	t, err := New(descs...)
	if err != nil {
		panic(err)
	}
	return t
}

type dirUse struct {
	id  types.SlotID
	dir types.Direction
}

func (t *Table) Lookup(id types.SlotID) (types.Descriptor, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// IDs returns every id in ascending order. The slice is a copy.
func (t *Table) IDs() []types.SlotID { return slices.Clone(t.ids) }

// Descriptors returns every row in id order.
func (t *Table) Descriptors() []types.Descriptor {
	out := make([]types.Descriptor, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.byID[id])
	}
	return out
}

func (t *Table) Len() int { return len(t.ids) }

// Buses returns the distinct bus names referenced by the table, sorted.
func (t *Table) Buses() []string {
	var out []string
	for _, id := range t.ids {
		if b := t.byID[id].Bus; b != "" && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	slices.Sort(out)
	return out
}

func validate(d types.Descriptor) error {
	if !d.ID.Valid() {
		return invalid(d.ID, "invalid id")
	}
	if !d.Interface.Valid() {
		return invalid(d.ID, "unknown interface")
	}
	if d.ID.Kind != d.Interface {
		return invalid(d.ID, fmt.Sprintf("id tag does not match interface %s", d.Interface))
	}
	if d.Size != types.SingleTab && d.Size != types.TwinTab {
		return invalid(d.ID, "unknown size")
	}
	switch d.Interface {
	case types.Digital:
		if !d.Input.Wired() && !d.Output.Wired() {
			return invalid(d.ID, "digital slot needs an input or output pin")
		}
	case types.Analog:
		if !d.Input.Wired() && !d.Output.Wired() {
			return invalid(d.ID, "analog slot needs an input or output pin")
		}
	case types.TwoWire, types.SPI, types.RS232:
		if d.Bus == "" && !d.Aux.Wired() {
			return invalid(d.ID, d.Interface.String()+" slot needs a bus or a bus-enable pin")
		}
	}
	if d.Address != 0 && d.Interface != types.TwoWire {
		return invalid(d.ID, "address is only meaningful for two-wire slots")
	}
	if d.Address > 0x7f {
		return invalid(d.ID, fmt.Sprintf("address 0x%x exceeds 7 bits", d.Address))
	}
	return nil
}

func invalid(id types.SlotID, msg string) error {
	return &errcode.E{C: errcode.InvalidTable, Op: "table " + id.String(), Msg: msg}
}
