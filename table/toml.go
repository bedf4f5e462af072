package table

import (
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"

	"clixx-go/types"
)

// fileTable is the on-disk wiring format:
//
//	[[slot]]
//	id     = "D0"
//	size   = "single"
//	input  = 22
//	output = 18
//
//	[[slot]]
//	id      = "T0"
//	bus     = "i2c1"
//	address = 0x38
//
// The interface is implied by the id's tag letter. Omitted pins are unwired.
type fileTable struct {
	Slots []fileSlot `toml:"slot"`
}

type fileSlot struct {
	ID      string `toml:"id"`
	Size    string `toml:"size"`
	Input   *int   `toml:"input"`
	Aux     *int   `toml:"aux"`
	Output  *int   `toml:"output"`
	Bus     string `toml:"bus"`
	Address uint16 `toml:"address"`
}

// Decode reads a TOML wiring table.
func Decode(r io.Reader) (*Table, error) {
	var raw fileTable
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode slot table: %w", err)
	}
	return fromFile(raw)
}

// LoadFile reads a TOML wiring table from path.
func LoadFile(path string) (*Table, error) {
	var raw fileTable
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("load slot table %s: %w", path, err)
	}
	return fromFile(raw)
}

func fromFile(raw fileTable) (*Table, error) {
	descs := make([]types.Descriptor, 0, len(raw.Slots))
	for i, s := range raw.Slots {
		id, err := types.ParseSlotID(s.ID)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		size, err := types.ParseSize(s.Size)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", id, err)
		}
		d := types.Descriptor{
			ID:        id,
			Interface: id.Kind,
			Size:      size,
			Bus:       s.Bus,
			Address:   s.Address,
		}
		if d.Input, err = pinOf(id, "input", s.Input); err != nil {
			return nil, err
		}
		if d.Aux, err = pinOf(id, "aux", s.Aux); err != nil {
			return nil, err
		}
		if d.Output, err = pinOf(id, "output", s.Output); err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return New(descs...)
}

// pinOf maps an optional file pin; an omitted key is unwired.
func pinOf(id types.SlotID, field string, n *int) (types.Pin, error) {
	if n == nil {
		return types.NoPin, nil
	}
	if *n < 0 || *n > math.MaxUint16 {
		return types.NoPin, invalid(id, fmt.Sprintf("%s pin %d out of range", field, *n))
	}
	return types.P(*n), nil
}
