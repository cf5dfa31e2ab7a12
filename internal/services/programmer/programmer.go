// Package programmer provides the live edit buffer: a fixture selection plus
// temporary channel values that overlay whatever playback outputs.
package programmer

import (
	"fmt"
	"sort"

	"github.com/bbernstein/lightcore-go/internal/dmx"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// Programmer holds the operator's selection and partial value assignment.
// An unset field means "do not influence this channel".
type Programmer struct {
	selected map[uint32]bool

	Intensity *byte
	R         *byte
	G         *byte
	B         *byte
}

// New returns an empty programmer.
func New() *Programmer {
	return &Programmer{selected: make(map[uint32]bool)}
}

// SelectOne adds a single fixture to the selection.
func (p *Programmer) SelectOne(id uint32) {
	p.selected[id] = true
}

// SelectRange adds the inclusive range [a,b] to the selection. Order of the
// endpoints does not matter.
func (p *Programmer) SelectRange(a, b uint32) {
	if a > b {
		a, b = b, a
	}
	for id := a; ; id++ {
		p.selected[id] = true
		if id == b {
			break
		}
	}
}

// SelectIDs adds a set of fixture IDs to the selection (used for groups).
func (p *Programmer) SelectIDs(ids []uint32) {
	for _, id := range ids {
		p.selected[id] = true
	}
}

// ClearSelection empties the selection without touching values.
func (p *Programmer) ClearSelection() {
	p.selected = make(map[uint32]bool)
}

// ClearValues unsets every value field, leaving the selection intact.
func (p *Programmer) ClearValues() {
	p.Intensity = nil
	p.R = nil
	p.G = nil
	p.B = nil
}

// ClearAll empties both the selection and the values.
func (p *Programmer) ClearAll() {
	p.ClearSelection()
	p.ClearValues()
}

// IsSelected reports whether a fixture is in the selection.
func (p *Programmer) IsSelected(id uint32) bool {
	return p.selected[id]
}

// SelectionEmpty reports whether nothing is selected.
func (p *Programmer) SelectionEmpty() bool {
	return len(p.selected) == 0
}

// Selected returns the selected fixture IDs in ascending order.
func (p *Programmer) Selected() []uint32 {
	ids := make([]uint32, 0, len(p.selected))
	for id := range p.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetIntensityPercent sets intensity from a percentage. Values above 100 are
// clamped, and the 0..100 range scales to 0..255 with integer math.
func (p *Programmer) SetIntensityPercent(pct uint8) {
	if pct > 100 {
		pct = 100
	}
	p.Intensity = show.Level(byte(uint16(pct) * 255 / 100))
}

// SetRGB sets all three color fields.
func (p *Programmer) SetRGB(r, g, b byte) {
	p.R = show.Level(r)
	p.G = show.Level(g)
	p.B = show.Level(b)
}

// Values returns the programmer's current partial assignment.
func (p *Programmer) Values() show.FixtureValues {
	return show.FixtureValues{
		Intensity: p.Intensity,
		R:         p.R,
		G:         p.G,
		B:         p.B,
	}.Clone()
}

// ApplyPalette overwrites the fields the palette carries for its kind.
// Fields the palette leaves unset stay as they were.
func (p *Programmer) ApplyPalette(pal show.Palette) {
	switch pal.Kind {
	case show.PaletteIntensity:
		if pal.Values.Intensity != nil {
			p.Intensity = show.Level(*pal.Values.Intensity)
		}
	case show.PaletteColor:
		if pal.Values.R != nil {
			p.R = show.Level(*pal.Values.R)
		}
		if pal.Values.G != nil {
			p.G = show.Level(*pal.Values.G)
		}
		if pal.Values.B != nil {
			p.B = show.Level(*pal.Values.B)
		}
	}
}

// Render projects the programmer's values onto the selected fixtures'
// channels, producing a LiveState of only the addresses the programmer has an
// opinion on.
func (p *Programmer) Render(s *show.Show) (*dmx.LiveState, error) {
	live := dmx.NewLiveState()

	for _, fixtureID := range p.Selected() {
		f, ok := s.Patch.Fixture(fixtureID)
		if !ok {
			return nil, fmt.Errorf("unknown fixture id %d", fixtureID)
		}
		ft, ok := s.Patch.FixtureTypes[f.FixtureType]
		if !ok {
			return nil, fmt.Errorf("unknown fixture type %q", f.FixtureType)
		}

		for i, ch := range ft.Channels {
			addr := f.Address + uint16(i) // 1-based DMX
			if addr < 1 || addr > dmx.UniverseSize {
				return nil, fmt.Errorf("fixture %d %q maps outside DMX range: U%d @ %d (channel index %d)",
					f.FixtureID, f.Name, f.Universe, f.Address, i)
			}

			var value *byte
			switch ch.Kind {
			case show.ChannelIntensity:
				value = p.Intensity
			case show.ChannelColorR:
				value = p.R
			case show.ChannelColorG:
				value = p.G
			case show.ChannelColorB:
				value = p.B
			}
			if value != nil {
				live.Set(f.Universe, addr, *value)
			}
		}
	}

	return live, nil
}
