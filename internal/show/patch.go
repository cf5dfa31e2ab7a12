package show

import (
	"fmt"
	"sort"
)

// ChannelKind categorizes what a fixture channel controls. Only intensity and
// the three color channels are rendered; the rest exist in the model and emit
// nothing.
type ChannelKind string

const (
	ChannelIntensity ChannelKind = "INTENSITY"
	ChannelColorR    ChannelKind = "COLOR_R"
	ChannelColorG    ChannelKind = "COLOR_G"
	ChannelColorB    ChannelKind = "COLOR_B"
	ChannelPan       ChannelKind = "PAN"
	ChannelTilt      ChannelKind = "TILT"
	ChannelOther     ChannelKind = "OTHER"
)

// ChannelDef is one channel in a fixture type. Its position in the type's
// channel list is its DMX offset.
type ChannelDef struct {
	Name string      `json:"name"`
	Kind ChannelKind `json:"kind"`
}

// FixtureType describes a fixture model in a simplified way.
type FixtureType struct {
	TypeID       string       `json:"type_id"`
	Manufacturer string       `json:"manufacturer"`
	Model        string       `json:"model"`
	Channels     []ChannelDef `json:"channels"`
}

// FixtureInstance is a fixture patched at a universe/address.
type FixtureInstance struct {
	FixtureID   uint32 `json:"fixture_id"`
	Name        string `json:"name"`
	FixtureType string `json:"fixture_type"`
	Universe    uint16 `json:"universe"`
	Address     uint16 `json:"address"` // 1-based DMX
}

// Patch holds fixture instances plus the fixture types they reference.
// In a pro console the type library is huge; here it starts tiny.
type Patch struct {
	FixtureTypes map[string]FixtureType     `json:"fixture_types"`
	Fixtures     map[uint32]FixtureInstance `json:"fixtures"`
}

// NewPatch returns an empty patch with initialized maps.
func NewPatch() Patch {
	return Patch{
		FixtureTypes: make(map[string]FixtureType),
		Fixtures:     make(map[uint32]FixtureInstance),
	}
}

// AddFixtureType registers or replaces a fixture type.
func (p *Patch) AddFixtureType(ft FixtureType) {
	if p.FixtureTypes == nil {
		p.FixtureTypes = make(map[string]FixtureType)
	}
	p.FixtureTypes[ft.TypeID] = ft
}

// AddFixture patches a fixture. It fails if the fixture ID is taken or the
// fixture type is not registered.
func (p *Patch) AddFixture(f FixtureInstance) error {
	if p.Fixtures == nil {
		p.Fixtures = make(map[uint32]FixtureInstance)
	}
	if _, exists := p.Fixtures[f.FixtureID]; exists {
		return fmt.Errorf("fixture ID %d already exists", f.FixtureID)
	}
	if _, ok := p.FixtureTypes[f.FixtureType]; !ok {
		return fmt.Errorf("unknown fixture type %q, add the type first", f.FixtureType)
	}
	p.Fixtures[f.FixtureID] = f
	return nil
}

// Fixture looks up a patched fixture by ID.
func (p *Patch) Fixture(id uint32) (FixtureInstance, bool) {
	f, ok := p.Fixtures[id]
	return f, ok
}

// FixtureIDs returns the patched fixture IDs in ascending order.
func (p *Patch) FixtureIDs() []uint32 {
	ids := make([]uint32, 0, len(p.Fixtures))
	for id := range p.Fixtures {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
