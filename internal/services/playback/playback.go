// Package playback provides cue list playback: a cursor over a cue list,
// tracked and cue-only state evaluation, and timed delay+fade transitions
// driven by caller-supplied time.
package playback

import (
	"fmt"

	"github.com/bbernstein/lightcore-go/internal/dmx"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// Mode selects how the state at a cue number is computed.
type Mode string

const (
	// ModeTracking accumulates deltas from every cue up to the target.
	ModeTracking Mode = "TRACKING"
	// ModeCueOnly uses only the target cue's own changes.
	ModeCueOnly Mode = "CUE_ONLY"
)

// StateMap maps fixture ID to its values at some point in the cue list.
type StateMap map[uint32]show.FixtureValues

// Clone deep-copies a state map.
func (m StateMap) Clone() StateMap {
	out := make(StateMap, len(m))
	for fid, vals := range m {
		out[fid] = vals.Clone()
	}
	return out
}

// transition is a running delay+fade between two fully-resolved looks.
// It is owned uniquely by its Playback; starting a new one replaces it.
type transition struct {
	from      StateMap
	to        StateMap
	elapsedMs uint32
	fadeMs    uint32
	delayMs   uint32
}

// Playback is one playback fader: a cue list name, a cursor, a mode, and an
// optional running transition.
//
// The three states are Idle (current == nil), Steady (current set, no
// transition), and Transitioning (current set, transition set). A transition
// is only ever set together with current, so the impossible
// "no cue but mid-fade" state cannot arise.
type Playback struct {
	cueListName string
	mode        Mode
	current     *uint32
	transition  *transition
}

// New creates an idle playback over the named cue list in Tracking mode.
func New(cueListName string) *Playback {
	return &Playback{
		cueListName: cueListName,
		mode:        ModeTracking,
	}
}

// CueListName returns the cue list this playback runs.
func (p *Playback) CueListName() string {
	return p.cueListName
}

// Mode returns the playback mode.
func (p *Playback) Mode() Mode {
	return p.mode
}

// SetMode switches between Tracking and CueOnly.
func (p *Playback) SetMode(m Mode) {
	p.mode = m
}

// Current returns the cursor cue number, if any.
func (p *Playback) Current() (uint32, bool) {
	if p.current == nil {
		return 0, false
	}
	return *p.current, true
}

// IsTransitioning reports whether a delay/fade is in progress.
func (p *Playback) IsTransitioning() bool {
	return p.transition != nil
}

// TransitionInfo returns (elapsed, delay, fade) for a running transition.
func (p *Playback) TransitionInfo() (elapsedMs, delayMs, fadeMs uint32, ok bool) {
	if p.transition == nil {
		return 0, 0, 0, false
	}
	return p.transition.elapsedMs, p.transition.delayMs, p.transition.fadeMs, true
}

func (p *Playback) cueList(s *show.Show) (*show.CueList, error) {
	cl, ok := s.CueList(p.cueListName)
	if !ok {
		return nil, fmt.Errorf("unknown cue list %q", p.cueListName)
	}
	return cl, nil
}

// TrackedStateAt walks the cues in ascending number order up to and including
// cueNum, applying each cue's deltas. A block cue first erases the
// accumulated entry for every fixture it touches, so nothing tracks through.
// Unset fields in the result mean no cue up to cueNum set that channel.
func (p *Playback) TrackedStateAt(s *show.Show, cueNum uint32) (StateMap, error) {
	cl, err := p.cueList(s)
	if err != nil {
		return nil, err
	}

	tracked := make(StateMap)
	for _, num := range cl.Numbers() {
		if num > cueNum {
			break
		}
		cue := cl.Cues[num]

		if cue.Block {
			for fid := range cue.Changes {
				tracked[fid] = show.FixtureValues{}
			}
		}

		for fid, delta := range cue.Changes {
			vals := tracked[fid]
			vals.ApplyDelta(delta)
			tracked[fid] = vals
		}
	}
	return tracked, nil
}

// CueOnlyStateAt returns a copy of cue cueNum's own changes, or an empty map
// if the cue does not exist. History never contributes.
func (p *Playback) CueOnlyStateAt(s *show.Show, cueNum uint32) (StateMap, error) {
	cl, err := p.cueList(s)
	if err != nil {
		return nil, err
	}
	cue, ok := cl.Cue(cueNum)
	if !ok {
		return make(StateMap), nil
	}
	return StateMap(cue.CloneChanges()), nil
}

// StateMapAt computes the state at cueNum according to the playback mode.
func (p *Playback) StateMapAt(s *show.Show, cueNum uint32) (StateMap, error) {
	if p.mode == ModeCueOnly {
		return p.CueOnlyStateAt(s, cueNum)
	}
	return p.TrackedStateAt(s, cueNum)
}

// StateMap computes the (unresolved) state at the current cue, or an empty
// map when idle.
func (p *Playback) StateMap(s *show.Show) (StateMap, error) {
	if p.current == nil {
		return make(StateMap), nil
	}
	return p.StateMapAt(s, *p.current)
}

// ResolveMap replaces every unset field with 0, making each entry total.
func ResolveMap(m StateMap) StateMap {
	out := make(StateMap, len(m))
	for fid, vals := range m {
		out[fid] = vals.Resolved()
	}
	return out
}

// OutputStateMap returns the momentary visible look of this playback:
// the transition's from-state during the delay, the interpolated state during
// the fade, and otherwise the resolved state at the current cue.
func (p *Playback) OutputStateMap(s *show.Show) (StateMap, error) {
	if tr := p.transition; tr != nil {
		if tr.elapsedMs < tr.delayMs {
			return tr.from.Clone(), nil
		}
		if tr.fadeMs == 0 {
			return tr.to.Clone(), nil
		}
		t := tr.elapsedMs - tr.delayMs
		if t > tr.fadeMs {
			t = tr.fadeMs
		}
		return interpolateMaps(tr.from, tr.to, t, tr.fadeMs), nil
	}

	if p.current == nil {
		return make(StateMap), nil
	}

	raw, err := p.StateMapAt(s, *p.current)
	if err != nil {
		return nil, err
	}
	return ResolveMap(raw), nil
}

// Goto activates a specific cue number, even one absent from the list (the
// cursor still moves; timing is then zero and the state snaps).
func (p *Playback) Goto(s *show.Show, cueNum uint32) error {
	return p.activate(s, cueNum)
}

// Go advances to the next cue: the smallest number strictly greater than the
// cursor, the first cue when idle, or the current cue again when there is no
// successor. An empty list drops to idle. Returns the new cursor, with
// ok=false when the playback went idle.
func (p *Playback) Go(s *show.Show) (uint32, bool, error) {
	cl, err := p.cueList(s)
	if err != nil {
		return 0, false, err
	}

	first, ok := cl.First()
	if !ok {
		p.current = nil
		p.transition = nil
		return 0, false, nil
	}

	target := first
	if p.current != nil {
		if next, ok := cl.NextAfter(*p.current); ok {
			target = next
		} else {
			target = *p.current
		}
	}

	if err := p.activate(s, target); err != nil {
		return 0, false, err
	}
	return target, true, nil
}

// activate moves the cursor to target and starts a transition using the
// target cue's timing. The from-state is captured from the momentary visible
// output before the cursor moves, so chaining Go mid-fade starts the new
// fade from the interpolated look, not the previous target.
func (p *Playback) activate(s *show.Show, target uint32) error {
	from, err := p.OutputStateMap(s)
	if err != nil {
		return err
	}

	cl, err := p.cueList(s)
	if err != nil {
		return err
	}
	var fadeMs, delayMs uint32
	if cue, ok := cl.Cue(target); ok {
		fadeMs, delayMs = cue.FadeMs, cue.DelayMs
	}

	toRaw, err := p.StateMapAt(s, target)
	if err != nil {
		return err
	}
	to := ResolveMap(toRaw)

	cur := target
	p.current = &cur

	if fadeMs == 0 && delayMs == 0 {
		p.transition = nil
		return nil
	}

	p.transition = &transition{
		from:    from,
		to:      to,
		fadeMs:  fadeMs,
		delayMs: delayMs,
	}
	return nil
}

// Tick advances a running transition by dtMs (saturating) and clears it once
// delay+fade has fully elapsed. Callers are expected to clamp large deltas
// at the call site; the engine only guards against overflow.
func (p *Playback) Tick(dtMs uint32) {
	tr := p.transition
	if tr == nil {
		return
	}
	tr.elapsedMs = saturatingAdd(tr.elapsedMs, dtMs)
	doneAt := saturatingAdd(tr.delayMs, tr.fadeMs)
	if tr.elapsedMs >= doneAt {
		p.transition = nil
	}
}

// OnCueDeleted clears the cursor and any transition if the deleted cue is the
// one this playback points at. Deletion is recovered locally, never an error.
func (p *Playback) OnCueDeleted(cueNum uint32) {
	if p.current != nil && *p.current == cueNum {
		p.current = nil
		p.transition = nil
	}
}

// Render projects the playback's momentary output through the patch into a
// LiveState.
func (p *Playback) Render(s *show.Show) (*dmx.LiveState, error) {
	state, err := p.OutputStateMap(s)
	if err != nil {
		return nil, err
	}

	live := dmx.NewLiveState()
	for fid, vals := range state {
		if err := RenderFixtureValues(s, fid, vals, live); err != nil {
			return nil, err
		}
	}
	return live, nil
}

// RenderFixtureValues writes one fixture's set channel values into live at
// the fixture's patched addresses. Channels whose kind has no matching field
// (Pan, Tilt, Other) emit nothing. Addresses outside [1,512] are fatal for
// the render call.
func RenderFixtureValues(s *show.Show, fixtureID uint32, vals show.FixtureValues, live *dmx.LiveState) error {
	f, ok := s.Patch.Fixture(fixtureID)
	if !ok {
		return fmt.Errorf("unknown fixture id %d", fixtureID)
	}
	ft, ok := s.Patch.FixtureTypes[f.FixtureType]
	if !ok {
		return fmt.Errorf("unknown fixture type %q", f.FixtureType)
	}

	for i, ch := range ft.Channels {
		addr := f.Address + uint16(i) // 1-based DMX
		if addr < 1 || addr > dmx.UniverseSize {
			return fmt.Errorf("fixture %d %q maps outside DMX range: U%d @ %d (channel index %d)",
				f.FixtureID, f.Name, f.Universe, f.Address, i)
		}

		var value *byte
		switch ch.Kind {
		case show.ChannelIntensity:
			value = vals.Intensity
		case show.ChannelColorR:
			value = vals.R
		case show.ChannelColorG:
			value = vals.G
		case show.ChannelColorB:
			value = vals.B
		}
		if value != nil {
			live.Set(f.Universe, addr, *value)
		}
	}
	return nil
}

// lerpByte linearly interpolates a->b at time t of dur using signed integer
// math. Truncation toward zero is intentional; dur==0 snaps to b.
func lerpByte(a, b byte, t, dur uint32) byte {
	if dur == 0 {
		return b
	}
	av := int32(a)
	bv := int32(b)
	v := av + (bv-av)*int32(t)/int32(dur)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}

// interpolateMaps lerps every channel of every fixture in from ∪ to. A side
// missing a fixture contributes 0 on every channel; resolved inputs make
// that a non-case in practice.
func interpolateMaps(from, to StateMap, t, dur uint32) StateMap {
	out := make(StateMap)

	zero := show.FixtureValues{}.Resolved()
	seen := make(map[uint32]bool, len(from)+len(to))
	for fid := range from {
		seen[fid] = true
	}
	for fid := range to {
		seen[fid] = true
	}

	for fid := range seen {
		f, ok := from[fid]
		if !ok {
			f = zero
		}
		tt, ok := to[fid]
		if !ok {
			tt = zero
		}

		out[fid] = show.FixtureValues{
			Intensity: show.Level(lerpByte(byteOrZero(f.Intensity), byteOrZero(tt.Intensity), t, dur)),
			R:         show.Level(lerpByte(byteOrZero(f.R), byteOrZero(tt.R), t, dur)),
			G:         show.Level(lerpByte(byteOrZero(f.G), byteOrZero(tt.G), t, dur)),
			B:         show.Level(lerpByte(byteOrZero(f.B), byteOrZero(tt.B), t, dur)),
		}
	}
	return out
}

func byteOrZero(v *byte) byte {
	if v == nil {
		return 0
	}
	return *v
}

func saturatingAdd(a, b uint32) uint32 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint32(0)
}
