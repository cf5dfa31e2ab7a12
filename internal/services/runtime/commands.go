package runtime

import (
	"fmt"

	"github.com/bbernstein/lightcore-go/internal/services/playback"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// RecordMode selects what a recorded or updated cue captures.
type RecordMode string

const (
	// RecordTrack records only the programmer's deltas for the selection.
	RecordTrack RecordMode = "track"
	// RecordOnly records the full visible look for the selection: the active
	// playback's momentary output (mid-fade included) with the programmer
	// overlaid, every field resolved.
	RecordOnly RecordMode = "only"
)

// AddFixtureType registers a fixture type in the show's patch.
func (r *Runtime) AddFixtureType(ft show.FixtureType) {
	r.Show.Patch.AddFixtureType(ft)
}

// AddFixture patches a fixture. Duplicate IDs and unknown types fail.
func (r *Runtime) AddFixture(f show.FixtureInstance) error {
	return r.Show.Patch.AddFixture(f)
}

// SelectGroup adds a recorded group's fixtures to the selection.
func (r *Runtime) SelectGroup(name string) error {
	ids, ok := r.Show.Group(name)
	if !ok {
		return fmt.Errorf("unknown group %q", name)
	}
	r.Programmer.SelectIDs(ids)
	return nil
}

// RecordGroup stores the current selection under a group name.
func (r *Runtime) RecordGroup(name string) error {
	if r.Programmer.SelectionEmpty() {
		return fmt.Errorf("no fixtures selected")
	}
	r.Show.SetGroup(name, r.Programmer.Selected())
	return nil
}

// ApplyPalette applies a named palette to the programmer.
func (r *Runtime) ApplyPalette(name string) error {
	pal, ok := r.Show.Palettes[name]
	if !ok {
		return fmt.Errorf("unknown palette %q", name)
	}
	r.Programmer.ApplyPalette(pal)
	return nil
}

// RecordPalette snapshots the programmer's values of the given kind into a
// named palette. An intensity palette takes only intensity; a color palette
// takes only r/g/b.
func (r *Runtime) RecordPalette(name string, kind show.PaletteKind) error {
	vals := r.Programmer.Values()
	pal := show.Palette{Kind: kind}
	switch kind {
	case show.PaletteIntensity:
		pal.Values.Intensity = vals.Intensity
	case show.PaletteColor:
		pal.Values.R = vals.R
		pal.Values.G = vals.G
		pal.Values.B = vals.B
	default:
		return fmt.Errorf("unknown palette kind %q", kind)
	}
	if pal.Values.IsAllNone() {
		return fmt.Errorf("no %s values in programmer to record", kind)
	}
	r.Show.Palettes[name] = pal
	return nil
}

// SetRecordTiming sets the fade/delay applied to newly recorded cues.
func (r *Runtime) SetRecordTiming(fadeMs, delayMs uint32) {
	r.recFadeMs = fadeMs
	r.recDelayMs = delayMs
}

// RecordTiming returns the current record fade/delay defaults.
func (r *Runtime) RecordTiming() (fadeMs, delayMs uint32) {
	return r.recFadeMs, r.recDelayMs
}

func (r *Runtime) activeCueList() (*show.CueList, error) {
	name := r.activePB().CueListName()
	cl, ok := r.Show.CueList(name)
	if !ok {
		return nil, fmt.Errorf("unknown cue list %q", name)
	}
	return cl, nil
}

// buildChanges computes a cue's change map from the selection per mode. The
// "only" snapshot starts from the active playback's momentary visible output
// (unset reads as 0) and overlays the programmer's set fields, so every field
// of each snapshot is set.
func (r *Runtime) buildChanges(mode RecordMode) (map[uint32]show.FixtureValues, error) {
	if r.Programmer.SelectionEmpty() {
		return nil, fmt.Errorf("nothing selected")
	}

	changes := make(map[uint32]show.FixtureValues)
	switch mode {
	case RecordTrack:
		delta := r.Programmer.Values()
		if delta.IsAllNone() {
			return nil, fmt.Errorf("no values in programmer to record")
		}
		for _, fid := range r.Programmer.Selected() {
			changes[fid] = delta.Clone()
		}
	case RecordOnly:
		visible, err := r.activePB().OutputStateMap(r.Show)
		if err != nil {
			return nil, err
		}
		progVals := r.Programmer.Values()
		for _, fid := range r.Programmer.Selected() {
			snap := visible[fid].Resolved()
			snap.ApplyDelta(progVals)
			changes[fid] = snap
		}
	default:
		return nil, fmt.Errorf("unknown record mode %q, use track|only", mode)
	}
	return changes, nil
}

// RecordCue records a new cue (or replaces an existing number) in the active
// playback's cue list, using the session record timing.
func (r *Runtime) RecordCue(number uint32, label string, mode RecordMode) error {
	changes, err := r.buildChanges(mode)
	if err != nil {
		return err
	}

	cl, err := r.activeCueList()
	if err != nil {
		return err
	}

	if label == "" {
		label = fmt.Sprintf("Cue %d", number)
	}
	cl.Put(show.Cue{
		Number:  number,
		Label:   label,
		FadeMs:  r.recFadeMs,
		DelayMs: r.recDelayMs,
		Changes: changes,
	})
	return nil
}

// UpdateCue replaces each selected fixture's entry in an existing cue's
// changes with the newly built values, leaving its label, timing, and the
// entries of unselected fixtures as they are.
func (r *Runtime) UpdateCue(number uint32, mode RecordMode) error {
	changes, err := r.buildChanges(mode)
	if err != nil {
		return err
	}

	cl, err := r.activeCueList()
	if err != nil {
		return err
	}
	cue, ok := cl.Cue(number)
	if !ok {
		return fmt.Errorf("cue %d not found", number)
	}

	if cue.Changes == nil {
		cue.Changes = make(map[uint32]show.FixtureValues)
	}
	for fid, vals := range changes {
		cue.Changes[fid] = vals
	}
	cl.Put(cue)
	return nil
}

// DeleteCue removes a cue from the active playback's cue list and clears the
// cursor of any playback that pointed at it.
func (r *Runtime) DeleteCue(number uint32) error {
	cl, err := r.activeCueList()
	if err != nil {
		return err
	}
	if !cl.Delete(number) {
		return fmt.Errorf("cue %d not found", number)
	}

	name := r.activePB().CueListName()
	if r.playbackA.CueListName() == name {
		r.playbackA.OnCueDeleted(number)
	}
	if r.playbackB.CueListName() == name {
		r.playbackB.OnCueDeleted(number)
	}
	return nil
}

// SetCueBlock sets or clears a cue's block flag.
func (r *Runtime) SetCueBlock(number uint32, block bool) error {
	cl, err := r.activeCueList()
	if err != nil {
		return err
	}
	cue, ok := cl.Cue(number)
	if !ok {
		return fmt.Errorf("cue %d not found", number)
	}
	cue.Block = block
	cl.Put(cue)
	return nil
}

// SetCueTiming updates an existing cue's fade/delay.
func (r *Runtime) SetCueTiming(number uint32, fadeMs, delayMs uint32) error {
	cl, err := r.activeCueList()
	if err != nil {
		return err
	}
	cue, ok := cl.Cue(number)
	if !ok {
		return fmt.Errorf("cue %d not found", number)
	}
	cue.FadeMs = fadeMs
	cue.DelayMs = delayMs
	cl.Put(cue)
	return nil
}

// SetPlaybackMode sets a playback's tracking/cue-only mode.
func (r *Runtime) SetPlaybackMode(id PlaybackID, mode playback.Mode) {
	r.Playback(id).SetMode(mode)
}

// GotoCue activates a cue number on the active playback.
func (r *Runtime) GotoCue(number uint32) error {
	return r.activePB().Goto(r.Show, number)
}

// GoNext advances the active playback.
func (r *Runtime) GoNext() (uint32, bool, error) {
	return r.activePB().Go(r.Show)
}
