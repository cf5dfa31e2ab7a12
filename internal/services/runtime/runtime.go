// Package runtime orchestrates the console: two playbacks, the programmer,
// the HTP/LTP merge between them, and the final projection to DMX.
package runtime

import (
	"github.com/bbernstein/lightcore-go/internal/dmx"
	"github.com/bbernstein/lightcore-go/internal/services/playback"
	"github.com/bbernstein/lightcore-go/internal/services/programmer"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// PlaybackID selects one of the runtime's two playbacks.
type PlaybackID string

const (
	PlaybackA PlaybackID = "A"
	PlaybackB PlaybackID = "B"
)

// Runtime is one operator session over a show: playbacks A and B (both on
// the "main" cue list by default), the programmer buffer, and the record
// timing defaults new cues pick up.
type Runtime struct {
	Show       *show.Show
	Programmer *programmer.Programmer

	playbackA *playback.Playback
	playbackB *playback.Playback
	active    PlaybackID

	recFadeMs  uint32
	recDelayMs uint32
}

// New creates a runtime over a show with both playbacks on "main" and
// playback A active.
func New(s *show.Show) *Runtime {
	return &Runtime{
		Show:       s,
		Programmer: programmer.New(),
		playbackA:  playback.New(show.MainCueList),
		playbackB:  playback.New(show.MainCueList),
		active:     PlaybackA,
		recFadeMs:  1000,
	}
}

// Playback returns the selected playback. Callers get one handle at a time;
// there is never a reason to hold A and B simultaneously.
func (r *Runtime) Playback(id PlaybackID) *playback.Playback {
	if id == PlaybackB {
		return r.playbackB
	}
	return r.playbackA
}

// ActivePlayback returns which playback transport and record commands target.
func (r *Runtime) ActivePlayback() PlaybackID {
	return r.active
}

// SelectPlayback switches the active playback.
func (r *Runtime) SelectPlayback(id PlaybackID) {
	if id == PlaybackB {
		r.active = PlaybackB
	} else {
		r.active = PlaybackA
	}
}

func (r *Runtime) activePB() *playback.Playback {
	return r.Playback(r.active)
}

// Tick advances both playbacks' transitions by dtMs.
func (r *Runtime) Tick(dtMs uint32) {
	r.playbackA.Tick(dtMs)
	r.playbackB.Tick(dtMs)
}

// Render produces the final DMX frame: playback A merged with playback B
// (intensity HTP, color LTP with B winning), projected through the patch,
// then the programmer overlaid on top.
func (r *Runtime) Render() (*dmx.LiveState, error) {
	a, err := r.playbackA.OutputStateMap(r.Show)
	if err != nil {
		return nil, err
	}
	b, err := r.playbackB.OutputStateMap(r.Show)
	if err != nil {
		return nil, err
	}

	merged := MergeStateMaps(a, b)

	live := dmx.NewLiveState()
	for fid, vals := range merged {
		if err := playback.RenderFixtureValues(r.Show, fid, vals, live); err != nil {
			return nil, err
		}
	}

	prog, err := r.Programmer.Render(r.Show)
	if err != nil {
		return nil, err
	}
	live.Overlay(prog)

	return live, nil
}

// MergeStateMaps merges two playback outputs per fixture over the union of
// their keys. Intensity is HTP: the larger value wins, with unset treated as
// 0 unless both sides are unset (then the merge stays unset). R/G/B are LTP
// with B as the later writer: B's value when set, else A's.
func MergeStateMaps(a, b playback.StateMap) playback.StateMap {
	out := make(playback.StateMap, len(a)+len(b))

	seen := make(map[uint32]bool, len(a)+len(b))
	for fid := range a {
		seen[fid] = true
	}
	for fid := range b {
		seen[fid] = true
	}

	for fid := range seen {
		va := a[fid]
		vb := b[fid]

		var merged show.FixtureValues

		if va.Intensity != nil || vb.Intensity != nil {
			ia := byteOrZero(va.Intensity)
			ib := byteOrZero(vb.Intensity)
			if ib > ia {
				ia = ib
			}
			merged.Intensity = show.Level(ia)
		}

		merged.R = pickLTP(va.R, vb.R)
		merged.G = pickLTP(va.G, vb.G)
		merged.B = pickLTP(va.B, vb.B)

		out[fid] = merged
	}
	return out
}

// pickLTP returns b when set, else a; the result is cloned so the merged map
// never aliases either input.
func pickLTP(a, b *byte) *byte {
	if b != nil {
		return show.Level(*b)
	}
	if a != nil {
		return show.Level(*a)
	}
	return nil
}

func byteOrZero(v *byte) byte {
	if v == nil {
		return 0
	}
	return *v
}
