package show

import "sort"

// Cue is a recorded change set with optional timing. Changes are tracking
// style: each entry only says what this cue alters for that fixture.
type Cue struct {
	Number  uint32 `json:"number"`
	Label   string `json:"label"`
	Block   bool   `json:"block,omitempty"`
	FadeMs  uint32 `json:"fade_ms,omitempty"`
	DelayMs uint32 `json:"delay_ms,omitempty"`

	// Changes maps fixture ID to the delta this cue records. An empty map is
	// legal: the cue is then a pure timing marker.
	Changes map[uint32]FixtureValues `json:"changes"`
}

// CloneChanges returns a deep copy of the cue's change map.
func (c *Cue) CloneChanges() map[uint32]FixtureValues {
	out := make(map[uint32]FixtureValues, len(c.Changes))
	for fid, vals := range c.Changes {
		out[fid] = vals.Clone()
	}
	return out
}

// CueList is an ordered set of cues keyed by cue number.
type CueList struct {
	Cues map[uint32]Cue `json:"cues"`
}

// NewCueList returns an empty cue list with an initialized map.
func NewCueList() *CueList {
	return &CueList{Cues: make(map[uint32]Cue)}
}

// Numbers returns the cue numbers in ascending order. Playback and tracking
// both depend on this ordering.
func (cl *CueList) Numbers() []uint32 {
	nums := make([]uint32, 0, len(cl.Cues))
	for n := range cl.Cues {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Cue looks up a cue by number.
func (cl *CueList) Cue(number uint32) (Cue, bool) {
	c, ok := cl.Cues[number]
	return c, ok
}

// Put inserts or replaces a cue under its own number.
func (cl *CueList) Put(c Cue) {
	if cl.Cues == nil {
		cl.Cues = make(map[uint32]Cue)
	}
	cl.Cues[c.Number] = c
}

// Delete removes a cue by number and reports whether it existed.
func (cl *CueList) Delete(number uint32) bool {
	if _, ok := cl.Cues[number]; !ok {
		return false
	}
	delete(cl.Cues, number)
	return true
}

// NextAfter returns the smallest cue number strictly greater than n.
func (cl *CueList) NextAfter(n uint32) (uint32, bool) {
	for _, num := range cl.Numbers() {
		if num > n {
			return num, true
		}
	}
	return 0, false
}

// First returns the lowest cue number in the list.
func (cl *CueList) First() (uint32, bool) {
	nums := cl.Numbers()
	if len(nums) == 0 {
		return 0, false
	}
	return nums[0], true
}
