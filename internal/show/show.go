// Package show defines the show document: patch, palettes, cue lists, and
// groups, plus its JSON persistence. The document is pure data; all playback
// and rendering behavior lives in the service packages.
package show

import "sort"

// MainCueList is the cue list every show is guaranteed to have.
const MainCueList = "main"

// Show is the top-level document we save and load.
type Show struct {
	Name     string              `json:"name"`
	Patch    Patch               `json:"patch"`
	Palettes map[string]Palette  `json:"palettes"`
	CueLists map[string]*CueList `json:"cue_lists"`
	Groups   map[string][]uint32 `json:"groups"`
}

// New creates an empty show seeded with the default fixture library and the
// "main" cue list.
func New(name string) *Show {
	s := &Show{
		Name:     name,
		Patch:    NewPatch(),
		Palettes: make(map[string]Palette),
		CueLists: make(map[string]*CueList),
		Groups:   make(map[string][]uint32),
	}
	for _, ft := range DefaultFixtureTypes() {
		s.Patch.AddFixtureType(ft)
	}
	s.CueLists[MainCueList] = NewCueList()
	return s
}

// EnsureDefaults initializes any nil maps and guarantees the "main" cue list
// exists. Called after loading a document from disk.
func (s *Show) EnsureDefaults() {
	if s.Patch.FixtureTypes == nil {
		s.Patch.FixtureTypes = make(map[string]FixtureType)
	}
	if s.Patch.Fixtures == nil {
		s.Patch.Fixtures = make(map[uint32]FixtureInstance)
	}
	if s.Palettes == nil {
		s.Palettes = make(map[string]Palette)
	}
	if s.CueLists == nil {
		s.CueLists = make(map[string]*CueList)
	}
	if s.Groups == nil {
		s.Groups = make(map[string][]uint32)
	}
	for name, cl := range s.CueLists {
		if cl == nil {
			s.CueLists[name] = NewCueList()
		} else if cl.Cues == nil {
			cl.Cues = make(map[uint32]Cue)
		}
	}
	if _, ok := s.CueLists[MainCueList]; !ok {
		s.CueLists[MainCueList] = NewCueList()
	}
}

// CueList returns a cue list by name.
func (s *Show) CueList(name string) (*CueList, bool) {
	cl, ok := s.CueLists[name]
	return cl, ok
}

// SetGroup records a group as a sorted, deduplicated fixture ID set.
func (s *Show) SetGroup(name string, fixtureIDs []uint32) {
	if s.Groups == nil {
		s.Groups = make(map[string][]uint32)
	}
	seen := make(map[uint32]bool, len(fixtureIDs))
	ids := make([]uint32, 0, len(fixtureIDs))
	for _, id := range fixtureIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	s.Groups[name] = ids
}

// Group returns a group's fixture IDs in ascending order.
func (s *Show) Group(name string) ([]uint32, bool) {
	ids, ok := s.Groups[name]
	return ids, ok
}

// GroupNames returns group names in ascending order.
func (s *Show) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for name := range s.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
