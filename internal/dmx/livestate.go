// Package dmx holds the rendered output model: a sparse map of DMX points.
package dmx

import "sort"

// UniverseSize is the number of channels per DMX universe.
const UniverseSize = 512

// Point is one nonzero DMX value at a universe/address.
type Point struct {
	Universe uint16
	Address  uint16 // 1-based
	Value    byte
}

// LiveState is a sparse universe -> (address -> value) map. An absent address
// reads as 0 at render time.
type LiveState struct {
	universes map[uint16]map[uint16]byte
}

// NewLiveState returns an empty state.
func NewLiveState() *LiveState {
	return &LiveState{universes: make(map[uint16]map[uint16]byte)}
}

// Set inserts or overwrites one point.
func (ls *LiveState) Set(universe, address uint16, value byte) {
	if ls.universes == nil {
		ls.universes = make(map[uint16]map[uint16]byte)
	}
	addrs, ok := ls.universes[universe]
	if !ok {
		addrs = make(map[uint16]byte)
		ls.universes[universe] = addrs
	}
	addrs[address] = value
}

// Get reads a point, with absence reading as 0.
func (ls *LiveState) Get(universe, address uint16) byte {
	return ls.universes[universe][address]
}

// Overlay writes every point of top into ls. Top wins; addresses top never
// touched are preserved.
func (ls *LiveState) Overlay(top *LiveState) {
	if top == nil {
		return
	}
	for u, addrs := range top.universes {
		for addr, val := range addrs {
			ls.Set(u, addr, val)
		}
	}
}

// Nonzero enumerates every point with a nonzero value, ordered by
// (universe, address) ascending.
func (ls *LiveState) Nonzero() []Point {
	var out []Point
	for _, u := range ls.Universes() {
		addrs := ls.universes[u]
		sorted := make([]uint16, 0, len(addrs))
		for addr := range addrs {
			sorted = append(sorted, addr)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		for _, addr := range sorted {
			if v := addrs[addr]; v != 0 {
				out = append(out, Point{Universe: u, Address: addr, Value: v})
			}
		}
	}
	return out
}

// Universes returns the universe numbers with at least one written point,
// ascending.
func (ls *LiveState) Universes() []uint16 {
	out := make([]uint16, 0, len(ls.universes))
	for u := range ls.universes {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UniverseChannels flattens one universe into a dense 512-byte frame, for
// output transports that want full universes.
func (ls *LiveState) UniverseChannels(universe uint16) []byte {
	frame := make([]byte, UniverseSize)
	for addr, v := range ls.universes[universe] {
		if addr >= 1 && addr <= UniverseSize {
			frame[addr-1] = v
		}
	}
	return frame
}
