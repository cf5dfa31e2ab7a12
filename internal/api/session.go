// Package api exposes the console over HTTP: a REST command surface and a
// WebSocket stream of rendered output frames.
package api

import (
	"log"
	"sync"
	"time"

	"github.com/bbernstein/lightcore-go/internal/dmx"
	"github.com/bbernstein/lightcore-go/internal/services/output"
	"github.com/bbernstein/lightcore-go/internal/services/pubsub"
	"github.com/bbernstein/lightcore-go/internal/services/runtime"
)

// OutputPoint is one nonzero DMX value in a rendered frame.
type OutputPoint struct {
	Universe uint16 `json:"universe"`
	Address  uint16 `json:"address"`
	Value    byte   `json:"value"`
}

// OutputFrame is the payload published on every rendered frame.
type OutputFrame struct {
	Points []OutputPoint `json:"points"`
}

// Session owns one Runtime and serializes all access to it. The core is
// single-threaded by contract, so every HTTP handler and the tick loop go
// through the session's lock.
type Session struct {
	mu sync.Mutex
	rt *runtime.Runtime

	ps  *pubsub.PubSub
	out *output.Service // nil when Art-Net output is disabled

	maxTickDelta time.Duration
	lastTick     time.Time

	stopChan chan struct{}
	running  bool
}

// NewSession creates a session over a runtime. out may be nil.
func NewSession(rt *runtime.Runtime, ps *pubsub.PubSub, out *output.Service, maxTickDelta time.Duration) *Session {
	if maxTickDelta <= 0 {
		maxTickDelta = 100 * time.Millisecond
	}
	return &Session{
		rt:           rt,
		ps:           ps,
		out:          out,
		maxTickDelta: maxTickDelta,
		stopChan:     make(chan struct{}),
	}
}

// Do runs fn with exclusive access to the runtime.
func (s *Session) Do(fn func(rt *runtime.Runtime) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.rt)
}

// Start begins the tick loop at rateHz.
func (s *Session) Start(rateHz int) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.lastTick = time.Now()
	s.mu.Unlock()

	if rateHz <= 0 {
		rateHz = 40
	}
	go s.loop(time.Second / time.Duration(rateHz))
}

// Stop halts the tick loop.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()
}

// loop measures real frame deltas, clamps them so a stall cannot skip an
// entire fade, advances the transitions, and pushes the rendered frame out.
func (s *Session) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			dt := now.Sub(s.lastTick)
			s.lastTick = now
			if dt < 0 {
				dt = 0
			}
			if dt > s.maxTickDelta {
				dt = s.maxTickDelta
			}

			s.rt.Tick(uint32(dt.Milliseconds()))
			live, err := s.rt.Render()
			s.mu.Unlock()

			if err != nil {
				log.Printf("render error: %v", err)
				continue
			}
			s.publishFrame(live)
		}
	}
}

// publishFrame mirrors a rendered frame to the Art-Net output and pubsub.
func (s *Session) publishFrame(live *dmx.LiveState) {
	if s.out != nil {
		s.out.PushFrame(live)
	}
	if s.ps != nil {
		s.ps.Publish(pubsub.TopicOutputChanged, frameFromLiveState(live))
	}
}

// Render produces a frame on demand (outside the tick loop) and publishes it.
func (s *Session) Render() (*OutputFrame, error) {
	s.mu.Lock()
	live, err := s.rt.Render()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.publishFrame(live)
	return frameFromLiveState(live), nil
}

func frameFromLiveState(live *dmx.LiveState) *OutputFrame {
	nz := live.Nonzero()
	frame := &OutputFrame{Points: make([]OutputPoint, 0, len(nz))}
	for _, p := range nz {
		frame.Points = append(frame.Points, OutputPoint{
			Universe: p.Universe,
			Address:  p.Address,
			Value:    p.Value,
		})
	}
	return frame
}
