// Package output broadcasts rendered DMX frames over Art-Net. The core
// render pipeline owns the channel values; this service only mirrors the
// latest frame onto the wire with an adaptive transmission rate.
package output

import (
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bbernstein/lightcore-go/internal/dmx"
	"github.com/bbernstein/lightcore-go/internal/services/network"
	"github.com/bbernstein/lightcore-go/pkg/artnet"
)

// Config holds output service configuration.
type Config struct {
	Enabled          bool
	BroadcastAddr    string
	Port             int
	RefreshRateHz    int
	IdleRateHz       int
	HighRateDuration time.Duration
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		BroadcastAddr:    "",
		Port:             artnet.DefaultPort,
		RefreshRateHz:    40,
		IdleRateHz:       1,
		HighRateDuration: 2 * time.Second,
	}
}

// Service mirrors the most recent rendered frame per universe and transmits
// ArtDMX packets: at the refresh rate while frames keep changing, dropping
// to a keep-alive idle rate once the output has been static for a while.
type Service struct {
	mu sync.RWMutex

	// Latest dense frame per universe (1-based universes, 512 channels)
	frames map[uint16][]byte

	enabled          bool
	broadcastAddr    string
	port             int
	refreshRateHz    int
	idleRateHz       int
	highRateDuration time.Duration

	// Adaptive transmission rate state
	currentRate      int
	isInHighRateMode bool
	lastChangeTime   time.Time

	// Dirty flag system for efficient transmission
	isDirty        bool
	dirtyUniverses map[uint16]bool

	// Art-Net sequence number (wraps at 255)
	sequence byte

	conn *net.UDPConn

	stopChan chan struct{}
	running  bool
}

// NewService creates a new output service.
func NewService(cfg Config) *Service {
	refreshRate := cfg.RefreshRateHz
	if refreshRate <= 0 {
		refreshRate = 40
	}
	idleRate := cfg.IdleRateHz
	if idleRate <= 0 {
		idleRate = 1
	}
	highRateDuration := cfg.HighRateDuration
	if highRateDuration <= 0 {
		highRateDuration = 2 * time.Second
	}
	port := cfg.Port
	if port <= 0 {
		port = artnet.DefaultPort
	}

	return &Service{
		frames:           make(map[uint16][]byte),
		dirtyUniverses:   make(map[uint16]bool),
		enabled:          cfg.Enabled,
		broadcastAddr:    cfg.BroadcastAddr,
		port:             port,
		refreshRateHz:    refreshRate,
		idleRateHz:       idleRate,
		highRateDuration: highRateDuration,
		currentRate:      idleRate, // start at idle until the first change
		stopChan:         make(chan struct{}),
	}
}

// Initialize opens the Art-Net socket and starts the transmission loop.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if s.enabled {
		if s.broadcastAddr == "" {
			s.broadcastAddr = network.DefaultBroadcast()
		}

		addr, err := net.ResolveUDPAddr("udp4", s.broadcastAddr+":"+strconv.Itoa(s.port))
		if err != nil {
			return err
		}
		conn, err := net.DialUDP("udp4", nil, addr)
		if err != nil {
			return err
		}
		s.conn = conn

		log.Printf("📡 Art-Net output enabled, broadcasting to %s:%d", s.broadcastAddr, s.port)
		log.Printf("📡 Adaptive transmission: %dHz (active) / %dHz (idle), %v high-rate duration",
			s.refreshRateHz, s.idleRateHz, s.highRateDuration)
	} else {
		log.Printf("🎭 Output service initialized (simulation mode)")
	}

	s.running = true
	go s.transmitLoop()

	return nil
}

// PushFrame takes the latest rendered state. Universes whose dense frame
// differs from the last push are marked dirty; a universe that previously
// had output and now has none decays to an all-zero frame.
func (s *Service) PushFrame(live *dmx.LiveState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uint16]bool)
	for _, u := range live.Universes() {
		seen[u] = true
		next := live.UniverseChannels(u)
		if !frameEqual(s.frames[u], next) {
			s.frames[u] = next
			s.markDirty(u)
		}
	}

	// Universes that went dark
	for u, prev := range s.frames {
		if seen[u] {
			continue
		}
		if !frameEqual(prev, nil) {
			s.frames[u] = make([]byte, dmx.UniverseSize)
			s.markDirty(u)
		}
	}

	if s.isDirty {
		s.triggerHighRate()
	}
}

// frameEqual compares a stored frame with a candidate, treating nil as all
// zeros.
func frameEqual(a, b []byte) bool {
	for i := 0; i < dmx.UniverseSize; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return false
		}
	}
	return true
}

// markDirty marks a universe as having changes.
func (s *Service) markDirty(universe uint16) {
	s.isDirty = true
	s.dirtyUniverses[universe] = true
}

// triggerHighRate immediately switches to high rate mode.
func (s *Service) triggerHighRate() {
	s.lastChangeTime = time.Now()
	if !s.isInHighRateMode {
		s.isInHighRateMode = true
		s.currentRate = s.refreshRateHz
	}
}

// transmitLoop runs the adaptive rate transmission loop.
func (s *Service) transmitLoop() {
	s.mu.RLock()
	interval := time.Second / time.Duration(s.currentRate)
	s.mu.RUnlock()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastRate := 0

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.processTransmission()

			s.mu.RLock()
			currentRate := s.currentRate
			s.mu.RUnlock()

			if currentRate != lastRate {
				oldTicker := ticker
				ticker = time.NewTicker(time.Second / time.Duration(currentRate))
				oldTicker.Stop()
				lastRate = currentRate
			}
		}
	}
}

// processTransmission handles a single transmission cycle.
func (s *Service) processTransmission() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isDirty {
		sinceChange := time.Since(s.lastChangeTime)
		if s.isInHighRateMode && !s.lastChangeTime.IsZero() && sinceChange > s.highRateDuration {
			s.isInHighRateMode = false
			s.currentRate = s.idleRateHz
		}
	}

	if s.enabled && s.conn != nil {
		s.outputDMX()
	} else {
		// Simulation mode still consumes the dirty flags
		s.isDirty = false
		s.dirtyUniverses = make(map[uint16]bool)
	}
}

// outputDMX sends ArtDMX packets for dirty universes, or all known
// universes as keep-alive when idle.
func (s *Service) outputDMX() {
	var universes []uint16
	if s.isDirty && len(s.dirtyUniverses) > 0 {
		for u := range s.dirtyUniverses {
			universes = append(universes, u)
		}
	} else {
		for u := range s.frames {
			universes = append(universes, u)
		}
	}

	for _, universe := range universes {
		s.sequence++
		packet := artnet.BuildDMXPacket(int(universe), s.frames[universe], s.sequence)
		if _, err := s.conn.Write(packet); err != nil {
			log.Printf("Art-Net send error for universe %d: %v", universe, err)
		}
	}

	s.isDirty = false
	s.dirtyUniverses = make(map[uint16]bool)
}

// FrameChannels returns a copy of the last pushed frame for a universe.
func (s *Service) FrameChannels(universe uint16) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]byte, dmx.UniverseSize)
	copy(out, s.frames[universe])
	return out
}

// IsActive returns whether the service is in high-rate mode.
func (s *Service) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isInHighRateMode
}

// CurrentRate returns the current transmission rate in Hz.
func (s *Service) CurrentRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRate
}

// Stop halts transmission, sends a final blackout, and closes the socket.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopChan)
	s.running = false

	if s.enabled && s.conn != nil {
		blackout := make([]byte, dmx.UniverseSize)
		for universe := range s.frames {
			s.sequence++
			packet := artnet.BuildDMXPacket(int(universe), blackout, s.sequence)
			_, _ = s.conn.Write(packet)
		}
		_ = s.conn.Close()
		s.conn = nil
	}

	log.Printf("🎭 Output service stopped")
}
