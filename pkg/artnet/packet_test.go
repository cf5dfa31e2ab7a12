package artnet

import (
	"bytes"
	"testing"
)

func TestBuildDMXPacket_Header(t *testing.T) {
	channels := make([]byte, 512)
	channels[0] = 255
	channels[511] = 8

	packet := BuildDMXPacket(1, channels, 7)

	if len(packet) != int(PacketSize) {
		t.Fatalf("packet size = %d, want %d", len(packet), PacketSize)
	}
	if !bytes.Equal(packet[0:8], ArtNetID) {
		t.Errorf("ID = %v", packet[0:8])
	}
	// OpCode 0x5000 little-endian
	if packet[8] != 0x00 || packet[9] != 0x50 {
		t.Errorf("opcode bytes = %02x %02x", packet[8], packet[9])
	}
	// Protocol version 14 big-endian
	if packet[10] != 0x00 || packet[11] != 0x0e {
		t.Errorf("protocol bytes = %02x %02x", packet[10], packet[11])
	}
	if packet[12] != 7 {
		t.Errorf("sequence = %d", packet[12])
	}
	// Universe 1 is sent 0-based
	if packet[14] != 0x00 || packet[15] != 0x00 {
		t.Errorf("universe bytes = %02x %02x", packet[14], packet[15])
	}
	if packet[18] != 255 || packet[18+511] != 8 {
		t.Errorf("data edges = %d, %d", packet[18], packet[18+511])
	}
}

func TestBuildDMXPacket_PadsShortData(t *testing.T) {
	packet := BuildDMXPacket(2, []byte{1, 2, 3}, 0)

	if packet[18] != 1 || packet[19] != 2 || packet[20] != 3 {
		t.Error("leading channels should be copied")
	}
	if packet[21] != 0 || packet[18+511] != 0 {
		t.Error("remaining channels should be zero-padded")
	}
}

func TestParseDMXPacket_RoundTrip(t *testing.T) {
	channels := make([]byte, 512)
	channels[9] = 42

	packet := BuildDMXPacket(3, channels, 200)

	parsed, err := ParseDMXPacket(packet)
	if err != nil {
		t.Fatalf("ParseDMXPacket: %v", err)
	}
	if parsed.Universe != 3 {
		t.Errorf("universe = %d, want 3", parsed.Universe)
	}
	if parsed.Sequence != 200 {
		t.Errorf("sequence = %d", parsed.Sequence)
	}
	if len(parsed.Channels) != 512 || parsed.Channels[9] != 42 {
		t.Errorf("channels = len %d, [9]=%d", len(parsed.Channels), parsed.Channels[9])
	}
}

func TestParseDMXPacket_Rejects(t *testing.T) {
	if _, err := ParseDMXPacket([]byte{1, 2, 3}); err == nil {
		t.Error("short packet should fail")
	}

	bogus := BuildDMXPacket(1, nil, 0)
	bogus[0] = 'X'
	if _, err := ParseDMXPacket(bogus); err == nil {
		t.Error("wrong ID should fail")
	}

	wrongOp := BuildDMXPacket(1, nil, 0)
	wrongOp[9] = 0x20
	if _, err := ParseDMXPacket(wrongOp); err == nil {
		t.Error("wrong opcode should fail")
	}
}
