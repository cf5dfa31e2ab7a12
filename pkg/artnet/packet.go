// Package artnet builds and parses Art-Net ArtDMX packets.
package artnet

import (
	"encoding/binary"
	"fmt"
)

const (
	// OpCodeDMX is the Art-Net operation code for DMX data.
	OpCodeDMX uint16 = 0x5000
	// ProtocolVersion is the Art-Net protocol version.
	ProtocolVersion uint16 = 14
	// DMXDataLength is the number of DMX channels per universe.
	DMXDataLength uint16 = 512
	// PacketSize is the total size of an ArtDMX packet.
	PacketSize = 18 + DMXDataLength // Header (18) + Data (512)
	// DefaultPort is the standard Art-Net UDP port.
	DefaultPort = 6454
)

// ArtNetID is the Art-Net packet identifier.
var ArtNetID = []byte{'A', 'r', 't', '-', 'N', 'e', 't', 0x00}

// DMXPacket is a decoded ArtDMX packet.
type DMXPacket struct {
	Sequence byte
	Universe int // 1-based, as used in the application
	Channels []byte
}

// BuildDMXPacket creates an ArtDMX packet for the specified universe.
// Universe is 1-based as used in the application and sent 0-based on the
// wire. Channels shorter than 512 bytes are zero-padded. Sequence should
// increment per packet (wrapping at 255) so receivers can detect
// out-of-order UDP delivery.
func BuildDMXPacket(universe int, channels []byte, sequence byte) []byte {
	packet := make([]byte, PacketSize)

	copy(packet[0:8], ArtNetID)
	binary.LittleEndian.PutUint16(packet[8:10], OpCodeDMX)
	binary.BigEndian.PutUint16(packet[10:12], ProtocolVersion)
	packet[12] = sequence
	packet[13] = 0 // physical input port
	binary.LittleEndian.PutUint16(packet[14:16], uint16(universe-1))
	binary.BigEndian.PutUint16(packet[16:18], DMXDataLength)

	if len(channels) >= int(DMXDataLength) {
		copy(packet[18:], channels[:DMXDataLength])
	} else {
		copy(packet[18:18+len(channels)], channels)
	}

	return packet
}

// ParseDMXPacket decodes an ArtDMX packet. It rejects packets with a wrong
// ID or opcode and returns the universe 1-based.
func ParseDMXPacket(packet []byte) (*DMXPacket, error) {
	if len(packet) < 18 {
		return nil, fmt.Errorf("packet too short: %d bytes", len(packet))
	}
	for i, b := range ArtNetID {
		if packet[i] != b {
			return nil, fmt.Errorf("not an Art-Net packet")
		}
	}
	if op := binary.LittleEndian.Uint16(packet[8:10]); op != OpCodeDMX {
		return nil, fmt.Errorf("unexpected opcode 0x%04x", op)
	}

	length := binary.BigEndian.Uint16(packet[16:18])
	if int(length) > len(packet)-18 {
		return nil, fmt.Errorf("declared length %d exceeds packet", length)
	}

	channels := make([]byte, length)
	copy(channels, packet[18:18+length])

	return &DMXPacket{
		Sequence: packet[12],
		Universe: int(binary.LittleEndian.Uint16(packet[14:16])) + 1,
		Channels: channels,
	}, nil
}
