// Package network provides utilities for choosing an Art-Net broadcast
// address from the host's interfaces.
package network

import (
	"fmt"
	"net"
)

// InterfaceOption represents a candidate broadcast target.
type InterfaceOption struct {
	Name      string
	Address   string
	Broadcast string
}

// calculateBroadcast computes the broadcast address from IP and netmask.
func calculateBroadcast(ip net.IP, mask net.IPMask) net.IP {
	if ip == nil || mask == nil {
		return nil
	}

	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	if len(mask) == 16 {
		mask = mask[12:16]
	}
	if len(mask) != 4 {
		return nil
	}

	broadcast := make(net.IP, 4)
	for i := 0; i < 4; i++ {
		broadcast[i] = ip4[i] | ^mask[i]
	}
	return broadcast
}

// GetNetworkInterfaces returns candidate broadcast targets: one per up,
// non-loopback IPv4 interface, then localhost and the global broadcast.
func GetNetworkInterfaces() ([]InterfaceOption, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	var options []InterfaceOption
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}

			broadcast := calculateBroadcast(ip4, ipNet.Mask)
			if broadcast == nil {
				continue
			}
			broadcastStr := broadcast.String()
			if broadcastStr == ip4.String() {
				// Point-to-point, nothing to broadcast to.
				continue
			}

			options = append(options, InterfaceOption{
				Name:      fmt.Sprintf("%s-broadcast", iface.Name),
				Address:   ip4.String(),
				Broadcast: broadcastStr,
			})
		}
	}

	options = append(options,
		InterfaceOption{Name: "localhost", Address: "127.0.0.1", Broadcast: "127.0.0.1"},
		InterfaceOption{Name: "global-broadcast", Address: "0.0.0.0", Broadcast: "255.255.255.255"},
	)
	return options, nil
}

// DefaultBroadcast picks the first non-localhost candidate, falling back to
// the global broadcast address.
func DefaultBroadcast() string {
	options, err := GetNetworkInterfaces()
	if err != nil {
		return "255.255.255.255"
	}
	for _, opt := range options {
		if opt.Name != "localhost" && opt.Name != "global-broadcast" {
			return opt.Broadcast
		}
	}
	return "255.255.255.255"
}
