package network

import (
	"net"
	"testing"
)

func TestCalculateBroadcast(t *testing.T) {
	cases := []struct {
		ip   string
		mask net.IPMask
		want string
	}{
		{"192.168.1.10", net.CIDRMask(24, 32), "192.168.1.255"},
		{"10.0.0.1", net.CIDRMask(8, 32), "10.255.255.255"},
		{"172.16.5.4", net.CIDRMask(16, 32), "172.16.255.255"},
	}
	for _, c := range cases {
		got := calculateBroadcast(net.ParseIP(c.ip), c.mask)
		if got == nil || got.String() != c.want {
			t.Errorf("calculateBroadcast(%s) = %v, want %s", c.ip, got, c.want)
		}
	}
}

func TestCalculateBroadcast_RejectsNonIPv4(t *testing.T) {
	if got := calculateBroadcast(net.ParseIP("::1"), net.CIDRMask(64, 128)); got != nil {
		t.Errorf("IPv6 should return nil, got %v", got)
	}
	if got := calculateBroadcast(nil, net.CIDRMask(24, 32)); got != nil {
		t.Errorf("nil IP should return nil, got %v", got)
	}
}

func TestGetNetworkInterfaces_AlwaysHasFallbacks(t *testing.T) {
	options, err := GetNetworkInterfaces()
	if err != nil {
		t.Fatalf("GetNetworkInterfaces: %v", err)
	}

	var haveLocalhost, haveGlobal bool
	for _, opt := range options {
		if opt.Name == "localhost" {
			haveLocalhost = true
		}
		if opt.Name == "global-broadcast" {
			haveGlobal = true
		}
	}
	if !haveLocalhost || !haveGlobal {
		t.Error("localhost and global broadcast fallbacks should always be present")
	}
}

func TestDefaultBroadcast_NeverEmpty(t *testing.T) {
	if addr := DefaultBroadcast(); addr == "" {
		t.Error("DefaultBroadcast should always return an address")
	}
}
