package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge is a remote bridge found on the network.
type Bridge struct {
	// Name is the mDNS instance name, e.g. "polfun ABCD2345".
	Name string

	// Host is the advertised host name, e.g. "salon.local.".
	Host string

	IP   string
	Port int

	// DeviceCode is the pairing code of the box running the bridge.
	DeviceCode string

	Metadata map[string]string

	DiscoveredAt time.Time
}

func (b *Bridge) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Name, b.DeviceCode, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// URL returns the bridge's WebSocket endpoint.
func (b *Bridge) URL() string {
	path := b.GetMetadata(TXTPath)
	if path == "" {
		path = "/"
	}
	return "ws://" + net.JoinHostPort(b.IP, strconv.Itoa(b.Port)) + path
}

// GetMetadata returns a TXT value, or "" when it is absent.
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
