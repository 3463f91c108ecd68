// Package netaddr converts between textual and numeric IPv4 forms and splits
// host:port strings.
package netaddr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/amp-labs/amp-kit/parse"
)

var (
	ErrNotIPv4      = errors.New("not an IPv4 address")
	ErrInvalidHost  = errors.New("invalid host")
	ErrInvalidRange = errors.New("invalid address range")
)

// IPv4ToUint32 returns the address as a big-endian integer. IPv4-mapped IPv6
// addresses (::ffff:a.b.c.d) are accepted.
func IPv4ToUint32(addr netip.Addr) (uint32, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, fmt.Errorf("%w: %v", ErrNotIPv4, addr)
	}

	b := addr.As4()

	return binary.BigEndian.Uint32(b[:]), nil
}

// Uint32ToIPv4 is the inverse of IPv4ToUint32.
func Uint32ToIPv4(n uint32) netip.Addr {
	var b [4]byte

	binary.BigEndian.PutUint32(b[:], n)

	return netip.AddrFrom4(b)
}

// ParseIPv4Int parses a dotted-quad string straight to its integer form.
func ParseIPv4Int(s string) (uint32, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, err
	}

	return IPv4ToUint32(addr)
}

// FormatIPv4Int renders n as a dotted quad.
func FormatIPv4Int(n uint32) string {
	return Uint32ToIPv4(n).String()
}

// HostPort is a host name or address plus a port. A zero Port means none.
type HostPort struct {
	Host string
	Port uint16
}

// String joins the parts, bracketing IPv6 hosts. Without a port only the host
// is returned.
func (h HostPort) String() string {
	if h.Port == 0 {
		return h.Host
	}

	return net.JoinHostPort(h.Host, strconv.Itoa(int(h.Port)))
}

// ParseHostPort splits "host:port", "[v6]:port" and "host". A bare IPv6
// address without brackets is treated as a host with no port.
func ParseHostPort(s string) (HostPort, error) {
	if s == "" {
		return HostPort{}, fmt.Errorf("%w: empty", ErrInvalidHost)
	}

	if addr, err := netip.ParseAddr(s); err == nil {
		return HostPort{Host: addr.String()}, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return hostOnly(s)
		}

		return HostPort{}, fmt.Errorf("%w: %w", ErrInvalidHost, err)
	}

	if host == "" {
		return HostPort{}, fmt.Errorf("%w: %q has no host", ErrInvalidHost, s)
	}

	port, err := parse.Port(portStr)
	if err != nil {
		return HostPort{}, err
	}

	return HostPort{Host: host, Port: port}, nil
}

// ParseHostPortDefault is ParseHostPort with defPort filled in when s carries
// no port.
func ParseHostPortDefault(s string, defPort uint16) (HostPort, error) {
	hp, err := ParseHostPort(s)
	if err != nil {
		return HostPort{}, err
	}

	if hp.Port == 0 {
		hp.Port = defPort
	}

	return hp, nil
}

func hostOnly(s string) (HostPort, error) {
	if len(s) > 1 && s[0] == '[' && s[len(s)-1] == ']' {
		addr, err := netip.ParseAddr(s[1 : len(s)-1])
		if err != nil {
			return HostPort{}, fmt.Errorf("%w: %w", ErrInvalidHost, err)
		}

		return HostPort{Host: addr.String()}, nil
	}

	return HostPort{Host: s}, nil
}

// IsPrivate reports whether addr is in a private, loopback or link-local
// range.
func IsPrivate(addr netip.Addr) bool {
	addr = addr.Unmap()

	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}

// InRange reports whether addr falls inside prefix, given in CIDR notation.
func InRange(addr netip.Addr, prefix string) (bool, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	return p.Contains(addr.Unmap()), nil
}
