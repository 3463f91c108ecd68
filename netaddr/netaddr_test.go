package netaddr

import (
	"net/netip"
	"testing"

	"github.com/amp-labs/amp-kit/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4Ints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		n    uint32
	}{
		{"0.0.0.0", 0},
		{"10.0.0.1", 0x0A000001},
		{"192.168.1.254", 0xC0A801FE},
		{"255.255.255.255", 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()

			n, err := ParseIPv4Int(tt.addr)
			require.NoError(t, err)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.addr, FormatIPv4Int(tt.n))
		})
	}
}

func TestIPv4ToUint32_Mapped(t *testing.T) {
	t.Parallel()

	n, err := IPv4ToUint32(netip.MustParseAddr("::ffff:10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0A000001), n)

	_, err = IPv4ToUint32(netip.MustParseAddr("2001:db8::1"))
	require.ErrorIs(t, err, ErrNotIPv4)

	_, err = ParseIPv4Int("not-an-ip")
	require.Error(t, err)
}

func TestParseHostPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want HostPort
	}{
		{"example.com:8080", HostPort{"example.com", 8080}},
		{"example.com", HostPort{"example.com", 0}},
		{"10.1.2.3:22", HostPort{"10.1.2.3", 22}},
		{"[::1]:443", HostPort{"::1", 443}},
		{"[2001:db8::1]", HostPort{"2001:db8::1", 0}},
		{"2001:db8::1", HostPort{"2001:db8::1", 0}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseHostPort(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHostPort_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseHostPort("")
	require.ErrorIs(t, err, ErrInvalidHost)

	_, err = ParseHostPort(":80")
	require.ErrorIs(t, err, ErrInvalidHost)

	_, err = ParseHostPort("example.com:http")
	require.Error(t, err)

	_, err = ParseHostPort("example.com:70000")
	require.ErrorIs(t, err, parse.ErrBadPort)
}

func TestParseHostPortDefault(t *testing.T) {
	t.Parallel()

	hp, err := ParseHostPortDefault("db.internal", 5432)
	require.NoError(t, err)
	assert.Equal(t, "db.internal:5432", hp.String())

	hp, err = ParseHostPortDefault("db.internal:6543", 5432)
	require.NoError(t, err)
	assert.Equal(t, uint16(6543), hp.Port)
}

func TestHostPort_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[::1]:80", HostPort{"::1", 80}.String())
	assert.Equal(t, "example.com", HostPort{Host: "example.com"}.String())
}

func TestIsPrivateAndInRange(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPrivate(netip.MustParseAddr("10.20.30.40")))
	assert.True(t, IsPrivate(netip.MustParseAddr("127.0.0.1")))
	assert.True(t, IsPrivate(netip.MustParseAddr("fd00::1")))
	assert.False(t, IsPrivate(netip.MustParseAddr("8.8.8.8")))

	in, err := InRange(netip.MustParseAddr("192.168.4.7"), "192.168.0.0/16")
	require.NoError(t, err)
	assert.True(t, in)

	in, err = InRange(netip.MustParseAddr("192.169.0.1"), "192.168.0.0/16")
	require.NoError(t, err)
	assert.False(t, in)

	_, err = InRange(netip.MustParseAddr("1.1.1.1"), "nonsense")
	require.ErrorIs(t, err, ErrInvalidRange)
}
