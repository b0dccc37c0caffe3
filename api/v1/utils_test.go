package v1

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectPreferredIP(t *testing.T) {
	// First public IPv4 wins over an earlier private one.
	assert.Equal(t, "203.0.113.5",
		selectPreferredIP([]string{"192.168.1.1", "203.0.113.5", "198.51.100.7"}))

	// Public IPv4 is preferred over public IPv6 regardless of order.
	assert.Equal(t, "203.0.113.5",
		selectPreferredIP([]string{"2001:db8::1", "203.0.113.5"}))

	// IPv6 fallback when no public IPv4 is present.
	assert.Equal(t, "2001:db8::1",
		selectPreferredIP([]string{"10.0.0.1", "2001:db8::1"}))

	// All private: nothing usable.
	assert.Equal(t, "",
		selectPreferredIP([]string{"10.0.0.1", "192.168.1.1", "127.0.0.1"}))

	assert.Equal(t, "", selectPreferredIP([]string{""}))
}

func TestNormalizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"203.0.113.5", "203.0.113.5"},
		{" 203.0.113.5 ", "203.0.113.5"},
		{`"203.0.113.5"`, "203.0.113.5"},
		{"203.0.113.5:8080", "203.0.113.5"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"[2001:db8::1]", "2001:db8::1"},
		{"::ffff:203.0.113.5", "203.0.113.5"}, // 4-in-6 mapped
		{"fe80::1%eth0", "fe80::1"},
		{"not-an-ip", ""},
		{"", ""},
	}

	for _, tc := range cases {
		clean, parsed := normalizeIP(tc.in)
		assert.Equal(t, tc.want, clean, "input %q", tc.in)
		if tc.want != "" {
			assert.NotNil(t, parsed, "input %q", tc.in)
		} else {
			assert.Nil(t, parsed, "input %q", tc.in)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"10.1.2.3", "172.16.0.1", "172.31.255.255", "192.168.0.1",
		"127.0.0.1", "::1", "fc00::1", "fe80::1",
	}
	for _, s := range private {
		assert.True(t, isPrivateIP(net.ParseIP(s)), s)
	}

	public := []string{"203.0.113.5", "8.8.8.8", "172.32.0.1", "2001:db8::1"}
	for _, s := range public {
		assert.False(t, isPrivateIP(net.ParseIP(s)), s)
	}

	assert.False(t, isPrivateIP(nil))
}
