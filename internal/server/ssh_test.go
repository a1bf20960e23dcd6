package server

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepLink(t *testing.T) {
	tests := []struct {
		cmd  []string
		want string
	}{
		{nil, ""},
		{[]string{""}, ""},
		{[]string{"/resume"}, "/resume"},
		{[]string{"resume"}, "/resume"},
		{[]string{"  /chrome  "}, "/chrome"},
		{[]string{"not", "found"}, "/not found"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeepLink(tt.cmd), "%q", tt.cmd)
	}
}

func TestRemoteHost(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 51234}
	assert.Equal(t, "203.0.113.7", remoteHost(addr))
	assert.Equal(t, "unknown", remoteHost(nil))
}

func TestHostKeyPath(t *testing.T) {
	got, err := hostKeyPath("/etc/deskfolio/key")
	require.NoError(t, err)
	assert.Equal(t, "/etc/deskfolio/key", got)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = hostKeyPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh", "deskfolio_host_key"), got)
}
