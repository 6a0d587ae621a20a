package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listenUDP opens a local UDP socket and returns its address plus a
// function that reads one datagram.
func listenUDP(t *testing.T) (string, func() string) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	read := func() string {
		buf := make([]byte, 1024)
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		n, _, err := conn.ReadFrom(buf)
		require.NoError(t, err)
		return string(buf[:n])
	}
	return conn.LocalAddr().String(), read
}

func TestClient_Count(t *testing.T) {
	addr, read := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr, Prefix: "parent_portal"})
	require.NoError(t, err)
	defer client.Close()

	client.Count("auth.login", 1, map[string]string{"outcome": "success"})

	assert.Equal(t, "parent_portal.auth.login:1|c|#outcome:success", read())
}

func TestClient_Timing(t *testing.T) {
	addr, read := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer client.Close()

	client.Timing("health.probe", 250*time.Millisecond, nil)

	assert.Equal(t, "health.probe:250|ms", read())
}

func TestClient_TagsAreSorted(t *testing.T) {
	addr, read := listenUDP(t)

	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer client.Close()

	client.Count("m", 2, map[string]string{"b": "2", "a": "1"})

	assert.Equal(t, "m:2|c|#a:1,b:2", read())
}

func TestClient_DisabledDropsMetrics(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)

	// Must not panic or block.
	client.Count("m", 1, nil)
	client.Timing("m", time.Second, nil)
	assert.NoError(t, client.Close())
}

func TestClient_NilIsSafe(t *testing.T) {
	var client *Client
	client.Count("m", 1, nil)
	client.Timing("m", time.Second, nil)
	assert.NoError(t, client.Close())
}

func TestClient_EmptyAddressDisables(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "  "})
	require.NoError(t, err)
	client.Count("m", 1, nil)
	assert.NoError(t, client.Close())
}
