package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listen opens a local UDP socket and returns its address plus a
// function that reads one datagram.
func listen(t *testing.T) (string, func() string) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	read := func() string {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		buf := make([]byte, 1024)
		n, _, readErr := conn.ReadFrom(buf)
		require.NoError(t, readErr)
		return string(buf[:n])
	}
	return conn.LocalAddr().String(), read
}

func TestClient_Count(t *testing.T) {
	addr, read := listen(t)
	client, err := NewClient(Config{Enabled: true, Address: addr, Prefix: "crm_ui_api"})
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	client.Count("auth.login", 1, map[string]string{"result": "success", "backend": "cognito"})

	assert.Equal(t, "crm_ui_api.auth.login:1|c|#backend:cognito,result:success", read())
}

func TestClient_Timing(t *testing.T) {
	addr, read := listen(t)
	client, err := NewClient(Config{Enabled: true, Address: addr})
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	client.Timing("auth.login.duration", 250*time.Millisecond, nil)

	assert.Equal(t, "auth.login.duration:250|ms", read())
}

func TestClient_GlobalTags(t *testing.T) {
	addr, read := listen(t)
	client, err := NewClient(Config{
		Enabled:    true,
		Address:    addr,
		GlobalTags: map[string]string{"env": "test"},
	})
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	client.Count("auth.logout", 1, map[string]string{"backend": "mock"})

	assert.Equal(t, "auth.logout:1|c|#backend:mock,env:test", read())
}

func TestClient_DisabledDropsSilently(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:1"})
	require.NoError(t, err)

	client.Count("auth.login", 1, nil)
	client.Timing("auth.login.duration", time.Second, nil)
	require.NoError(t, client.Close())
}

func TestClient_NilSafe(t *testing.T) {
	var client *Client

	client.Count("auth.login", 1, nil)
	client.Timing("auth.login.duration", time.Second, nil)
	require.NoError(t, client.Close())
}

func TestClient_EmptyAddressDisables(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "  "})
	require.NoError(t, err)

	client.Count("auth.login", 1, nil)
	require.NoError(t, client.Close())
}

func TestMetricName(t *testing.T) {
	c := &Client{prefix: "crm_ui_api"}

	assert.Equal(t, "crm_ui_api.auth.login", c.metricName("auth.login"))
	assert.Equal(t, "crm_ui_api.auth_login", c.metricName(" auth login "))
	assert.Equal(t, "", c.metricName("  "))

	bare := &Client{}
	assert.Equal(t, "auth.login", bare.metricName(".auth.login."))
}
