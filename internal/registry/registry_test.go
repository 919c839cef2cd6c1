package registry

import (
	"net"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestRegistry(t *testing.T) string {
	t.Helper()

	srv := NewServer()
	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName(ServiceName, srv))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go rpcSrv.Accept(ln)

	return ln.Addr().String()
}

func TestClient_RegisterAndResolve(t *testing.T) {
	addr := startTestRegistry(t)
	client := NewClient(addr)

	require.NoError(t, client.Register("barrel0", "127.0.0.1:9101"))

	resolved, found, err := client.Resolve("barrel0")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "127.0.0.1:9101", resolved)
}

func TestClient_ResolveUnknownName(t *testing.T) {
	addr := startTestRegistry(t)
	client := NewClient(addr)

	_, found, err := client.Resolve("nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Rebind(t *testing.T) {
	addr := startTestRegistry(t)
	client := NewClient(addr)

	require.NoError(t, client.Register("gateway", "127.0.0.1:9000"))
	require.NoError(t, client.Register("gateway", "127.0.0.1:9999"))

	resolved, found, err := client.Resolve("gateway")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "127.0.0.1:9999", resolved)
}

func TestClient_Unregister(t *testing.T) {
	addr := startTestRegistry(t)
	client := NewClient(addr)

	require.NoError(t, client.Register("crawler1", "127.0.0.1:9201"))
	require.NoError(t, client.Unregister("crawler1"))

	_, found, err := client.Resolve("crawler1")
	require.NoError(t, err)
	assert.False(t, found)
}
