package storagenode

import (
	"errors"
	"net"
	"net/rpc"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestStorageNode(t *testing.T, n *Node) string {
	t.Helper()

	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName("StorageService", NewService(n)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go rpcSrv.Accept(ln)
	return ln.Addr().String()
}

func TestSync_MergesFromFirstReachablePeer(t *testing.T) {
	peer := New("barrel1", 1, testConfig(), t.TempDir(), nil)
	peer.UpdateIndex("http://a", "A", "snippet", []string{"go"}, nil)
	peerAddr := startTestStorageNode(t, peer)

	local := newTestNode(t)
	resolver := func(name string) (string, bool, error) {
		if name == "barrel1" {
			return peerAddr, true, nil
		}
		return "", false, nil
	}

	require.NoError(t, local.Sync("barrel0", []string{"barrel0", "barrel1"}, resolver))
	assert.Equal(t, StateReady, local.State())

	results := local.Search([]string{"go"})
	require.Len(t, results, 1)
	assert.Equal(t, "http://a", results[0].URL)
}

func TestSync_FallsBackToDiskWhenNoPeersReachable(t *testing.T) {
	dir := t.TempDir()
	seed := New("barrel0", 0, testConfig(), dir, nil)
	seed.UpdateIndex("http://a", "A", "snippet", []string{"go"}, nil)
	require.NoError(t, seed.SnapshotToDisk())

	restarted := New("barrel0", 0, testConfig(), dir, nil)
	resolver := func(name string) (string, bool, error) {
		return "", false, nil
	}

	require.NoError(t, restarted.Sync("barrel0", []string{"barrel0", "barrel1"}, resolver))
	assert.NotEmpty(t, restarted.Search([]string{"go"}))
}

func TestSync_StartsEmptyWhenNothingAvailable(t *testing.T) {
	local := newTestNode(t)
	resolver := func(name string) (string, bool, error) {
		return "", false, errors.New("registry unreachable")
	}

	require.NoError(t, local.Sync("barrel0", []string{"barrel0", "barrel1"}, resolver))
	assert.Empty(t, local.InvertedIndexCopy())
	assert.Equal(t, StateReady, local.State())
}
