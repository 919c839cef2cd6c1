package crawler

import (
	"net"
	"net/rpc"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/storagenode"
)

func startTestBarrel(t *testing.T, name string) (addr string, node *storagenode.Node) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Bloom.ExpectedElements = 1000
	node = storagenode.New(name, 0, cfg, t.TempDir(), nil)

	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName("StorageService", storagenode.NewService(node)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go rpcSrv.Accept(ln)
	return ln.Addr().String(), node
}

func TestMulticaster_SendDeliversToAllTargets(t *testing.T) {
	addr0, node0 := startTestBarrel(t, "barrel0")
	addr1, node1 := startTestBarrel(t, "barrel1")

	resolver := func(name string) (string, bool, error) {
		switch name {
		case "barrel0":
			return addr0, true, nil
		case "barrel1":
			return addr1, true, nil
		}
		return "", false, nil
	}

	m := NewMulticaster([]string{"barrel0", "barrel1"}, resolver)
	err := m.Send(update{ID: uuid.New(), URL: "http://a", Title: "A", Terms: []string{"go"}})
	require.NoError(t, err)

	assert.NotEmpty(t, node0.Search([]string{"go"}))
	assert.NotEmpty(t, node1.Search([]string{"go"}))
}

func TestMulticaster_UnreachableTargetSpillsToPending(t *testing.T) {
	addr0, node0 := startTestBarrel(t, "barrel0")

	resolver := func(name string) (string, bool, error) {
		if name == "barrel0" {
			return addr0, true, nil
		}
		return "", false, nil // barrel1 never resolvable for now
	}

	m := NewMulticaster([]string{"barrel0", "barrel1"}, resolver)
	err := m.Send(update{ID: uuid.New(), URL: "http://a", Title: "A", Terms: []string{"go"}})
	assert.Error(t, err)
	assert.NotEmpty(t, node0.Search([]string{"go"}))

	m.mu.Lock()
	assert.Len(t, m.targets["barrel1"].pending, 1)
	m.mu.Unlock()
}

func TestMulticaster_DrainRetriesClearsQueueOnceResolvable(t *testing.T) {
	m := NewMulticaster([]string{"barrel1"}, func(name string) (string, bool, error) {
		return "", false, nil
	})
	require.Error(t, m.Send(update{ID: uuid.New(), URL: "http://a", Terms: []string{"go"}}))

	addr1, node1 := startTestBarrel(t, "barrel1")
	m.resolver = func(name string) (string, bool, error) { return addr1, true, nil }

	assert.NoError(t, m.DrainRetries())
	assert.NotEmpty(t, node1.Search([]string{"go"}))

	m.mu.Lock()
	assert.Empty(t, m.targets["barrel1"].pending)
	m.mu.Unlock()
}

func TestMulticaster_DrainRetriesReportsErrorWhileUnresolvable(t *testing.T) {
	m := NewMulticaster([]string{"barrel1"}, func(name string) (string, bool, error) {
		return "", false, nil
	})
	require.Error(t, m.Send(update{ID: uuid.New(), URL: "http://a", Terms: []string{"go"}}))

	err := m.DrainRetries()
	assert.Error(t, err)

	m.mu.Lock()
	assert.Len(t, m.targets["barrel1"].pending, 1)
	m.mu.Unlock()
}
