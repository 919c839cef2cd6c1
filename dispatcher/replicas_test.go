package dispatcher

import (
	"net"
	"net/rpc"
	"testing"

	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/rpcapi"
	"github.com/googol-project/googol/storagenode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestBarrel(t *testing.T, name string, index int) string {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Bloom.ExpectedElements = 1000
	node := storagenode.New(name, index, cfg, t.TempDir(), nil)

	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName("StorageService", storagenode.NewService(node)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go rpcSrv.Accept(ln)
	return ln.Addr().String()
}

func TestSearch_RoutesToReachableReplicaAndSortsByRelevance(t *testing.T) {
	addr := startTestBarrel(t, "barrel0", 0)
	client := storagenode.NewClient(addr)
	require.NoError(t, client.UpdateIndex("http://a", "A", "snippet", []string{"go"}, nil))
	require.NoError(t, client.UpdateIndex("http://b", "B", "snippet", []string{"go"}, []string{"http://a"}))

	d := newTestDispatcher(t)
	d.replicas = []replicaEntry{{name: "barrel0", client: client}}

	results, err := d.Search("go")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Relevance, results[1].Relevance)
}

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	d := newTestDispatcher(t)
	results, err := d.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_NoReplicasReturnsErrNoReplicas(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := d.Search("go")
	assert.ErrorIs(t, err, rpcapi.ErrNoReplicas)
}

func TestSearch_DropsUnreachableReplicaAndFailsOver(t *testing.T) {
	goodAddr := startTestBarrel(t, "barrel1", 1)
	goodClient := storagenode.NewClient(goodAddr)
	require.NoError(t, goodClient.UpdateIndex("http://a", "A", "snippet", []string{"go"}, nil))

	badClient := storagenode.NewClient("127.0.0.1:1") // nothing listening

	d := newTestDispatcher(t)
	// The round-robin counter starts at zero, so the first pick is index 1:
	// the unreachable replica is tried first, dropped, and the search fails
	// over to the remaining one.
	d.replicas = []replicaEntry{
		{name: "barrel1", client: goodClient},
		{name: "barrel0", client: badClient},
	}

	results, err := d.Search("go")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "http://a", results[0].URL)

	live := d.replicaSnapshot()
	require.Len(t, live, 1)
	assert.Equal(t, "barrel1", live[0].name)
}

func TestGetBacklinks_RoutesToReplica(t *testing.T) {
	addr := startTestBarrel(t, "barrel0", 0)
	client := storagenode.NewClient(addr)
	require.NoError(t, client.UpdateIndex("http://a", "A", "snippet", []string{"go"}, []string{"http://target"}))

	d := newTestDispatcher(t)
	d.replicas = []replicaEntry{{name: "barrel0", client: client}}

	urls, err := d.GetBacklinks("http://target")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a"}, urls)
}
