package crawler

import (
	"context"
	"net"
	"net/rpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googol-project/googol/dispatcher"
	"github.com/googol-project/googol/fetch"
	"github.com/googol-project/googol/internal/config"
)

func startTestDispatcher(t *testing.T) (addr string, d *dispatcher.Dispatcher) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Barrels.Count = 0
	d = dispatcher.New(cfg, t.TempDir(), nil, func(string) (string, bool, error) { return "", false, nil })

	rpcSrv := rpc.NewServer()
	require.NoError(t, rpcSrv.RegisterName("DispatcherService", dispatcher.NewService(d)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go rpcSrv.Accept(ln)
	return ln.Addr().String(), d
}

func TestWorker_ProcessesOneURLAndSubmitsDiscoveredLinks(t *testing.T) {
	dispatcherAddr, d := startTestDispatcher(t)
	barrelAddr, node := startTestBarrel(t, "barrel0")

	require.NoError(t, d.SubmitURL("http://seed"))

	w := New(Config{
		DispatcherAddr:   dispatcherAddr,
		StorageNodeNames: []string{"barrel0"},
		Resolver: func(name string) (string, bool, error) {
			if name == "barrel0" {
				return barrelAddr, true, nil
			}
			return "", false, nil
		},
		Fetcher: stubFetcher{page: &fetch.Page{
			Title:  "Seed",
			Tokens: []string{"go", "lang"},
			Links:  []string{"http://discovered"},
		}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(node.Search([]string{"go"})) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	results, err := dispatcherClientNextURL(t, dispatcherAddr)
	require.NoError(t, err)
	assert.Equal(t, "http://discovered", results)
}

func dispatcherClientNextURL(t *testing.T, addr string) (string, error) {
	t.Helper()
	client := dispatcher.NewClient(addr)
	url, ok, err := client.NextURLToCrawl()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return url, nil
}
