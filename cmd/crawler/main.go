// Command crawler runs a pool of Crawler Workers: each pulls URLs from the
// Dispatcher's queue, fetches and parses the page, submits discovered links
// back, and reliably multicasts the resulting index update to every Storage
// Node.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/googol-project/googol/crawler"
	"github.com/googol-project/googol/fetch"
	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/internal/registry"
)

const (
	fetchTimeout     = 10 * time.Second
	gatewayWaitDelay = 2 * time.Second
	gatewayWaitTries = 30
)

func main() {
	configPath := flag.String("config", "./googol.yaml", "path to googol.yaml")
	flag.Parse()

	logFile, err := os.OpenFile("crawler.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("crawler: failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger := log.New(io.MultiWriter(os.Stdout, logFile), "[crawler] ", log.LstdFlags)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Fatalf("loading config: %v", err)
	}

	registryAddr := fmt.Sprintf("%s:%d", cfg.RMI.Host, cfg.RMI.Port)
	registryClient := registry.NewClient(registryAddr)
	resolver := func(name string) (string, bool, error) { return registryClient.Resolve(name) }

	dispatcherAddr, err := waitForGateway(registryClient, cfg.Gateway.Name, logger)
	if err != nil {
		logger.Fatalf("gateway never became reachable: %v", err)
	}

	storageNames := make([]string, 0, cfg.Barrels.Count)
	for i := 0; i < cfg.Barrels.Count; i++ {
		storageNames = append(storageNames, cfg.Barrels.Name(i))
	}

	if err := waitForAnyStorageNode(registryClient, storageNames, logger); err != nil {
		logger.Fatalf("no storage node ever became reachable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Printf("shutting down")
		cancel()
	}()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Downloader.Threads; i++ {
		workerLogger := log.New(io.MultiWriter(os.Stdout, logFile), fmt.Sprintf("[crawler-%d] ", i), log.LstdFlags)
		w := crawler.New(crawler.Config{
			DispatcherAddr:   dispatcherAddr,
			StorageNodeNames: storageNames,
			Resolver:         crawler.PeerResolver(resolver),
			Fetcher:          fetch.New(fetchTimeout, &fetch.DefaultPrivateNetworkDetector{}, cfg.Downloader.RequestsPerSecond),
			Logger:           workerLogger,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	wg.Wait()
}

func waitForGateway(client *registry.Client, name string, logger *log.Logger) (string, error) {
	for i := 0; i < gatewayWaitTries; i++ {
		addr, found, err := client.Resolve(name)
		if err == nil && found {
			return addr, nil
		}
		logger.Printf("waiting for %q to register (attempt %d/%d)", name, i+1, gatewayWaitTries)
		time.Sleep(gatewayWaitDelay)
	}
	return "", fmt.Errorf("gateway %q not registered after %d attempts", name, gatewayWaitTries)
}

// waitForAnyStorageNode blocks until at least one of names resolves, or
// returns an error after gatewayWaitTries attempts. Startup requires
// resolving the Dispatcher AND at least one Storage Node; a worker pool
// with zero reachable barrels would fetch pages and silently drop every
// multicast forever, so the process exits instead.
func waitForAnyStorageNode(client *registry.Client, names []string, logger *log.Logger) error {
	for i := 0; i < gatewayWaitTries; i++ {
		for _, name := range names {
			if addr, found, err := client.Resolve(name); err == nil && found {
				logger.Printf("storage node %q reachable at %s", name, addr)
				return nil
			}
		}
		logger.Printf("waiting for at least one storage node to register (attempt %d/%d)", i+1, gatewayWaitTries)
		time.Sleep(gatewayWaitDelay)
	}
	return fmt.Errorf("no storage node among %v registered after %d attempts", names, gatewayWaitTries)
}
