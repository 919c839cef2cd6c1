// Command storagenode runs one Googol Storage Node ("Barrel"): it syncs its
// inverted index, backlink map, and page metadata from a reachable peer (or
// its own disk snapshot) at startup, then serves search/update/backlink RPCs
// until shut down.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/rpc"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/internal/registry"
	"github.com/googol-project/googol/rpcapi"
	"github.com/googol-project/googol/storagenode"
)

func main() {
	index := flag.Int("index", 0, "this storage node's configured position (0 is primary)")
	configPath := flag.String("config", "./googol.yaml", "path to googol.yaml")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("storage node: loading config: %v", err)
	}

	name := cfg.Barrels.Name(*index)

	logFile, err := os.OpenFile(fmt.Sprintf("%s.log", name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("storage node%d: failed to open log file: %v", *index, err)
	}
	defer logFile.Close()

	logger := log.New(io.MultiWriter(os.Stdout, logFile), fmt.Sprintf("[storage node%d] ", *index), log.LstdFlags)

	registryAddr := fmt.Sprintf("%s:%d", cfg.RMI.Host, cfg.RMI.Port)
	registryClient := registry.NewClient(registryAddr)
	resolver := func(peerName string) (string, bool, error) { return registryClient.Resolve(peerName) }

	dataDir := fmt.Sprintf("./data/%s", name)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Fatalf("creating data dir %s: %v", dataDir, err)
	}

	node := storagenode.New(name, *index, cfg, dataDir, logger)

	peerNames := make([]string, 0, cfg.Barrels.Count)
	for i := 0; i < cfg.Barrels.Count; i++ {
		peerNames = append(peerNames, cfg.Barrels.Name(i))
	}

	logger.Printf("syncing from peers...")
	if err := node.Sync(name, peerNames, resolver); err != nil {
		logger.Printf("sync reported failures: %v", err)
	}

	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		logger.Fatalf("binding storage service: %v", err)
	}
	srv := rpc.NewServer()
	if err := srv.RegisterName(rpcapi.StorageServiceName, storagenode.NewService(node)); err != nil {
		logger.Fatalf("registering storage service: %v", err)
	}
	go srv.Accept(ln)
	logger.Printf("storage service listening on %s", ln.Addr().String())

	if err := registryClient.Register(name, ln.Addr().String()); err != nil {
		logger.Fatalf("registering %q with registry: %v", name, err)
	}

	stop := make(chan struct{})
	if node.IsPrimary {
		interval := time.Duration(cfg.Barrel.AutosaveIntervalSeconds) * time.Second
		go node.StartAutosave(interval, stop)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Printf("shutting down")
	close(stop)
	registryClient.Unregister(name)
	ln.Close()
	if err := node.SnapshotToDisk(); err != nil {
		logger.Printf("final snapshot failed: %v", err)
	}
}
