// Command dispatcher runs the Googol Dispatcher: the URL queue, the
// round-robin+failover search/backlink router over the Storage Node
// replicas, the statistics digest, and the name registry every other
// process resolves peers through.
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

	"github.com/googol-project/googol/dispatcher"
	"github.com/googol-project/googol/internal/config"
	"github.com/googol-project/googol/internal/registry"
	"github.com/googol-project/googol/rpcapi"
)

const recoverAttempts = 5
const recoverDelay = 2 * time.Second

func main() {
	configPath := flag.String("config", "./googol.yaml", "path to googol.yaml")
	dataDir := flag.String("data", "./data/dispatcher", "directory for the indexed-url log")
	flag.Parse()

	logFile, err := os.OpenFile("dispatcher.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("dispatcher: failed to open log file: %v", err)
	}
	defer logFile.Close()

	logger := log.New(io.MultiWriter(os.Stdout, logFile), "[dispatcher] ", log.LstdFlags)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		logger.Fatalf("loading config: %v", err)
	}

	registryAddr := fmt.Sprintf("%s:%d", cfg.RMI.Host, cfg.RMI.Port)
	registryLn, err := net.Listen("tcp", registryAddr)
	if err != nil {
		logger.Fatalf("binding registry on %s: %v", registryAddr, err)
	}
	registrySrv := rpc.NewServer()
	if err := registrySrv.RegisterName(registry.ServiceName, registry.NewServer()); err != nil {
		logger.Fatalf("registering registry service: %v", err)
	}
	go registrySrv.Accept(registryLn)
	logger.Printf("registry listening on %s", registryAddr)

	registryClient := registry.NewClient(registryAddr)
	resolver := func(name string) (string, bool, error) { return registryClient.Resolve(name) }

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		logger.Fatalf("creating data dir %s: %v", *dataDir, err)
	}
	d := dispatcher.New(cfg, *dataDir, logger, resolver)

	logger.Printf("recovering url queue from replicas...")
	d.RecoverQueue(recoverAttempts, recoverDelay)

	dispatcherLn, err := net.Listen("tcp", ":0")
	if err != nil {
		logger.Fatalf("binding dispatcher service: %v", err)
	}
	dispatcherSrv := rpc.NewServer()
	if err := dispatcherSrv.RegisterName(rpcapi.DispatcherServiceName, dispatcher.NewService(d)); err != nil {
		logger.Fatalf("registering dispatcher service: %v", err)
	}
	go dispatcherSrv.Accept(dispatcherLn)
	logger.Printf("dispatcher service listening on %s", dispatcherLn.Addr().String())

	if err := registryClient.Register(cfg.Gateway.Name, dispatcherLn.Addr().String()); err != nil {
		logger.Fatalf("registering %q with registry: %v", cfg.Gateway.Name, err)
	}

	stop := make(chan struct{})
	interval := time.Duration(cfg.Statistics.MonitorIntervalMS) * time.Millisecond
	go d.StartStatsPush(interval, stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Printf("shutting down")
	close(stop)
	registryClient.Unregister(cfg.Gateway.Name)
	dispatcherLn.Close()
	registryLn.Close()
}
