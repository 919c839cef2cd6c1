// Package registry is the Go analogue of the original source's
// RegistrationServiceImpl: a tiny name -> network-address table that lets
// the Dispatcher, Storage Nodes, and Crawler Workers look each other up by
// logical name (e.g. "barrel0", "gateway") instead of hardcoded host:port
// pairs. It runs as its own net/rpc service, exposed under ServiceName.
package registry

import (
	"fmt"
	"net/rpc"
	"sync"
)

// ServiceName is the net/rpc service name the registry registers its
// methods under.
const ServiceName = "Registry"

// RegisterArgs carries a name -> address binding.
type RegisterArgs struct {
	Name string
	Addr string
}

// RegisterReply is an empty acknowledgement.
type RegisterReply struct{}

// UnregisterArgs carries the name to remove.
type UnregisterArgs struct {
	Name string
}

// UnregisterReply is an empty acknowledgement.
type UnregisterReply struct{}

// ResolveArgs carries the name to look up.
type ResolveArgs struct {
	Name string
}

// ResolveReply carries the bound address, or Found=false if unbound.
type ResolveReply struct {
	Addr  string
	Found bool
}

// Server is the registry's in-memory implementation, exported over net/rpc.
type Server struct {
	mu    sync.RWMutex
	binds map[string]string
}

// NewServer returns an empty registry.
func NewServer() *Server {
	return &Server{binds: make(map[string]string)}
}

// Register binds name to addr, replacing any prior binding (rebind semantics,
// matching the original's Registry.rebind).
func (s *Server) Register(args *RegisterArgs, reply *RegisterReply) error {
	s.mu.Lock()
	s.binds[args.Name] = args.Addr
	s.mu.Unlock()
	return nil
}

// Unregister removes name's binding, if any.
func (s *Server) Unregister(args *UnregisterArgs, reply *UnregisterReply) error {
	s.mu.Lock()
	delete(s.binds, args.Name)
	s.mu.Unlock()
	return nil
}

// Resolve looks up name's bound address.
func (s *Server) Resolve(args *ResolveArgs, reply *ResolveReply) error {
	s.mu.RLock()
	addr, ok := s.binds[args.Name]
	s.mu.RUnlock()

	reply.Addr = addr
	reply.Found = ok
	return nil
}

// Client is a thin wrapper around a net/rpc connection to a registry Server.
type Client struct {
	addr string
}

// NewClient returns a Client that dials addr on every call. Short-lived
// dials (rather than a persistent connection) keep the client resilient to
// a restarted registry, matching the reconnect-by-redial idiom the rest of
// this module uses for every other RPC peer.
func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Register binds name to addr on the remote registry.
func (c *Client) Register(name, addr string) error {
	conn, err := rpc.Dial("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("registry: dial: %w", err)
	}
	defer conn.Close()

	var reply RegisterReply
	return conn.Call(ServiceName+".Register", &RegisterArgs{Name: name, Addr: addr}, &reply)
}

// Unregister removes name's binding on the remote registry.
func (c *Client) Unregister(name string) error {
	conn, err := rpc.Dial("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("registry: dial: %w", err)
	}
	defer conn.Close()

	var reply UnregisterReply
	return conn.Call(ServiceName+".Unregister", &UnregisterArgs{Name: name}, &reply)
}

// Resolve looks up name's bound address on the remote registry.
func (c *Client) Resolve(name string) (string, bool, error) {
	conn, err := rpc.Dial("tcp", c.addr)
	if err != nil {
		return "", false, fmt.Errorf("registry: dial: %w", err)
	}
	defer conn.Close()

	var reply ResolveReply
	if err := conn.Call(ServiceName+".Resolve", &ResolveArgs{Name: name}, &reply); err != nil {
		return "", false, err
	}
	return reply.Addr, reply.Found, nil
}
