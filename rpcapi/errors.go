// Package rpcapi defines the wire-level argument/reply types and sentinel
// errors shared by the Dispatcher, Storage Node, and stats-subscriber RPC
// services. It is the Go analogue of the Java source's rmi interfaces: a
// small, dependency-free schema package that both the client stubs and the
// server implementations import.
package rpcapi

import "errors"

// ErrUnreachable means an RPC call failed due to transport or peer failure.
var ErrUnreachable = errors.New("rpcapi: unreachable")

// ErrNoReplicas means the dispatcher has no reachable storage node replicas.
var ErrNoReplicas = errors.New("rpcapi: no replicas available")
