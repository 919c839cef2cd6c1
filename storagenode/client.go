package storagenode

import (
	"fmt"
	"net/rpc"

	"github.com/googol-project/googol/rpcapi"
)

// Client is a thin net/rpc stub for talking to a remote Storage Node. It
// dials fresh on every call (matching the registry client's short-lived
// dial idiom) so a restarted node is transparently picked back up on the
// caller's next attempt.
type Client struct {
	Addr string
}

// NewClient returns a Client targeting addr.
func NewClient(addr string) *Client {
	return &Client{Addr: addr}
}

func (c *Client) dial() (*rpc.Client, error) {
	conn, err := rpc.Dial("tcp", c.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return conn, nil
}

// Search calls the remote node's conjunctive-AND search.
func (c *Client) Search(terms []string) ([]rpcapi.SearchResult, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.BarrelSearchReply
	if err := conn.Call(rpcapi.StorageServiceName+".Search", &rpcapi.BarrelSearchArgs{Terms: terms}, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Results, nil
}

// UpdateIndex pushes one crawled page's contribution to the remote node.
func (c *Client) UpdateIndex(url, title, snippet string, terms, outgoingLinks []string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	args := &rpcapi.UpdateIndexArgs{
		URL: url, Title: title, Snippet: snippet,
		Terms: terms, OutgoingLinks: outgoingLinks,
	}
	var reply rpcapi.UpdateIndexReply
	if err := conn.Call(rpcapi.StorageServiceName+".UpdateIndex", args, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}

// GetBacklinks fetches the sources linking to url from the remote node.
func (c *Client) GetBacklinks(url string) ([]string, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.BarrelGetBacklinksReply
	if err := conn.Call(rpcapi.StorageServiceName+".GetBacklinks", &rpcapi.BarrelGetBacklinksArgs{URL: url}, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.URLs, nil
}

// GetBarrelStats fetches the remote node's human-readable stats line.
func (c *Client) GetBarrelStats() (string, error) {
	conn, err := c.dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	var reply rpcapi.GetBarrelStatsReply
	if err := conn.Call(rpcapi.StorageServiceName+".GetBarrelStats", &rpcapi.GetBarrelStatsArgs{}, &reply); err != nil {
		return "", fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Stats, nil
}

// GetInvertedIndex fetches a full copy of the remote node's term -> URL-set
// map, used only during peer sync.
func (c *Client) GetInvertedIndex() (map[string][]string, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.GetInvertedIndexReply
	if err := conn.Call(rpcapi.StorageServiceName+".GetInvertedIndex", &rpcapi.GetInvertedIndexArgs{}, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Index, nil
}

// GetBacklinksMap fetches a full copy of the remote node's backlink map.
func (c *Client) GetBacklinksMap() (map[string][]string, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.GetBacklinksMapReply
	if err := conn.Call(rpcapi.StorageServiceName+".GetBacklinksMap", &rpcapi.GetBacklinksMapArgs{}, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Backlinks, nil
}

// GetPageInfoMap fetches a full copy of the remote node's per-URL metadata.
func (c *Client) GetPageInfoMap() (map[string]rpcapi.PageRecord, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.GetPageInfoMapReply
	if err := conn.Call(rpcapi.StorageServiceName+".GetPageInfoMap", &rpcapi.GetPageInfoMapArgs{}, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.PageInfo, nil
}

// BackupURLQueue ships a queue snapshot to the remote node.
func (c *Client) BackupURLQueue(snapshot rpcapi.URLQueueSnapshot) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	var reply rpcapi.BackupURLQueueReply
	if err := conn.Call(rpcapi.StorageServiceName+".BackupURLQueue", &rpcapi.BackupURLQueueArgs{Snapshot: snapshot}, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}

// RestoreURLQueue fetches the remote node's last known queue snapshot.
func (c *Client) RestoreURLQueue() (rpcapi.URLQueueSnapshot, error) {
	conn, err := c.dial()
	if err != nil {
		return rpcapi.URLQueueSnapshot{}, err
	}
	defer conn.Close()

	var reply rpcapi.RestoreURLQueueReply
	if err := conn.Call(rpcapi.StorageServiceName+".RestoreURLQueue", &rpcapi.RestoreURLQueueArgs{}, &reply); err != nil {
		return rpcapi.URLQueueSnapshot{}, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Snapshot, nil
}
