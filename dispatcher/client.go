package dispatcher

import (
	"fmt"
	"net/rpc"

	"github.com/googol-project/googol/rpcapi"
)

// Client is a thin net/rpc stub for talking to a remote Dispatcher.
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

// SubmitURL submits a newly discovered URL for crawling.
func (c *Client) SubmitURL(url string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	var reply rpcapi.SubmitURLReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".SubmitURL", &rpcapi.SubmitURLArgs{URL: url}, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}

// NextURLToCrawl pops the next pending URL, if any.
func (c *Client) NextURLToCrawl() (url string, ok bool, err error) {
	conn, err := c.dial()
	if err != nil {
		return "", false, err
	}
	defer conn.Close()

	var reply rpcapi.NextURLToCrawlReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".NextURLToCrawl", &rpcapi.NextURLToCrawlArgs{}, &reply); err != nil {
		return "", false, fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.URL, !reply.Empty, nil
}

// Search runs a query against the Dispatcher's routed search.
func (c *Client) Search(query string) ([]rpcapi.SearchResult, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.SearchReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".Search", &rpcapi.SearchArgs{Query: query}, &reply); err != nil {
		return nil, err
	}
	return reply.Results, nil
}

// GetBacklinks fetches the sources linking to url.
func (c *Client) GetBacklinks(url string) ([]string, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var reply rpcapi.GetBacklinksReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".GetBacklinks", &rpcapi.GetBacklinksArgs{URL: url}, &reply); err != nil {
		return nil, err
	}
	return reply.URLs, nil
}

// GetStatistics fetches the rendered statistics digest.
func (c *Client) GetStatistics() (string, error) {
	conn, err := c.dial()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	var reply rpcapi.GetStatisticsReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".GetStatistics", &rpcapi.GetStatisticsArgs{}, &reply); err != nil {
		return "", fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return reply.Digest, nil
}

// SubscribeStats registers a push-notification subscriber.
func (c *Client) SubscribeStats(sessionID, callbackAddr string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	var reply rpcapi.SubscribeStatsReply
	args := &rpcapi.SubscribeStatsArgs{SessionID: sessionID, CallbackAddr: callbackAddr}
	if err := conn.Call(rpcapi.DispatcherServiceName+".SubscribeStats", args, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}

// UnsubscribeStats removes a push-notification subscriber.
func (c *Client) UnsubscribeStats(sessionID string) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	var reply rpcapi.UnsubscribeStatsReply
	if err := conn.Call(rpcapi.DispatcherServiceName+".UnsubscribeStats", &rpcapi.UnsubscribeStatsArgs{SessionID: sessionID}, &reply); err != nil {
		return fmt.Errorf("%w: %v", rpcapi.ErrUnreachable, err)
	}
	return nil
}
