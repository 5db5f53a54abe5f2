package wifimon

import (
	"context"
	"time"
)

// DefaultRequestTimeout bounds a request whose context carries no deadline.
const DefaultRequestTimeout = 5 * time.Second

// Config configures a Client. The zero value is valid.
type Config struct {
	// RequestTimeout bounds each kernel request when the caller's context has
	// no deadline. If zero, DefaultRequestTimeout is used.
	RequestTimeout time.Duration

	// Logger receives diagnostic messages. If nil, nothing is logged.
	Logger Logger
}

// A Client is a type which can query the kernel's Wi-Fi state and subscribe
// to its connection notifications using operating system-specific operations.
//
// A Client is safe for concurrent use; requests are serialized over a single
// socket.
type Client struct {
	c *client
}

var _ Querier = &Client{}

// New creates a new Client. It returns an error wrapping
// ErrTransportUnavailable if the nl80211 family or its mlme multicast group
// cannot be resolved. A nil Config uses the defaults.
func New(cfg *Config) (*Client, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		c: c,
	}, nil
}

// Close releases resources used by a Client. EventStreams returned by
// Subscribe are independent and must be closed separately.
func (c *Client) Close() error {
	return c.c.Close()
}

// DefaultInterface returns the index of the first station mode interface on
// the system, or 0 if there is none.
func (c *Client) DefaultInterface(ctx context.Context) (uint32, error) {
	return c.c.DefaultInterface(ctx)
}

// SSID returns the SSID of the network an interface is associated with. If
// the interface is not associated, an error compatible with
// errors.Is(err, os.ErrNotExist) is returned.
func (c *Client) SSID(ctx context.Context, ifindex uint32) (string, error) {
	return c.c.SSID(ctx, ifindex)
}

// Signal returns the signal strength in dBm of the station an interface is
// associated with. If there is no station, an error compatible with
// errors.Is(err, os.ErrNotExist) is returned.
func (c *Client) Signal(ctx context.Context, ifindex uint32) (int8, error) {
	return c.c.Signal(ctx, ifindex)
}

// Subscribe joins the nl80211 mlme multicast group on a dedicated socket and
// returns the resulting stream of events. The stream is closed when ctx is
// canceled or its Close method is called.
func (c *Client) Subscribe(ctx context.Context) (*EventStream, error) {
	return c.c.Subscribe(ctx)
}
