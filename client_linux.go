//go:build linux
// +build linux

package wifimon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/wavebar/wifimon/internal/nl80211"
	"golang.org/x/sys/unix"
)

// maxReceives bounds the number of socket reads spent skipping replies to
// other requests.
const maxReceives = 64

// A client is the Linux implementation of the nl80211 transport. A single
// goroutine owns the request socket; callers hand it requests over a channel
// and wait for the reply on a one-shot channel, so only one request is ever in
// flight.
type client struct {
	c             *genetlink.Conn
	familyID      uint16
	familyVersion uint8
	mlme          uint32

	timeout time.Duration
	log     Logger

	// dial opens the dedicated receive socket used by Subscribe.
	dial func() (groupConn, error)

	reqs chan request
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// A request is a single message handed to the goroutine owning the socket.
type request struct {
	msg      genetlink.Message
	flags    netlink.HeaderFlags
	deadline time.Time
	reply    chan<- response
}

type response struct {
	msgs []genetlink.Message
	err  error
}

// newClient dials a generic netlink connection and verifies that nl80211
// and its mlme multicast group are available for use by this package.
func newClient(cfg *Config) (*client, error) {
	c, err := genetlink.Dial(nil)
	if err != nil {
		return nil, errors.Join(ErrTransportUnavailable, err)
	}

	// Make a best effort to apply the strict options set to provide better
	// errors and validation. We don't apply Strict in the constructor because
	// we can't guarantee it will always work on older kernels.
	for _, o := range []netlink.ConnOption{
		netlink.ExtendedAcknowledge,
		netlink.GetStrictCheck,
	} {
		_ = c.SetOption(o, true)
	}

	return initClient(c, cfg)
}

func initClient(c *genetlink.Conn, cfg *Config) (*client, error) {
	family, err := c.GetFamily(nl80211.FamilyName)
	if err != nil {
		// Ensure the genl socket is closed on error to avoid leaking file
		// descriptors.
		_ = c.Close()
		return nil, errors.Join(ErrTransportUnavailable, err)
	}

	var (
		mlme  uint32
		found bool
	)
	for _, group := range family.Groups {
		if group.Name == nl80211.GroupMlme {
			mlme = group.ID
			found = true
			break
		}
	}

	if !found {
		_ = c.Close()
		return nil, errors.Join(
			ErrTransportUnavailable,
			fmt.Errorf("%s multicast group %q not found", nl80211.FamilyName, nl80211.GroupMlme),
		)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	cl := &client{
		c:             c,
		familyID:      family.ID,
		familyVersion: family.Version,
		mlme:          mlme,

		timeout: timeout,
		log:     loggerOrNoop(cfg.Logger),

		dial: func() (groupConn, error) {
			return genetlink.Dial(nil)
		},

		reqs: make(chan request),
		done: make(chan struct{}),
	}

	cl.log.Debugf("resolved %s family %d version %d, mlme group %d",
		nl80211.FamilyName, family.ID, family.Version, mlme)

	cl.wg.Add(1)
	go cl.serve()

	return cl, nil
}

// Close stops the goroutine owning the request socket and closes the socket.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		// Closing the socket unblocks a pending receive.
		c.closeErr = c.c.Close()
		c.wg.Wait()
	})

	return c.closeErr
}

// DefaultInterface requests that nl80211 dump all WiFi interfaces and returns
// the index of the first one operating in station mode, or 0 if there is none.
func (c *client) DefaultInterface(ctx context.Context) (uint32, error) {
	// Ask nl80211 to dump a list of all WiFi interfaces
	msgs, err := c.get(ctx, nl80211.CmdGetInterface, netlink.Dump, 0)
	if err != nil {
		return 0, err
	}

	return parseDefaultInterface(msgs), nil
}

// SSID requests the SSID of the network the specified interface is associated
// with.
func (c *client) SSID(ctx context.Context, ifindex uint32) (string, error) {
	msgs, err := c.get(ctx, nl80211.CmdGetInterface, 0, ifindex)
	if err != nil {
		return "", err
	}

	return parseSSID(msgs)
}

// Signal requests the signal strength in dBm of the station the specified
// interface is associated with.
func (c *client) Signal(ctx context.Context, ifindex uint32) (int8, error) {
	// The kernel only answers a station query without a MAC address as a dump.
	msgs, err := c.get(ctx, nl80211.CmdGetStation, netlink.Dump, ifindex)
	if err != nil {
		return 0, err
	}

	return parseSignal(msgs)
}

// Subscribe opens a dedicated receive socket joined to the nl80211 mlme
// multicast group and returns a stream of the events it delivers. The stream
// is closed when ctx is canceled or the stream's Close method is called.
func (c *client) Subscribe(ctx context.Context) (*EventStream, error) {
	select {
	case <-c.done:
		return nil, ErrClosed
	default:
	}

	conn, err := c.dial()
	if err != nil {
		return nil, errors.Join(ErrTransportUnavailable, err)
	}

	sub := newSubscription(conn, c.log)
	if err := sub.join(c.mlme); err != nil {
		_ = conn.Close()
		return nil, errors.Join(ErrTransportUnavailable, err)
	}

	return newEventStream(ctx, sub, c.log), nil
}

// get performs a request/response interaction with nl80211. A nonzero ifindex
// filters the request to that interface.
func (c *client) get(
	ctx context.Context,
	cmd nl80211.Command,
	flags netlink.HeaderFlags,
	ifindex uint32,
) ([]genetlink.Message, error) {
	ae := netlink.NewAttributeEncoder()
	if ifindex != 0 {
		encodeIfindex(ae, ifindex)
	}

	// Note: don't send netlink.Acknowledge or we get an extra message back from
	// the kernel which doesn't seem useful as of now.
	return c.execute(ctx, cmd, flags, ae)
}

// execute hands the specified command with additional header flags and input
// netlink request attributes to the goroutine owning the socket, and waits for
// the reply. The netlink.Request header flag is automatically set.
func (c *client) execute(
	ctx context.Context,
	cmd nl80211.Command,
	flags netlink.HeaderFlags,
	ae *netlink.AttributeEncoder,
) ([]genetlink.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := ae.Encode()
	if err != nil {
		return nil, err
	}

	// Never wait on the kernel without a bound.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	deadline, _ := ctx.Deadline()

	reply := make(chan response, 1)
	req := request{
		msg: genetlink.Message{
			Header: genetlink.Header{
				Command: uint8(cmd),
				Version: c.familyVersion,
			},
			Data: b,
		},
		flags:    netlink.Request | flags,
		deadline: deadline,
		reply:    reply,
	}

	select {
	case c.reqs <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}

	select {
	case res := <-reply:
		return res.msgs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// serve owns the request socket until the client is closed.
func (c *client) serve() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case req := <-c.reqs:
			msgs, err := c.roundTrip(req)
			req.reply <- response{msgs: msgs, err: err}
		}
	}
}

// roundTrip sends a single request and collects the replies whose sequence
// number matches it. Receive follows a multi-part dump to its done marker, so
// the first read holding a matching message completes the request. Reads which
// only carry replies to earlier requests are skipped, at most maxReceives
// times.
func (c *client) roundTrip(req request) ([]genetlink.Message, error) {
	if !req.deadline.IsZero() {
		// Best effort: not every socket supports deadlines, and the caller
		// stops waiting at its deadline regardless.
		_ = c.c.SetDeadline(req.deadline)
		defer func() { _ = c.c.SetDeadline(time.Time{}) }()
	}

	nreq, err := c.c.Send(req.msg, c.familyID, req.flags)
	if err != nil {
		return nil, err
	}

	cmd := nl80211.Command(req.msg.Header.Command)

	for i := 0; i < maxReceives; i++ {
		_, nmsgs, err := c.c.Receive()
		if err != nil {
			return nil, err
		}

		// An empty dump.
		if len(nmsgs) == 0 {
			return nil, nil
		}

		var (
			msgs    []genetlink.Message
			matched bool
		)
		for _, nm := range nmsgs {
			if nm.Header.Sequence != nreq.Header.Sequence {
				c.log.Debugf("discarding reply with sequence %d while waiting for %d",
					nm.Header.Sequence, nreq.Header.Sequence)
				continue
			}
			matched = true

			// Done markers and acknowledgements carry no nl80211 payload;
			// errors were already returned by Receive.
			if nm.Header.Type == netlink.Done || nm.Header.Type == netlink.Error {
				continue
			}

			var gm genetlink.Message
			if err := gm.UnmarshalBinary(nm.Data); err != nil {
				return nil, errors.Join(ErrMalformedMessage, err)
			}

			msgs = append(msgs, gm)
		}

		if matched {
			return msgs, nil
		}
	}

	return nil, fmt.Errorf("wifimon: %s: no reply after %d receives", cmd, maxReceives)
}

// A groupConn is the subset of *genetlink.Conn used to receive multicast
// notifications.
type groupConn interface {
	JoinGroup(group uint32) error
	LeaveGroup(group uint32) error
	Receive() ([]genetlink.Message, []netlink.Message, error)
	Close() error
}

var _ groupConn = &genetlink.Conn{}

// A subscription is a receive-only connection joined to nl80211 multicast
// groups.
type subscription struct {
	c   groupConn
	log Logger

	mu     sync.Mutex
	joined map[uint32]struct{}
}

func newSubscription(c groupConn, log Logger) *subscription {
	return &subscription{
		c:      c,
		log:    log,
		joined: make(map[uint32]struct{}),
	}
}

// join subscribes to a multicast group. Joining a group twice is a no-op.
func (s *subscription) join(group uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.joined[group]; ok {
		return nil
	}

	if err := s.c.JoinGroup(group); err != nil {
		return err
	}

	s.joined[group] = struct{}{}
	return nil
}

// Receive implements receiver.
func (s *subscription) Receive() ([]genetlink.Message, []netlink.Message, error) {
	msgs, nmsgs, err := s.c.Receive()
	if errors.Is(err, unix.ENOBUFS) {
		// The socket buffer overflowed; the kernel dropped notifications but
		// the subscription is still usable.
		s.log.Warnf("multicast receive buffer overrun, events were dropped")
	}

	return msgs, nmsgs, err
}

// Close leaves all joined groups and closes the connection.
func (s *subscription) Close() error {
	s.mu.Lock()
	for group := range s.joined {
		// Leave group on exit. Err is non-actionable
		_ = s.c.LeaveGroup(group)
		delete(s.joined, group)
	}
	s.mu.Unlock()

	return s.c.Close()
}
