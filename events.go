package wifimon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/wavebar/wifimon/internal/nl80211"
)

// receiveBackoff throttles a stream whose socket keeps failing.
const receiveBackoff = 100 * time.Millisecond

// A receiver is a source of multicast notifications, typically a generic
// netlink socket joined to the nl80211 mlme group.
type receiver interface {
	Receive() ([]genetlink.Message, []netlink.Message, error)
	Close() error
}

// An EventStream delivers classified nl80211 notifications in the order the
// kernel sent them. Events are buffered without bound so a slow consumer never
// blocks the socket. Notifications which cannot be decoded are dropped.
type EventStream struct {
	r   receiver
	log Logger

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// newEventStream starts delivering events from r. The stream is closed when
// ctx is canceled.
func newEventStream(ctx context.Context, r receiver, log Logger) *EventStream {
	s := &EventStream{
		r:   r,
		log: loggerOrNoop(log),

		events: make(chan Event),
		done:   make(chan struct{}),
	}

	in := make(chan Event)
	s.wg.Add(2)
	go s.receive(in)
	go s.forward(in)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

// Events returns the channel on which events are delivered. The channel is
// closed after Close is called.
func (s *EventStream) Events() <-chan Event {
	return s.events
}

// Next blocks until an event arrives, ctx is canceled, or the stream is
// closed, in which case ErrClosed is returned.
func (s *EventStream) Next(ctx context.Context) (Event, error) {
	select {
	case e, ok := <-s.events:
		if !ok {
			return Event{}, ErrClosed
		}

		return e, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Close stops the stream and releases its socket. Events which were received
// but not yet consumed are discarded.
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		// Closing the socket unblocks a pending receive.
		s.closeErr = s.r.Close()
		s.wg.Wait()
	})

	return s.closeErr
}

// receive reads notifications from the socket and classifies them.
func (s *EventStream) receive(out chan<- Event) {
	defer s.wg.Done()
	defer close(out)

	for {
		msgs, _, err := s.r.Receive()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}

			s.log.Debugf("failed to receive notifications: %v", err)

			select {
			case <-s.done:
				return
			case <-time.After(receiveBackoff):
			}
			continue
		}

		for _, m := range msgs {
			e, err := parseEvent(m)
			if err != nil {
				s.log.Debugf("dropping %s notification: %v", nl80211.Command(m.Header.Command), err)
				continue
			}

			select {
			case out <- e:
			case <-s.done:
				return
			}
		}
	}
}

// forward queues events from in until the consumer takes them.
func (s *EventStream) forward(in <-chan Event) {
	defer s.wg.Done()
	defer close(s.events)

	var queue []Event
	for {
		var (
			out  chan<- Event
			next Event
		)
		if len(queue) > 0 {
			out = s.events
			next = queue[0]
		}

		select {
		case e, ok := <-in:
			if !ok {
				return
			}

			queue = append(queue, e)
		case out <- next:
			queue[0] = Event{}
			queue = queue[1:]
		case <-s.done:
			return
		}
	}
}

// parseEvent classifies a multicast notification by its command. Commands in
// the catalog which do not describe a connection change are unspecified, and
// commands outside it are unrecognized.
func parseEvent(m genetlink.Message) (Event, error) {
	cmd := nl80211.Command(m.Header.Command)
	e := Event{Command: cmd}

	switch cmd {
	case nl80211.CmdGetWiPhy:
		e.Kind = EventGetWiPhy
	case nl80211.CmdGetInterface:
		e.Kind = EventGetInterface
	case nl80211.CmdConnect:
		e.Kind = EventConnect
		if err := parseConnect(&e, m.Data); err != nil {
			return Event{}, err
		}
	case nl80211.CmdDisconnect:
		e.Kind = EventDisconnect
	default:
		if cmd.Known() {
			e.Kind = EventUnspecified
		} else {
			e.Kind = EventUnrecognized
		}
	}

	return e, nil
}

// parseConnect extracts the wiphy and interface index of a connect
// notification. A missing or malformed attribute leaves its field nil.
func parseConnect(e *Event, b []byte) error {
	if len(b) == 0 {
		return nil
	}

	ad, err := newDecoder(b)
	if err != nil {
		return err
	}

	for ad.Next() {
		switch nl80211.Attribute(ad.Type()) {
		case nl80211.AttrWiphy:
			if v, err := uint32Attr(ad.Type(), ad.Bytes()); err == nil {
				e.WiPhy = &v
			}
		case nl80211.AttrIfindex:
			if v, err := uint32Attr(ad.Type(), ad.Bytes()); err == nil {
				e.Ifindex = &v
			}
		}
	}

	if err := ad.Err(); err != nil {
		return errors.Join(ErrMalformedMessage, err)
	}

	return nil
}
