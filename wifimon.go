// Package wifimon monitors the Wi-Fi association state of a Linux system using
// nl80211 over generic netlink.
//
// A Client owns the netlink sockets and answers queries about the default
// station interface. An EventStream delivers kernel connect and disconnect
// notifications. A Manager combines both into a Snapshot which a display layer
// can poll.
package wifimon

import (
	"errors"
	"fmt"

	"github.com/wavebar/wifimon/internal/nl80211"
)

var (
	// ErrTransportUnavailable is returned when nl80211 or its mlme multicast
	// group cannot be resolved. No monitoring is possible without them.
	ErrTransportUnavailable = errors.New("nl80211 transport unavailable")

	// ErrMalformedMessage is returned when a kernel message or one of its
	// attributes cannot be decoded.
	ErrMalformedMessage = errors.New("malformed nl80211 message")

	// ErrMalformedAttribute is returned when a fixed-width attribute has the
	// wrong length. It is always joined with ErrMalformedMessage.
	ErrMalformedAttribute = errors.New("malformed nl80211 attribute")

	// ErrClosed is returned by operations on a closed Client.
	ErrClosed = errors.New("client closed")
)

// DisconnectedSSID is the display SSID used when no network is associated.
const DisconnectedSSID = "Disconnected"

// A ConnectionState is the association state of the monitored interface.
type ConnectionState int

const (
	// StateDisconnected indicates that no network is associated.
	StateDisconnected ConnectionState = iota

	// StateConnected indicates that the interface is associated with a
	// network whose SSID is known.
	StateConnected
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// A Snapshot is a point-in-time copy of the monitored Wi-Fi state, suitable
// for rendering.
type Snapshot struct {
	// The association state.
	State ConnectionState

	// The network name, or DisconnectedSSID when not associated.
	SSID string

	// Signal quality as a percentage in the range 0-100.
	Signal int
}

// An EventKind classifies a kernel notification.
type EventKind int

const (
	// EventUnspecified is an nl80211 notification with an unspecified command.
	EventUnspecified EventKind = iota

	// EventGetWiPhy is a wiphy notification.
	EventGetWiPhy

	// EventGetInterface is an interface notification.
	EventGetInterface

	// EventConnect indicates that an interface connected to a network.
	EventConnect

	// EventDisconnect indicates that an interface disconnected from a network.
	EventDisconnect

	// EventUnrecognized is a notification whose command is not in the
	// catalog. The raw command is kept in Event.Command.
	EventUnrecognized
)

// String returns the string representation of an EventKind.
func (k EventKind) String() string {
	switch k {
	case EventUnspecified:
		return "unspecified"
	case EventGetWiPhy:
		return "get wiphy"
	case EventGetInterface:
		return "get interface"
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// An Event is a classified nl80211 multicast notification.
type Event struct {
	// The classification of the notification.
	Kind EventKind

	// The raw command code carried by the notification.
	Command nl80211.Command

	// For EventConnect: the wiphy and interface index of the connected
	// interface. Either may be nil if the kernel omitted it or sent it
	// malformed.
	WiPhy   *uint32
	Ifindex *uint32
}

// String returns the string representation of an Event.
func (e Event) String() string {
	switch e.Kind {
	case EventConnect:
		return fmt.Sprintf("connect(wiphy: %s, ifindex: %s)", optString(e.WiPhy), optString(e.Ifindex))
	case EventUnrecognized:
		return fmt.Sprintf("unrecognized(%d)", uint8(e.Command))
	default:
		return e.Kind.String()
	}
}

func optString(v *uint32) string {
	if v == nil {
		return "none"
	}

	return fmt.Sprintf("%d", *v)
}

// QualityPercent converts a signal strength in dBm to a quality percentage.
// The conventional -100 to -50 dBm range maps linearly onto 0-100; values
// outside it are clamped.
func QualityPercent(dbm int8) int {
	q := 2 * (int(dbm) + 100)
	switch {
	case q < 0:
		return 0
	case q > 100:
		return 100
	default:
		return q
	}
}
