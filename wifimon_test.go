package wifimon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wavebar/wifimon/internal/nl80211"
)

func TestQualityPercent(t *testing.T) {
	tests := []struct {
		dbm  int8
		want int
	}{
		{dbm: -128, want: 0},
		{dbm: -101, want: 0},
		{dbm: -100, want: 0},
		{dbm: -99, want: 2},
		{dbm: -75, want: 50},
		{dbm: -60, want: 80},
		{dbm: -50, want: 100},
		{dbm: -49, want: 100},
		{dbm: 0, want: 100},
		{dbm: 127, want: 100},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, QualityPercent(tt.dbm)); diff != "" {
			t.Fatalf("unexpected quality for %d dBm (-want +got):\n%s", tt.dbm, diff)
		}
	}
}

func TestQualityPercentRange(t *testing.T) {
	prev := -1
	for dbm := -128; dbm <= 0; dbm++ {
		q := QualityPercent(int8(dbm))

		want := 2 * (dbm + 100)
		if want < 0 {
			want = 0
		}
		if want > 100 {
			want = 100
		}

		if q != want {
			t.Fatalf("unexpected quality for %d dBm: want %d, got %d", dbm, want, q)
		}
		if q < prev {
			t.Fatalf("quality decreased from %d to %d at %d dBm", prev, q, dbm)
		}

		prev = q
	}
}

func TestConnectionStateString(t *testing.T) {
	tests := []struct {
		s    ConnectionState
		want string
	}{
		{s: StateDisconnected, want: "disconnected"},
		{s: StateConnected, want: "connected"},
		{s: 9, want: "unknown(9)"},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.s.String()); diff != "" {
			t.Fatalf("unexpected state string (-want +got):\n%s", diff)
		}
	}
}

func TestEventString(t *testing.T) {
	u32 := func(v uint32) *uint32 { return &v }

	tests := []struct {
		name string
		e    Event
		want string
	}{
		{
			name: "unspecified",
			e:    Event{Kind: EventUnspecified},
			want: "unspecified",
		},
		{
			name: "get interface",
			e:    Event{Kind: EventGetInterface, Command: nl80211.CmdGetInterface},
			want: "get interface",
		},
		{
			name: "connect without wiphy",
			e: Event{
				Kind:    EventConnect,
				Command: nl80211.CmdConnect,
				Ifindex: u32(5),
			},
			want: "connect(wiphy: none, ifindex: 5)",
		},
		{
			name: "connect",
			e: Event{
				Kind:    EventConnect,
				Command: nl80211.CmdConnect,
				WiPhy:   u32(0),
				Ifindex: u32(3),
			},
			want: "connect(wiphy: 0, ifindex: 3)",
		},
		{
			name: "disconnect",
			e:    Event{Kind: EventDisconnect, Command: nl80211.CmdDisconnect},
			want: "disconnect",
		},
		{
			name: "unrecognized",
			e:    Event{Kind: EventUnrecognized, Command: 200},
			want: "unrecognized(200)",
		},
		{
			name: "out of range kind",
			e:    Event{Kind: 42},
			want: "unknown(42)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.e.String()); diff != "" {
				t.Fatalf("unexpected event string (-want +got):\n%s", diff)
			}
		})
	}
}
