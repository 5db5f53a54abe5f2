package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/wavebar/wifimon"
)

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		s    wifimon.Snapshot
		want string
	}{
		{
			name: "disconnected",
			s:    wifimon.Snapshot{State: wifimon.StateDisconnected, SSID: wifimon.DisconnectedSSID},
			want: "󰤮 0% Disconnected",
		},
		{
			name: "weak",
			s:    wifimon.Snapshot{State: wifimon.StateConnected, SSID: "HomeNet", Signal: 10},
			want: "󰤯 10% HomeNet",
		},
		{
			name: "fair",
			s:    wifimon.Snapshot{State: wifimon.StateConnected, SSID: "HomeNet", Signal: 50},
			want: "󰤢 50% HomeNet",
		},
		{
			name: "good",
			s:    wifimon.Snapshot{State: wifimon.StateConnected, SSID: "HomeNet", Signal: 80},
			want: "󰤥 80% HomeNet",
		},
		{
			name: "full",
			s:    wifimon.Snapshot{State: wifimon.StateConnected, SSID: "HomeNet", Signal: 100},
			want: "󰤨 100% HomeNet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, statusLine(tt.s)); diff != "" {
				t.Fatalf("unexpected status line (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatusBarPollsOnTick(t *testing.T) {
	src := &fakeSource{snap: wifimon.Snapshot{State: wifimon.StateDisconnected, SSID: wifimon.DisconnectedSSID}}
	m := newStatusBar(src, time.Second)

	if !strings.Contains(m.View(), "Disconnected") {
		t.Fatalf("unexpected initial view: %q", m.View())
	}

	src.snap = wifimon.Snapshot{State: wifimon.StateConnected, SSID: "HomeNet", Signal: 80}

	// Nothing changes until the next tick.
	if !strings.Contains(m.View(), "Disconnected") {
		t.Fatalf("view changed before tick: %q", m.View())
	}

	next, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected another tick to be scheduled")
	}

	if !strings.Contains(next.View(), "80% HomeNet") {
		t.Fatalf("unexpected view after tick: %q", next.View())
	}
}

func TestStatusBarUnavailable(t *testing.T) {
	m := newStatusBar(nil, time.Second)

	next, _ := m.Update(tickMsg(time.Now()))
	if !strings.Contains(next.View(), "wifi unavailable") {
		t.Fatalf("unexpected view: %q", next.View())
	}
}

func TestStatusBarQuit(t *testing.T) {
	m := newStatusBar(nil, time.Second)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", key.String())
		}

		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected quit message for %q", key.String())
		}
	}
}

func TestPrintStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	printStatus(ctx, &buf, &fakeSource{snap: wifimon.Snapshot{
		State:  wifimon.StateConnected,
		SSID:   "HomeNet",
		Signal: 80,
	}}, time.Hour)

	if diff := cmp.Diff("󰤥 80% HomeNet\n", buf.String()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}

	buf.Reset()
	printStatus(ctx, &buf, nil, time.Hour)

	if diff := cmp.Diff(unavailableLine()+"\n", buf.String()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

type fakeSource struct {
	snap wifimon.Snapshot
}

func (s *fakeSource) Snapshot() wifimon.Snapshot { return s.snap }
