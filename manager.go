package wifimon

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"
)

// DefaultRefreshTicks is the number of ticks between signal refreshes.
const DefaultRefreshTicks = 100

// A Querier answers questions about the system's Wi-Fi state. *Client
// implements Querier.
type Querier interface {
	DefaultInterface(ctx context.Context) (uint32, error)
	SSID(ctx context.Context, ifindex uint32) (string, error)
	Signal(ctx context.Context, ifindex uint32) (int8, error)
}

// ManagerConfig configures a Manager. The zero value is valid.
type ManagerConfig struct {
	// RefreshTicks is the number of calls to Tick between signal refreshes
	// while connected. If zero, DefaultRefreshTicks is used.
	RefreshTicks int

	// Logger receives diagnostic messages. If nil, nothing is logged.
	Logger Logger
}

// A Manager tracks the connection state of the default station interface.
//
// Apply, Tick and Run drive the state machine and must be called from a single
// goroutine. Snapshot is safe for concurrent use.
type Manager struct {
	q       Querier
	log     Logger
	refresh int

	ticks   int
	ifindex uint32

	mu   sync.RWMutex
	snap Snapshot
}

// NewManager creates a Manager and performs startup discovery: it looks up the
// default station interface and, if it is associated, fetches the SSID and
// signal. Discovery failures are logged and leave the Manager disconnected.
func NewManager(ctx context.Context, q Querier, cfg *ManagerConfig) *Manager {
	if cfg == nil {
		cfg = &ManagerConfig{}
	}

	refresh := cfg.RefreshTicks
	if refresh <= 0 {
		refresh = DefaultRefreshTicks
	}

	m := &Manager{
		q:       q,
		log:     loggerOrNoop(cfg.Logger),
		refresh: refresh,
		snap:    disconnected(),
	}

	ifindex, err := q.DefaultInterface(ctx)
	if err != nil {
		m.log.Warnf("failed to discover default interface: %v", err)
		return m
	}
	if ifindex == 0 {
		m.log.Infof("no station interface found")
		return m
	}

	m.connect(ctx, ifindex)
	return m
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snap
}

// Apply updates the state in response to an event. A connect event which
// names an interface refreshes the SSID and signal of that interface; a
// disconnect event resets the state. Other events are ignored.
func (m *Manager) Apply(ctx context.Context, e Event) {
	switch e.Kind {
	case EventConnect:
		if e.Ifindex == nil {
			m.log.Debugf("ignoring %s without interface index", e)
			return
		}

		m.connect(ctx, *e.Ifindex)
	case EventDisconnect:
		m.log.Infof("disconnected")
		m.set(disconnected())
	}
}

// Tick advances the refresh counter. Every RefreshTicks calls the counter is
// reset and, while connected, the signal is fetched again. A failed refresh
// keeps the previous signal.
func (m *Manager) Tick(ctx context.Context) {
	m.ticks++
	if m.ticks < m.refresh {
		return
	}
	m.ticks = 0

	if m.Snapshot().State != StateConnected {
		return
	}

	dbm, err := m.q.Signal(ctx, m.ifindex)
	if err != nil {
		m.log.Debugf("failed to refresh signal of interface %d: %v", m.ifindex, err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Signal = QualityPercent(dbm)
}

// Run applies events and ticks until ctx is canceled or events is closed. A
// nil events channel is never ready, so the Manager only ticks.
func (m *Manager) Run(ctx context.Context, events <-chan Event, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}

			m.log.Debugf("event: %s", e)
			m.Apply(ctx, e)
		case <-ticks:
			m.Tick(ctx)
		}
	}
}

// connect records ifindex as the monitored interface and fetches its SSID and
// signal. An interface without an SSID is treated as disconnected.
func (m *Manager) connect(ctx context.Context, ifindex uint32) {
	m.ifindex = ifindex

	ssid, err := m.q.SSID(ctx, ifindex)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		m.log.Warnf("failed to fetch SSID of interface %d: %v", ifindex, err)
	}
	if err != nil || ssid == "" {
		m.set(disconnected())
		return
	}

	snap := Snapshot{
		State: StateConnected,
		SSID:  ssid,
	}

	dbm, err := m.q.Signal(ctx, ifindex)
	if err != nil {
		m.log.Debugf("failed to fetch signal of interface %d: %v", ifindex, err)
	} else {
		snap.Signal = QualityPercent(dbm)
	}

	m.log.Infof("connected to %q on interface %d, signal %d%%", ssid, ifindex, snap.Signal)
	m.set(snap)
}

func (m *Manager) set(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap = s
}

func disconnected() Snapshot {
	return Snapshot{
		State:  StateDisconnected,
		SSID:   DisconnectedSSID,
		Signal: 0,
	}
}
