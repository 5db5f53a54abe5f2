// Command wifimon shows the Wi-Fi connection state of the system as a one
// line status bar.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/wavebar/wifimon"
)

var (
	// Commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// Version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// Date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// wifimonMain is the true entry point for wifimon. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func wifimonMain() error {
	// The status bar owns stdout.
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig(os.Args[1:])
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the program
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var src snapshotter

	client, err := wifimon.New(&wifimon.Config{
		RequestTimeout: cfg.RequestTimeout,
		Logger:         newLogger("nl80211"),
	})
	if err != nil {
		// Keep drawing the status bar, just without Wi-Fi.
		log.Errorf("Could not open nl80211: %v", err)
	} else {
		log.Info("Opened nl80211.")

		defer func() {
			if err := client.Close(); err != nil {
				log.Errorf("Could not close nl80211: %v", err)
			} else {
				log.Info("Closed nl80211.")
			}
		}()

		h := startManager(ctx, client, cfg)
		defer h.stop()

		src = h.manager
	}

	if cfg.Plain {
		printStatus(ctx, os.Stdout, src, cfg.Tick)
		return nil
	}

	p := tea.NewProgram(newStatusBar(src, cfg.Tick), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "status bar failed")
	}

	return nil
}

// A managerHandle refers to a Manager running in the background.
type managerHandle struct {
	manager *wifimon.Manager
	cancel  context.CancelFunc
	done    <-chan struct{}
}

func (h managerHandle) stop() {
	h.cancel()
	<-h.done
}

// A wifiSource answers Wi-Fi queries and delivers connection events.
type wifiSource interface {
	wifimon.Querier
	Subscribe(ctx context.Context) (*wifimon.EventStream, error)
}

var _ wifiSource = &wifimon.Client{}

// startManager subscribes to connection events, performs startup discovery and
// runs the Manager until the returned handle is stopped.
func startManager(ctx context.Context, client wifiSource, cfg *config) managerHandle {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before discovery so no connection change falls between the
	// two. Without events the Manager still refreshes the signal on ticks.
	var events <-chan wifimon.Event
	stream, err := client.Subscribe(ctx)
	if err != nil {
		log.Warnf("Could not subscribe to nl80211 events: %v", err)
	} else {
		events = stream.Events()
	}

	mgr := wifimon.NewManager(ctx, client, &wifimon.ManagerConfig{
		RefreshTicks: cfg.RefreshTicks,
		Logger:       newLogger("manager"),
	})

	log.Infof("Started in state %s.", mgr.Snapshot().State)

	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(cfg.Tick)
		defer ticker.Stop()

		err := mgr.Run(ctx, events, ticker.C)
		switch {
		case err == nil:
			log.Warn("Event stream ended.")
		case errors.Is(err, context.Canceled):
		default:
			log.Errorf("Manager stopped: %v", err)
		}

		if stream != nil {
			if err := stream.Close(); err != nil {
				log.Debugf("Could not close event stream: %v", err)
			}
		}
	}()

	return managerHandle{
		manager: mgr,
		cancel:  cancel,
		done:    done,
	}
}

// printStatus writes a status line whenever it changes until ctx is canceled.
func printStatus(ctx context.Context, w io.Writer, src snapshotter, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var last string
	for {
		line := unavailableLine()
		if src != nil {
			line = statusLine(src.Snapshot())
		}

		if line != last {
			_, _ = fmt.Fprintln(w, line)
			last = line
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// newLogger returns a logger for a subsystem which follows the level of the
// standard logger.
func newLogger(system string) *log.Entry {
	l := log.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(log.GetLevel())

	return l.WithField("system", system)
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := wifimonMain(); err != nil {
		log.WithError(err).Println("Failed running wifimon.")
		os.Exit(1)
	}
}
