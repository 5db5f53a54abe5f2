package main

import (
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/wavebar/wifimon"
)

const (
	defaultTick = 100 * time.Millisecond
)

type config struct {
	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`
	Debug       bool `long:"debug" description:"Start wifimon in debug mode"`
	Plain       bool `long:"plain" description:"Print a status line on every change instead of drawing a status bar"`

	Tick           time.Duration `long:"tick" description:"Interval between status bar updates"`
	RefreshTicks   int           `long:"refresh-ticks" description:"Number of ticks between signal strength refreshes"`
	RequestTimeout time.Duration `long:"request-timeout" description:"Upper bound for a single nl80211 request"`
}

// loadConfig parses command line arguments on top of the defaults.
func loadConfig(args []string) (*config, error) {
	cfg := config{
		Tick:           defaultTick,
		RefreshTicks:   wifimon.DefaultRefreshTicks,
		RequestTimeout: wifimon.DefaultRequestTimeout,
	}

	if _, err := flags.NewParser(&cfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Tick <= 0 {
		return nil, errors.Errorf("tick must be positive, got %v", cfg.Tick)
	}

	if cfg.RefreshTicks <= 0 {
		return nil, errors.Errorf("refresh-ticks must be positive, got %d", cfg.RefreshTicks)
	}

	if cfg.RequestTimeout <= 0 {
		return nil, errors.Errorf("request-timeout must be positive, got %v", cfg.RequestTimeout)
	}

	return &cfg, nil
}
