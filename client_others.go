//go:build !linux
// +build !linux

package wifimon

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

// errUnimplemented is returned by all functions on platforms that
// do not have package wifimon implemented.
var errUnimplemented = errors.Join(
	ErrTransportUnavailable,
	fmt.Errorf("wifimon: not implemented on %s", runtime.GOOS),
)

// A client is the no-op implementation of the nl80211 transport.
type client struct{}

func newClient(_ *Config) (*client, error) { return nil, errUnimplemented }

func (*client) Close() error                                       { return errUnimplemented }
func (*client) DefaultInterface(_ context.Context) (uint32, error) { return 0, errUnimplemented }
func (*client) SSID(_ context.Context, _ uint32) (string, error)   { return "", errUnimplemented }
func (*client) Signal(_ context.Context, _ uint32) (int8, error)   { return 0, errUnimplemented }
func (*client) Subscribe(_ context.Context) (*EventStream, error)  { return nil, errUnimplemented }
