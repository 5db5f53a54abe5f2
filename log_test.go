package wifimon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestManagerLogsDiscoveryFailure(t *testing.T) {
	l := &recordLogger{}
	NewManager(context.Background(), &fakeQuerier{
		ifErr: errors.New("netlink receive: permission denied"),
	}, &ManagerConfig{Logger: l})

	if !l.contains("warn", "permission denied") {
		t.Fatalf("expected a warning about the failed discovery, got: %v", l.lines)
	}
}

func TestLoggerOrNoop(t *testing.T) {
	if _, ok := loggerOrNoop(nil).(noopLogger); !ok {
		t.Fatal("nil logger should be replaced with a no-op logger")
	}

	l := &recordLogger{}
	if got := loggerOrNoop(l); got != l {
		t.Fatalf("unexpected logger: %T", got)
	}
}

var _ Logger = &recordLogger{}

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Debugf(format string, args ...interface{}) { l.add("debug", format, args) }
func (l *recordLogger) Infof(format string, args ...interface{})  { l.add("info", format, args) }
func (l *recordLogger) Warnf(format string, args ...interface{})  { l.add("warn", format, args) }
func (l *recordLogger) Errorf(format string, args ...interface{}) { l.add("error", format, args) }

func (l *recordLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+": "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) contains(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range l.lines {
		if strings.HasPrefix(line, level+": ") && strings.Contains(line, substr) {
			return true
		}
	}

	return false
}
