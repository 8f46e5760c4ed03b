// Package logx keeps the application log in memory for the logs modal. Lines
// go to stderr only when FILEDESK_LOG_STDERR is set, since stdout and the
// terminal belong to the UI.
package logx

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"filedesk/internal/util"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{Debug: "DEBUG", Info: "INFO", Warn: "WARN", Error: "ERROR"}

func (l Level) String() string {
	if l < Debug || l > Error {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	}
	return Info, false
}

const capacity = 500

// ring holds the newest capacity lines; head is the slot written next.
type ring struct {
	lines [capacity]string
	head  int
	n     int
}

func (r *ring) push(s string) {
	r.lines[r.head] = s
	r.head = (r.head + 1) % capacity
	if r.n < capacity {
		r.n++
	}
}

func (r *ring) snapshot() []string {
	out := make([]string, 0, r.n)
	start := (r.head - r.n + capacity) % capacity
	for i := 0; i < r.n; i++ {
		out = append(out, r.lines[(start+i)%capacity])
	}
	return out
}

var (
	mu       sync.Mutex
	level    = Info
	buf      ring
	toStderr bool
)

func SetLevel(l Level) { mu.Lock(); level = l; mu.Unlock() }

func SetLevelFromEnv() {
	if l, ok := ParseLevel(os.Getenv("FILEDESK_LOG_LEVEL")); ok {
		SetLevel(l)
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("FILEDESK_LOG_STDERR"))); v != "" {
		mu.Lock()
		toStderr = v != "0" && v != "false" && v != "no"
		mu.Unlock()
	}
}

func Debugf(format string, a ...any) { logf(Debug, format, a...) }
func Infof(format string, a ...any)  { logf(Info, format, a...) }
func Warnf(format string, a ...any)  { logf(Warn, format, a...) }
func Errorf(format string, a ...any) { logf(Error, format, a...) }

func logf(l Level, format string, a ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	msg := util.RedactSecrets(fmt.Sprintf(format, a...))
	line := fmt.Sprintf("%s %-5s %s", time.Now().Format("15:04:05.000"), l, msg)
	buf.push(line)
	if toStderr {
		fmt.Fprintln(os.Stderr, line)
	}
}

// Dump is the buffer as one string, oldest line first.
func Dump() string { return strings.Join(Lines(), "\n") }

func Lines() []string {
	mu.Lock()
	defer mu.Unlock()
	return buf.snapshot()
}

// Reset empties the buffer.
func Reset() {
	mu.Lock()
	buf = ring{}
	mu.Unlock()
}
