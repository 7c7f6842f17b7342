// Package common provides shared timing helpers.
package common

import (
	"fmt"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Timer measures one elapsed interval.
type Timer struct {
	start    time.Time
	duration time.Duration
	stopped  bool
	now      Clock
}

// NewTimer starts a timer reading time from now; nil means time.Now.
func NewTimer(now Clock) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{start: now(), now: now}
}

// Stop stops the timer and returns the elapsed duration. Later calls return
// the first result.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = t.now().Sub(t.start)
		t.stopped = true
	}
	return t.duration
}

// FormatElapsed renders d as [-][d.]hh:mm:ss[.fffffff], the constant
// time-span layout used in transcripts. The fraction has 100ns resolution and
// is omitted when zero.
func FormatElapsed(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	ticks := int64(d / 100)
	frac := ticks % 10_000_000
	secs := ticks / 10_000_000
	days := secs / 86400
	secs %= 86400
	h, m, s := secs/3600, (secs%3600)/60, secs%60

	out := sign
	if days > 0 {
		out += fmt.Sprintf("%d.", days)
	}
	out += fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if frac != 0 {
		out += fmt.Sprintf(".%07d", frac)
	}
	return out
}
