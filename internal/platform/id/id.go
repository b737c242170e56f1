package id

import (
	"strconv"
	"sync"

	"thermolab/internal/platform/clock"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// TimeSuffix builds short, human-readable session ids: a prefix followed by
// the trailing digits of the current Unix millisecond clock. Within one
// process the clock value is forced to increase, so two sessions started in
// the same millisecond still get different ids. Across processes ids only
// need to be unique almost always.
type TimeSuffix struct {
	Clock  clock.Clock
	Prefix string
	Digits int

	mu   sync.Mutex
	last int64
}

func NewTimeSuffix(clk clock.Clock) *TimeSuffix {
	return &TimeSuffix{Clock: clk, Prefix: "S", Digits: 6}
}

func (g *TimeSuffix) New() string {
	g.mu.Lock()
	millis := g.Clock.Now().UnixMilli()
	if millis <= g.last {
		millis = g.last + 1
	}
	g.last = millis
	g.mu.Unlock()

	digits := g.Digits
	if digits <= 0 {
		digits = 6
	}
	s := strconv.FormatInt(millis, 10)
	if len(s) > digits {
		s = s[len(s)-digits:]
	}
	return g.Prefix + s
}
