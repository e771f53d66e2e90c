// Package clock implements a periodically refreshed, timezone and locale
// formatted clock.
//
// A Clock holds a ticker only while it is visible. Every tick reads the time
// source once and recomputes all display strings, so readers never observe a
// value that changed between ticks.
//
// Example usage:
//
//	c, err := clock.Start(clock.Config{
//	    Country:  "Italy",
//	    Timezone: "Europe/Rome",
//	    Locale:   "it-IT",
//	    Visible:  true,
//	}, clock.WithObserver(render))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Stop()
package clock

import (
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
)

const (
	DefaultInterval = 1000 * time.Millisecond
	DefaultCountry  = "Italia"
	DefaultTimezone = "Europe/Rome"
	DefaultLocale   = "it-IT"
)

// Config is the immutable configuration of one clock
type Config struct {
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
	Locale   string `json:"locale"`
	Visible  bool   `json:"visible"`
}

// Snapshot is the read-only state exposed to renderers
type Snapshot struct {
	Country       string    `json:"country"`
	Timezone      string    `json:"timezone"`
	Locale        string    `json:"locale"`
	Visible       bool      `json:"visible"`
	Instant       time.Time `json:"instant"`
	FormattedTime string    `json:"formatted_time"`
	FormattedDate string    `json:"formatted_date"`
	SecondsDigits Digits    `json:"seconds_digits"`
	ZoneBadge     string    `json:"zone_badge"`
	UTCOffset     string    `json:"utc_offset"`
	Updates       int       `json:"updates"`
}

// Observer is notified after every applied update. It runs on the tick
// goroutine and must not block for longer than the tick interval. An
// observer must not call Stop or SetVisible on its own clock.
type Observer func(Snapshot)

type Option func(*Clock)

// WithClock replaces the time source, typically with a clockwork.FakeClock
func WithClock(src clockwork.Clock) Option {
	return func(c *Clock) { c.source = src }
}

func WithInterval(d time.Duration) Option {
	return func(c *Clock) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Clock) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Clock) { c.metrics = m }
}

func WithObserver(o Observer) Option {
	return func(c *Clock) { c.observer = o }
}

// Clock is a single periodically refreshed clock. It is safe for concurrent use.
type Clock struct {
	format   formatter
	source   clockwork.Clock
	interval time.Duration
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	observer Observer

	// notifyMu is held across each update and its notification, and is
	// always taken before mu
	notifyMu sync.Mutex

	mu      sync.Mutex
	state   Snapshot
	gen     uint64
	done    chan struct{} // nil while no ticker is held
	stopped bool
}

// Start builds a clock from cfg and, when cfg.Visible is set, applies a first
// update and starts ticking. Invalid timezone or locale identifiers return a
// *ConstructionError.
func Start(cfg Config, opts ...Option) (*Clock, error) {
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}

	f, err := newFormatter(cfg.Timezone, cfg.Locale)
	if err != nil {
		return nil, err
	}

	c := &Clock{
		format:   f,
		source:   clockwork.NewRealClock(),
		interval: DefaultInterval,
		state: Snapshot{
			Country:   cfg.Country,
			Timezone:  cfg.Timezone,
			Locale:    cfg.Locale,
			Visible:   cfg.Visible,
			ZoneBadge: zoneBadge(cfg.Timezone),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}

	c.logger.WithFields(logrus.Fields{
		"country":  cfg.Country,
		"timezone": cfg.Timezone,
		"locale":   cfg.Locale,
		"visible":  cfg.Visible,
	}).Debug("Starting clock")

	if !cfg.Visible {
		return c, nil
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	snap := c.acquireLocked()
	c.mu.Unlock()
	c.notify(snap)

	return c, nil
}

// Stop releases the ticker. Once Stop has returned no update is applied and
// no observer call is running. Stop is idempotent and the clock cannot be
// restarted afterwards.
func (c *Clock) Stop() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	c.releaseLocked()

	c.logger.WithFields(logrus.Fields{
		"country": c.state.Country,
		"updates": c.state.Updates,
	}).Debug("Clock stopped")
}

// SetVisible shows or hides the clock. Hiding releases the ticker, showing
// acquires a new one and applies an immediate update.
func (c *Clock) SetVisible(visible bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.stopped || c.state.Visible == visible {
		c.mu.Unlock()
		return
	}

	c.state.Visible = visible
	if !visible {
		c.releaseLocked()
		c.mu.Unlock()
		return
	}

	snap := c.acquireLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Snapshot returns the latest state. The boolean is false when the clock
// has never been shown.
func (c *Clock) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.state.Updates > 0
}

// Running reports whether a ticker is currently held
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

func (c *Clock) acquireLocked() Snapshot {
	c.gen++
	done := make(chan struct{})
	c.done = done

	ticker := c.source.NewTicker(c.interval)
	c.applyLocked(c.source.Now())
	if c.metrics != nil {
		c.metrics.ActiveClocks.Inc()
	}

	go c.run(c.gen, ticker, done)
	return c.state
}

func (c *Clock) releaseLocked() {
	if c.done == nil {
		return
	}
	close(c.done)
	c.done = nil
	if c.metrics != nil {
		c.metrics.ActiveClocks.Dec()
	}
}

func (c *Clock) run(gen uint64, ticker clockwork.Ticker, done <-chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			if !c.tickAndNotify(gen) {
				return
			}
		}
	}
}

func (c *Clock) tickAndNotify(gen uint64) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	snap, ok := c.tick(gen)
	if !ok {
		return false
	}
	c.notify(snap)
	return true
}

func (c *Clock) tick(gen uint64) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// a ticker released while this tick was pending must not mutate state
	if c.gen != gen || c.done == nil {
		return Snapshot{}, false
	}
	c.applyLocked(c.source.Now())
	return c.state, true
}

func (c *Clock) applyLocked(now time.Time) {
	if prev := c.state.Instant; !prev.IsZero() && now.Before(prev) {
		now = prev
	}

	local := now.In(c.format.loc)
	c.state.Instant = now
	c.state.FormattedTime = c.format.time(now)
	c.state.FormattedDate = c.format.date(now)
	c.state.SecondsDigits = SplitSeconds(local.Second())
	c.state.UTCOffset = local.Format("-07:00")
	c.state.Updates++

	if c.metrics != nil {
		c.metrics.ClockTicks.WithLabelValues(c.state.Country).Inc()
	}
}

func (c *Clock) notify(snap Snapshot) {
	if c.observer != nil {
		c.observer(snap)
	}
}
