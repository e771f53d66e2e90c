// Package dashboard owns the clocks and collections shown together on one
// screen. It is the single place that starts and tears them down, so a
// collection that is replaced or a board that is closed never receives a
// late response.
package dashboard

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
)

// Board is a registry of running clocks and loaded collections, kept in
// insertion order. It is safe for concurrent use.
type Board struct {
	logger *logrus.Logger

	mu            sync.RWMutex
	clocks        []*clock.Clock
	byCountry     map[string]*clock.Clock
	collections   []*loader.Collection
	byName        map[string]*loader.Collection
	displayFields map[string]string
	closed        bool
}

func New(logger *logrus.Logger) *Board {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Board{
		logger:        logger,
		byCountry:     make(map[string]*clock.Clock),
		byName:        make(map[string]*loader.Collection),
		displayFields: make(map[string]string),
	}
}

// AddClock registers a started clock. A clock for the same country replaces
// and stops the previous one.
func (b *Board) AddClock(c *clock.Clock) {
	snap, _ := c.Snapshot()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		c.Stop()
		return
	}
	old, replaced := b.byCountry[snap.Country]
	b.byCountry[snap.Country] = c
	if replaced {
		for i, existing := range b.clocks {
			if existing == old {
				b.clocks[i] = c
			}
		}
	} else {
		b.clocks = append(b.clocks, c)
	}
	b.mu.Unlock()

	if replaced {
		old.Stop()
	}
}

// AddCollection registers an in-flight or resolved collection. A collection
// with the same name replaces the previous one, which is detached so its
// response is discarded.
func (b *Board) AddCollection(col *loader.Collection, displayField string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		col.Detach()
		return
	}
	old, replaced := b.byName[col.Name()]
	b.byName[col.Name()] = col
	b.displayFields[col.Name()] = displayField
	if replaced {
		for i, existing := range b.collections {
			if existing == old {
				b.collections[i] = col
			}
		}
	} else {
		b.collections = append(b.collections, col)
	}
	b.mu.Unlock()

	if replaced {
		b.logger.WithField("collection", col.Name()).Debug("Replacing collection")
		old.Detach()
	}
}

func (b *Board) Clock(country string) (*clock.Clock, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.byCountry[country]
	return c, ok
}

func (b *Board) Clocks() []*clock.Clock {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*clock.Clock(nil), b.clocks...)
}

// Countries returns the registered countries in insertion order
func (b *Board) Countries() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.clocks))
	for _, c := range b.clocks {
		snap, _ := c.Snapshot()
		out = append(out, snap.Country)
	}
	return out
}

func (b *Board) Collection(name string) (*loader.Collection, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	col, ok := b.byName[name]
	return col, ok
}

func (b *Board) Collections() []*loader.Collection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*loader.Collection(nil), b.collections...)
}

// DisplayField returns the record field used as the visible label of a
// collection's items
func (b *Board) DisplayField(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.displayFields[name]
}

// Wait blocks until every registered collection is resolved or detached
func (b *Board) Wait(ctx context.Context) error {
	return loader.WaitAll(ctx, b.Collections()...)
}

// Close stops every clock and detaches every collection. Later additions are
// torn down immediately.
func (b *Board) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	clocks, collections := b.clocks, b.collections
	b.mu.Unlock()

	for _, c := range clocks {
		c.Stop()
	}
	for _, col := range collections {
		col.Detach()
	}
	b.logger.WithFields(logrus.Fields{
		"clocks":      len(clocks),
		"collections": len(collections),
	}).Debug("Dashboard closed")
}
