package loader

import (
	"context"
	"sync"

	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

// Collection is the state of one remote collection. It starts Loading and
// moves at most once to Ready or Failed.
type Collection struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.RWMutex
	status   models.Status
	items    []models.Record
	total    int
	err      error
	detached bool
}

func newCollection(name string, cancel context.CancelFunc) *Collection {
	return &Collection{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
		status: models.StatusLoading,
	}
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Status() models.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Items returns the records in server order. It is empty unless the
// collection is Ready. Records are shared and must be treated as read-only.
func (c *Collection) Items() []models.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Record, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the envelope total when the source declares one, otherwise the
// number of items
func (c *Collection) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// Err is non-nil only when the collection Failed
func (c *Collection) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Done is closed once the load attempt has finished, whether its result was
// applied or discarded
func (c *Collection) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until Done or ctx expires
func (c *Collection) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Detach releases the collection from its owner. The in-flight request is
// cancelled and any response arriving afterwards is discarded, leaving the
// collection in Loading.
func (c *Collection) Detach() {
	c.mu.Lock()
	c.detached = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Collection) Detached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detached
}

// resolve applies the outcome of the single load attempt. It reports false
// when the outcome was discarded.
func (c *Collection) resolve(page Page, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.detached || c.status.Terminal() {
		return false
	}
	if err != nil {
		c.status = models.StatusFailed
		c.err = err
		return true
	}
	c.status = models.StatusReady
	c.items = page.Items
	c.total = page.Total
	return true
}
