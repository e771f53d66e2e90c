// Package loader fetches remote collections of JSON records.
//
// Every Load issues exactly one GET and resolves its Collection once:
// Loading -> Ready with the records in server order, or Loading -> Failed with
// a *FetchError. Failures are logged and recorded, never returned to the
// caller, and loads started together never affect each other.
package loader

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const journalTimeout = 5 * time.Second

// Journal receives the outcome of every applied load
type Journal interface {
	RecordLoad(ctx context.Context, entry models.LoadEntry) error
}

// Observer is notified once a collection resolves
type Observer func(*Collection)

type Option func(*Loader)

func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.client = client }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

func WithJournal(j Journal) Option {
	return func(l *Loader) { l.journal = j }
}

func WithObserver(o Observer) Option {
	return func(l *Loader) { l.observer = o }
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

type Loader struct {
	client   *http.Client
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	journal  Journal
	observer Observer
	timeout  time.Duration
}

func New(opts ...Option) *Loader {
	l := &Loader{client: http.DefaultClient}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logrus.New()
		l.logger.SetOutput(io.Discard)
	}
	return l
}

// Load starts the single load attempt for src and returns the Loading
// collection immediately. Cancelling ctx has the same effect as Detach.
func (l *Loader) Load(ctx context.Context, src Source) *Collection {
	ctx, cancel := context.WithCancel(ctx)
	c := newCollection(src.Name, cancel)
	go l.run(ctx, src, c)
	return c
}

// LoadAll starts one independent load per source
func (l *Loader) LoadAll(ctx context.Context, srcs []Source) []*Collection {
	cols := make([]*Collection, len(srcs))
	for i, src := range srcs {
		cols[i] = l.Load(ctx, src)
	}
	return cols
}

// WaitAll blocks until every collection has finished its attempt. Only ctx
// errors are returned; fetch failures stay on their collection.
func WaitAll(ctx context.Context, cols ...*Collection) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cols {
		c := c
		g.Go(func() error {
			return c.Wait(gctx)
		})
	}
	return g.Wait()
}

// Fetch performs one GET against src and decodes the body
func (l *Loader) Fetch(ctx context.Context, src Source) (Page, error) {
	rawURL, err := src.URL()
	if err != nil {
		return Page{}, &FetchError{Collection: src.Name, Kind: ErrRequest, Err: err}
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, &FetchError{Collection: src.Name, Kind: ErrRequest, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return Page{}, &FetchError{Collection: src.Name, Kind: ErrRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &FetchError{Collection: src.Name, Kind: ErrStatus, StatusCode: resp.StatusCode}
	}

	page, err := decodePage(resp.Body, src)
	if err != nil {
		return Page{}, &FetchError{Collection: src.Name, Kind: ErrDecode, Err: err}
	}
	return page, nil
}

func (l *Loader) run(ctx context.Context, src Source, c *Collection) {
	defer close(c.done)
	defer c.cancel()

	start := time.Now()
	page, err := l.Fetch(ctx, src)
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"collection": src.Name,
		"endpoint":   src.Endpoint,
		"duration":   elapsed,
	}

	// the owner is gone; the response must not be applied
	if ctx.Err() != nil || !c.resolve(page, err) {
		l.logger.WithFields(fields).Debug("Discarding late collection response")
		return
	}

	entry := models.LoadEntry{
		Collection: src.Name,
		Endpoint:   src.Endpoint,
		Status:     c.Status(),
		Items:      len(page.Items),
		Duration:   elapsed,
		At:         start,
	}
	if err != nil {
		entry.Items = 0
		entry.Error = err.Error()
		l.logger.WithFields(fields).WithError(err).Error("Failed to load collection")
	} else {
		l.logger.WithFields(fields).WithField("items", len(page.Items)).Info("Loaded collection")
	}

	l.record(entry)
	if l.observer != nil {
		l.observer(c)
	}
}

func (l *Loader) record(entry models.LoadEntry) {
	if l.metrics != nil {
		l.metrics.Loads.WithLabelValues(entry.Collection, entry.Status.String()).Inc()
		l.metrics.LoadLatency.WithLabelValues(entry.Collection).Observe(entry.Duration.Seconds())
		l.metrics.LoadedRecords.WithLabelValues(entry.Collection).Set(float64(entry.Items))
	}

	if l.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := l.journal.RecordLoad(ctx, entry); err != nil {
		l.logger.WithError(err).WithField("collection", entry.Collection).Warn("Failed to journal load")
	}
}
