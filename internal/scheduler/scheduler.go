// Package scheduler runs the periodic dashboard report.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const DefaultSchedule = "@every 1m"

// Board lists what the report covers
type Board interface {
	Clocks() []*clock.Clock
	Collections() []*loader.Collection
}

// SampleRecorder persists clock readings; journal.Repository satisfies it
type SampleRecorder interface {
	RecordSample(ctx context.Context, sample models.Sample) error
}

type Scheduler struct {
	ctx      context.Context
	board    Board
	recorder SampleRecorder
	logger   *logrus.Logger
	schedule string
	cron     *cron.Cron
}

// NewScheduler creates a scheduler; recorder may be nil when no journal is
// configured.
func NewScheduler(ctx context.Context, board Board, recorder SampleRecorder, logger *logrus.Logger, schedule string) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		ctx:      ctx,
		board:    board,
		recorder: recorder,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start the scheduler
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.report)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Report scheduler started")
	return nil
}

// report logs the state of every clock and collection and journals a sample
// of each visible clock
func (s *Scheduler) report() {
	if s.ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	visible := 0
	for _, c := range s.board.Clocks() {
		snap, shown := c.Snapshot()
		if !snap.Visible || !shown {
			continue
		}
		visible++

		s.logger.WithFields(logrus.Fields{
			"country":  snap.Country,
			"timezone": snap.Timezone,
			"time":     snap.FormattedTime,
			"date":     snap.FormattedDate,
			"offset":   snap.UTCOffset,
			"updates":  snap.Updates,
		}).Debug("Clock")

		if s.recorder == nil {
			continue
		}
		sample := models.Sample{
			Country:       snap.Country,
			Timezone:      snap.Timezone,
			FormattedTime: snap.FormattedTime,
			FormattedDate: snap.FormattedDate,
			Updates:       snap.Updates,
			At:            snap.Instant,
		}
		if err := s.recorder.RecordSample(ctx, sample); err != nil {
			s.logger.WithError(err).WithField("country", snap.Country).Error("Failed to record clock sample")
		}
	}

	counts := map[models.Status]int{}
	for _, col := range s.board.Collections() {
		st := col.Status()
		counts[st]++

		entry := s.logger.WithFields(logrus.Fields{
			"collection": col.Name(),
			"status":     st.String(),
			"items":      len(col.Items()),
			"total":      col.Total(),
		})
		if err := col.Err(); err != nil {
			entry.WithError(err).Debug("Collection")
		} else {
			entry.Debug("Collection")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"clocks_visible":      visible,
		"collections_ready":   counts[models.StatusReady],
		"collections_failed":  counts[models.StatusFailed],
		"collections_loading": counts[models.StatusLoading],
	}).Info("Dashboard report")
}

// Stop the scheduler and wait for a running report to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
