// Package record periodically collects readings and persists them to the
// configured sinks.
package record

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.hostsense.dev/hostsense/collect"
	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/sensor"
)

// DefaultSchedule is used when the config does not name one.
const DefaultSchedule = "1m"

// A Batch is one collection pass bound for storage. The recording time
// lives here, not on the readings, so a pass stays idempotent while its
// persisted form is still ordered in time.
type Batch struct {
	ID         string           `json:"id"`
	RecordedAt time.Time        `json:"recorded_at"`
	Readings   []sensor.Reading `json:"readings"`
}

// A Sink persists batches.
type Sink interface {
	Store(ctx context.Context, batch Batch) error
	Close(ctx context.Context) error
}

// Service runs collection passes on a schedule and fans every batch out to
// its sinks. A sink failure is logged and skipped; recording never stops
// because one destination is down.
type Service struct {
	collector *collect.Collector
	scheduler gocron.Scheduler
	clock     clock.Clock
	sinks     []Sink
	logger    golog.Logger
}

// New builds a recording service from conf. Sinks connect eagerly so a bad
// destination surfaces at startup instead of on the first tick.
func New(ctx context.Context, conf *config.Record, collector *collect.Collector, logger golog.Logger) (*Service, error) {
	if conf == nil || (conf.Mongo == nil && conf.File == nil) {
		return nil, errors.New("record needs at least one of mongo or file configured")
	}
	var sinks []Sink
	if conf.Mongo != nil {
		mongoSink, err := newMongoSink(ctx, *conf.Mongo)
		if err != nil {
			return nil, errors.Wrap(err, "cannot connect mongo sink")
		}
		sinks = append(sinks, mongoSink)
	}
	if conf.File != nil {
		sinks = append(sinks, newFileSink(*conf.File))
	}
	return newService(collector, clock.New(), sinks, logger)
}

func newService(collector *collect.Collector, clk clock.Clock, sinks []Sink, logger golog.Logger) (*Service, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Service{
		collector: collector,
		scheduler: scheduler,
		clock:     clk,
		sinks:     sinks,
		logger:    logger,
	}, nil
}

// Start schedules the recording job and starts the scheduler. The schedule
// is either a Go duration or a crontab expression.
func (s *Service) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	var jobType gocron.JobDefinition
	if interval, err := time.ParseDuration(schedule); err == nil {
		jobType = gocron.DurationJob(interval)
	} else {
		jobType = gocron.CronJob(schedule, false)
	}
	job, err := s.scheduler.NewJob(
		jobType,
		gocron.NewTask(func() {
			s.CaptureNow(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrapf(err, "cannot schedule recording job %q", schedule)
	}
	s.logger.Infow("recording readings", "schedule", schedule, "job", job.ID())
	s.scheduler.Start()
	return nil
}

// CaptureNow runs one collection pass and stores the batch in every sink.
func (s *Service) CaptureNow(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	batch := Batch{
		ID:         uuid.New().String(),
		RecordedAt: s.clock.Now().UTC(),
		Readings:   s.collector.Collect(ctx),
	}
	for _, sink := range s.sinks {
		if err := sink.Store(ctx, batch); err != nil {
			s.logger.Errorw("cannot store batch", "batch", batch.ID, "error", err)
		}
	}
}

// Close stops the scheduler and closes every sink.
func (s *Service) Close(ctx context.Context) error {
	err := s.scheduler.Shutdown()
	for _, sink := range s.sinks {
		err = multierr.Combine(err, sink.Close(ctx))
	}
	return err
}
