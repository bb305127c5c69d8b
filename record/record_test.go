package record

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.hostsense.dev/hostsense/collect"
	"go.hostsense.dev/hostsense/config"
	"go.hostsense.dev/hostsense/registry"
	"go.hostsense.dev/hostsense/sensor/fake"
)

type captureSink struct {
	mu      sync.Mutex
	batches []Batch
	closed  bool
}

func (s *captureSink) Store(_ context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

type failingSink struct{}

func (s *failingSink) Store(context.Context, Batch) error {
	return errors.New("destination offline")
}

func (s *failingSink) Close(context.Context) error { return nil }

func testCollector(t *testing.T, logger golog.Logger) *collect.Collector {
	t.Helper()
	reg := registry.New()
	test.That(t, reg.Register("CPU Usage", fake.New("CPU Usage", 0.42)), test.ShouldBeNil)
	test.That(t, reg.Register("RAM Available", fake.NewFailing("RAM Available", "no psutil access")), test.ShouldBeNil)
	return collect.New(reg, logger)
}

func TestCaptureNow(t *testing.T) {
	logger := golog.NewTestLogger(t)
	mockClock := clock.NewMock()
	recordedAt := time.Date(2023, 4, 2, 12, 30, 0, 0, time.UTC)
	mockClock.Set(recordedAt)

	sink := &captureSink{}
	svc, err := newService(testCollector(t, logger), mockClock, []Sink{sink}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, svc.Close(context.Background()), test.ShouldBeNil)
	}()

	svc.CaptureNow(context.Background())
	test.That(t, sink.count(), test.ShouldEqual, 1)

	batch := sink.batches[0]
	_, err = uuid.Parse(batch.ID)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, batch.RecordedAt, test.ShouldEqual, recordedAt)
	test.That(t, batch.Readings, test.ShouldHaveLength, 2)
	test.That(t, batch.Readings[0].Name, test.ShouldEqual, "CPU Usage")
	test.That(t, batch.Readings[1].Failed(), test.ShouldBeTrue)

	// a canceled context skips the pass entirely
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	svc.CaptureNow(canceled)
	test.That(t, sink.count(), test.ShouldEqual, 1)
}

func TestSinkFailureIsIsolated(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)
	sink := &captureSink{}
	svc, err := newService(testCollector(t, logger), clock.NewMock(), []Sink{&failingSink{}, sink}, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, svc.Close(context.Background()), test.ShouldBeNil)
	}()

	svc.CaptureNow(context.Background())

	// the healthy sink still stored the batch and the failure was logged
	test.That(t, sink.count(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("cannot store batch").Len(), test.ShouldEqual, 1)
}

func TestStartSchedules(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sink := &captureSink{}
	svc, err := newService(testCollector(t, logger), clock.New(), []Sink{sink}, logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, svc.Start(context.Background(), "30ms"), test.ShouldBeNil)
	time.Sleep(200 * time.Millisecond)
	test.That(t, svc.Close(context.Background()), test.ShouldBeNil)

	stored := sink.count()
	test.That(t, stored, test.ShouldBeGreaterThanOrEqualTo, 2)

	// closing stops the ticks
	time.Sleep(100 * time.Millisecond)
	test.That(t, sink.count(), test.ShouldEqual, stored)
	test.That(t, sink.closed, test.ShouldBeTrue)
}

func TestStartBadSchedule(t *testing.T) {
	logger := golog.NewTestLogger(t)
	svc, err := newService(testCollector(t, logger), clock.New(), nil, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, svc.Close(context.Background()), test.ShouldBeNil)
	}()

	err = svc.Start(context.Background(), "every blue moon")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot schedule recording job")
}

func TestDocumentsFromBatch(t *testing.T) {
	logger := golog.NewTestLogger(t)
	collector := testCollector(t, logger)
	batch := Batch{
		ID:         uuid.New().String(),
		RecordedAt: time.Date(2023, 4, 2, 12, 30, 0, 0, time.UTC),
		Readings:   collector.Collect(context.Background()),
	}

	docs := documentsFromBatch(batch)
	test.That(t, docs, test.ShouldHaveLength, 2)

	first, ok := docs[0].(readingDocument)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, first.BatchID, test.ShouldEqual, batch.ID)
	test.That(t, first.RecordedAt, test.ShouldEqual, batch.RecordedAt)
	test.That(t, first.Name, test.ShouldEqual, "CPU Usage")
	test.That(t, first.Value, test.ShouldEqual, 0.42)
	test.That(t, first.Error, test.ShouldEqual, "")

	second, ok := docs[1].(readingDocument)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, second.Error, test.ShouldEqual, "no psutil access")
	test.That(t, second.Value, test.ShouldBeNil)

	test.That(t, documentsFromBatch(Batch{ID: "empty"}), test.ShouldHaveLength, 0)
}

func TestFileSink(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "readings.ndjson")

	sink := newFileSink(config.FileSink{Path: path})
	test.That(t, sink.writer.MaxSize, test.ShouldEqual, defaultMaxSizeMB)
	test.That(t, sink.writer.MaxBackups, test.ShouldEqual, defaultMaxBackups)

	collector := testCollector(t, logger)
	first := Batch{ID: uuid.New().String(), RecordedAt: time.Now().UTC(), Readings: collector.Collect(context.Background())}
	second := Batch{ID: uuid.New().String(), RecordedAt: time.Now().UTC(), Readings: collector.Collect(context.Background())}

	test.That(t, sink.Store(context.Background(), first), test.ShouldBeNil)
	test.That(t, sink.Store(context.Background(), second), test.ShouldBeNil)
	test.That(t, sink.Close(context.Background()), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)

	var stored Batch
	test.That(t, json.Unmarshal([]byte(lines[0]), &stored), test.ShouldBeNil)
	test.That(t, stored.ID, test.ShouldEqual, first.ID)
	test.That(t, stored.Readings, test.ShouldHaveLength, 2)

	test.That(t, json.Unmarshal([]byte(lines[1]), &stored), test.ShouldBeNil)
	test.That(t, stored.ID, test.ShouldEqual, second.ID)
}

func TestNewRequiresSink(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := New(context.Background(), &config.Record{}, testCollector(t, logger), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one of mongo or file")

	_, err = New(context.Background(), nil, testCollector(t, logger), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewWithFileSink(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "readings.ndjson")

	svc, err := New(context.Background(), &config.Record{File: &config.FileSink{Path: path}}, testCollector(t, logger), logger)
	test.That(t, err, test.ShouldBeNil)

	svc.CaptureNow(context.Background())
	test.That(t, svc.Close(context.Background()), test.ShouldBeNil)

	contents, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(contents), test.ShouldContainSubstring, `"CPU Usage"`)
}
