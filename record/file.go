package record

import (
	"context"
	"encoding/json"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"go.hostsense.dev/hostsense/config"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 2
)

// fileSink appends batches as NDJSON, one batch per line, to a
// size-rotated file.
type fileSink struct {
	mu      sync.Mutex
	writer  *lumberjack.Logger
	encoder *json.Encoder
}

func newFileSink(conf config.FileSink) *fileSink {
	maxSize := conf.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := conf.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	writer := &lumberjack.Logger{
		Filename:   conf.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   conf.Compress,
	}
	return &fileSink{writer: writer, encoder: json.NewEncoder(writer)}
}

func (s *fileSink) Store(_ context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoder.Encode(batch)
}

func (s *fileSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}
