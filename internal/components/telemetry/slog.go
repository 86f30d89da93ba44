package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// NewLogger creates the logger handed to SlogAPI. pretty selects a human readable
// terminal handler, otherwise records are written as JSON lines.
func NewLogger(w io.Writer, verbose, pretty bool) *slog.Logger {
	if pretty {
		level := charmlog.InfoLevel
		if verbose {
			level = charmlog.DebugLevel
		}
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           level,
			ReportTimestamp: true,
		}))
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// SlogAPI implements API using the log/slog package, counts are additionally
// recorded as otel gauges.
type SlogAPI struct {
	logger *slog.Logger
	meter  metric.Meter
	gauges *sync.Map
}

func NewSlogAPI(logger *slog.Logger) SlogAPI {
	return SlogAPI{
		logger: logger,
		meter:  otel.Meter("groceryscraper"),
		gauges: &sync.Map{},
	}
}

func (SlogAPI) formatParams(out *[]any, params []any) {
	for i, p := range params {
		*out = append(
			*out,
			fmt.Sprintf("params.%d", i),
			p,
		)
	}
}

func (s SlogAPI) ReportBroken(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.logger.Error("broken component", remainingPairs...)
}

func (s SlogAPI) ReportWarning(id string, params ...any) {
	remainingPairs := []any{"id", id}
	s.formatParams(&remainingPairs, params)
	s.logger.Warn("warning", remainingPairs...)
}

func (s SlogAPI) ReportDebug(message string, params ...any) {
	remainingPairs := []any{}
	s.formatParams(&remainingPairs, params)
	s.logger.Debug(message, remainingPairs...)
}

func (s SlogAPI) ReportCount(id string, count int64) {
	s.logger.Info("count", "id", id, "n", count)

	gauge, err := s.gauge(id)
	if err != nil {
		s.logger.Warn("failed to create gauge", "id", id, "err", err)
		return
	}
	gauge.Record(context.Background(), count)
}

func (s SlogAPI) gauge(id string) (metric.Int64Gauge, error) {
	name := instrumentName(id)
	if existing, ok := s.gauges.Load(name); ok {
		return existing.(metric.Int64Gauge), nil
	}
	gauge, err := s.meter.Int64Gauge(name)
	if err != nil {
		return nil, err
	}
	actual, _ := s.gauges.LoadOrStore(name, gauge)
	return actual.(metric.Int64Gauge), nil
}

// otel instrument names only allow [A-Za-z0-9_./-]
func instrumentName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '.' || r == '/' || r == '-':
			return r
		case r == ' ':
			return -1
		}
		return '_'
	}, id)
	if name == "" || !(name[0] >= 'a' && name[0] <= 'z' || name[0] >= 'A' && name[0] <= 'Z') {
		name = "count_" + name
	}
	return name
}
