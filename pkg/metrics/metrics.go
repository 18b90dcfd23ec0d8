// Package metrics keeps small gauge time series (balance totals, counters)
// in an embedded tstorage database under the application workdir.
package metrics

import (
	"errors"
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// Point is one stored gauge sample.
type Point struct {
	Time  time.Time `json:"time"`
	Value int64     `json:"value"`
}

// InitMetrics opens the metric store in <workdir>/data/metrics. An empty
// workdir keeps the series in memory only.
func InitMetrics(workdir string) error {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(90 * 24 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(path.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		_ = storage.Close()
	}
	storage = s
	return nil
}

// SetGauge records value for name at the current time. It is a no-op
// until InitMetrics succeeds.
func SetGauge(name string, value int64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: float64(value)},
	}})
}

// Query returns the samples of name between start and end.
func Query(name string, start, end time.Time) ([]Point, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	points, err := storage.Select(name, nil, start.Unix(), end.Unix()+1)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result := make([]Point, 0, len(points))
	for _, p := range points {
		result = append(result, Point{Time: time.Unix(p.Timestamp, 0), Value: int64(p.Value)})
	}
	return result, nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
