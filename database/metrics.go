/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// MetricsHook records statement latency per operation and outcome.
type MetricsHook struct {
	duration *prometheus.HistogramVec
}

var _ bun.QueryHook = (*MetricsHook)(nil)

func NewMetricsHook() *MetricsHook {
	return &MetricsHook{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "shipyard",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Duration of database statements in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
	}
}

// Register adds the histogram to r. Registering the same collector twice is
// not an error; the already registered histogram is reused.
func (h *MetricsHook) Register(r prometheus.Registerer) error {
	if r == nil {
		return nil
	}
	if err := r.Register(h.duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				h.duration = existing
				return nil
			}
		}
		return err
	}
	return nil
}

// Collector exposes the histogram, mostly for tests.
func (h *MetricsHook) Collector() prometheus.Collector {
	return h.duration
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	h.duration.
		WithLabelValues(strings.ToLower(event.Operation()), queryStatus(event.Err)).
		Observe(time.Since(event.StartTime).Seconds())
}

func queryStatus(err error) string {
	switch {
	case err == nil, errors.Is(err, sql.ErrNoRows):
		return "ok"
	case IsConstraintViolation(err):
		return "conflict"
	default:
		return "error"
	}
}
