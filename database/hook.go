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
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// queryDebugEnv toggles the query hook: "1" logs failed queries, "2" logs all.
const queryDebugEnv = "SHIPYARD_SQL_DEBUG"

const (
	ansiReset     = "\x1b[0m"
	ansiRed       = "\x1b[31m"
	ansiYellow    = "\x1b[33m"
	ansiGreen     = "\x1b[32m"
	ansiBlue      = "\x1b[34m"
	ansiMagenta   = "\x1b[35m"
	ansiCyan      = "\x1b[36m"
	ansiBGGreen   = "\x1b[42;97m"
	ansiBGYellow  = "\x1b[43;97m"
	ansiBGBlue    = "\x1b[44;97m"
	ansiBGMagenta = "\x1b[45;97m"
	ansiBGRed     = "\x1b[41;97m"
)

var silentMode atomic.Bool

// EnableSilentMode mutes the query hooks, e.g. while bootstrapping tables.
func EnableSilentMode(b bool) {
	silentMode.Store(b)
}

func colorWrap(s, code string) string { return code + s + ansiReset }

// QueryHook prints executed statements, coloured by operation.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

type QueryHookOption func(*QueryHook)

func WithQueryHookEnv(name string) QueryHookOption {
	return func(h *QueryHook) { h.envName = name }
}

func WithQueryHookEnabled(enabled, verbose bool) QueryHookOption {
	return func(h *QueryHook) {
		h.enabled = enabled
		h.verbose = verbose
	}
}

func WithQueryHookWriter(w io.Writer) QueryHookOption {
	return func(h *QueryHook) { h.writer = w }
}

func NewQueryHook(opts ...QueryHookOption) *QueryHook {
	h := &QueryHook{writer: os.Stderr}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *QueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if silentMode.Load() {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if h.envName != "" {
		if env, ok := os.LookupEnv(h.envName); ok {
			enabled = env != "" && env != "0"
			verbose = env == "2"
		}
	}

	if !enabled {
		return
	}

	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	dur := now.Sub(event.StartTime)

	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		colorWrap(fmt.Sprintf("%10s", "[SQL]"), ansiCyan),
		fmt.Sprintf("%14s", dur.Round(time.Microsecond)),
		" ", formatOperationColor(event),
	}

	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args,
			"\t",
			color.New(color.BgRed).Sprintf(" %s ", typ+": "+event.Err.Error()),
		)
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func operationCodes(event *bun.QueryEvent) (fg, bg string) {
	switch event.Operation() {
	case "SELECT":
		return ansiGreen, ansiBGGreen
	case "INSERT":
		return ansiBlue, ansiBGBlue
	case "UPDATE":
		return ansiYellow, ansiBGYellow
	case "DELETE":
		return ansiMagenta, ansiBGMagenta
	default:
		return ansiRed, ansiBGRed
	}
}

func formatOperationColor(event *bun.QueryEvent) string {
	fg, _ := operationCodes(event)
	return colorWrap(event.Query, fg)
}

func formatOperationBackgroundColor(event *bun.QueryEvent) string {
	_, bg := operationCodes(event)
	return colorWrap(event.Query, bg)
}

// SlowQueryHook reports successful statements slower than a threshold,
// through the logger when one is set and to the writer otherwise.
type SlowQueryHook struct {
	fromEnv  string
	slowTime time.Duration
	logger   Logger
	writer   io.Writer
}

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{
		fromEnv:  "SHIPYARD_SQL_SLOW",
		slowTime: threshold,
		logger:   logger,
		writer:   os.Stderr,
	}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if silentMode.Load() || event.Err != nil {
		return
	}
	if env, ok := os.LookupEnv(h.fromEnv); ok && strings.TrimSpace(env) == "0" {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	if h.logger != nil {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
		return
	}
	_, _ = fmt.Fprintln(h.writer,
		time.Now().Format("2006-01-02 15:04:05.000"),
		colorWrap(fmt.Sprintf("%10s", "[SQL_SLOW]"), ansiYellow),
		fmt.Sprintf("%14s", duration.Round(time.Microsecond)),
		" ", formatOperationBackgroundColor(event),
	)
}
