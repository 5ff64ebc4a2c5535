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

package tasks

import (
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/shipyard"
)

// Worker serves status tasks until shut down.
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log *logrus.Logger
}

func NewWorker(opt asynq.RedisConnOpt, store *shipyard.Store, concurrency int, log *logrus.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Logger:      log,
		LogLevel:    asynqLevel(log.GetLevel()),
	})
	mux := asynq.NewServeMux()
	NewHandlers(store, log).Register(mux)
	return &Worker{srv: srv, mux: mux, log: log}
}

// Run blocks until the server stops.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Start begins processing in the background.
func (w *Worker) Start() error {
	return w.srv.Start(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func asynqLevel(level logrus.Level) asynq.LogLevel {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return asynq.DebugLevel
	case logrus.InfoLevel:
		return asynq.InfoLevel
	case logrus.WarnLevel:
		return asynq.WarnLevel
	case logrus.ErrorLevel:
		return asynq.ErrorLevel
	default:
		return asynq.FatalLevel
	}
}
