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
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/shipyard"
	"github.com/tomoncle/shipyard/repository"
)

// Handlers apply task payloads to the store, one transaction per task.
// Malformed payloads, missing entities and refused transitions are not
// retried.
type Handlers struct {
	store *shipyard.Store
	log   *logrus.Logger
}

func NewHandlers(store *shipyard.Store, log *logrus.Logger) *Handlers {
	return &Handlers{store: store, log: log}
}

// Register installs every handler on mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBuildStart, h.HandleBuildStart)
	mux.HandleFunc(TypeBuildComplete, h.HandleBuildComplete)
	mux.HandleFunc(TypeServiceStatus, h.HandleServiceStatus)
}

func (h *Handlers) HandleBuildStart(ctx context.Context, t *asynq.Task) error {
	var p BuildStartPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	err := h.store.RunInTx(ctx, func(ctx context.Context, repos *shipyard.Repositories) error {
		build, err := repos.Builds.StartBuild(ctx, p.BuildID)
		if err != nil {
			return err
		}
		h.log.WithFields(logrus.Fields{"build_id": build.ID, "status": build.Status}).Info("build started")
		return nil
	})
	return h.finish(t, err)
}

func (h *Handlers) HandleBuildComplete(ctx context.Context, t *asynq.Task) error {
	var p BuildCompletePayload
	if err := decode(t, &p); err != nil {
		return err
	}
	err := h.store.RunInTx(ctx, func(ctx context.Context, repos *shipyard.Repositories) error {
		build, err := repos.Builds.CompleteBuild(ctx, p.BuildID, p.Success, p.Logs, p.ImageTag)
		if err != nil {
			return err
		}
		fields := logrus.Fields{"build_id": build.ID, "status": build.Status}
		if build.DurationSeconds != nil {
			fields["duration_seconds"] = *build.DurationSeconds
		}
		h.log.WithFields(fields).Info("build completed")
		return nil
	})
	return h.finish(t, err)
}

func (h *Handlers) HandleServiceStatus(ctx context.Context, t *asynq.Task) error {
	var p ServiceStatusPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid service status %q: %w", p.Status, asynq.SkipRetry)
	}
	err := h.store.RunInTx(ctx, func(ctx context.Context, repos *shipyard.Repositories) error {
		_, err := repos.Services.UpdateStatus(ctx, p.ServiceID, p.Status)
		return err
	})
	if err == nil {
		h.log.WithFields(logrus.Fields{"service_id": p.ServiceID, "status": p.Status}).Info("service status updated")
	}
	return h.finish(t, err)
}

func (h *Handlers) finish(t *asynq.Task, err error) error {
	if err == nil {
		return nil
	}
	entry := h.log.WithField("type", t.Type()).WithError(err)
	if repository.IsNotFound(err) || repository.IsConflict(err) {
		entry.Warn("task rejected")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	entry.Error("task failed")
	return err
}

func decode(t *asynq.Task, v interface{}) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}
