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

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/shipyard/models"
)

// Enqueuer publishes status tasks to the queue. Builds are retried a few
// times since every handler is safe to repeat.
type Enqueuer struct {
	client *asynq.Client
	log    *logrus.Logger
}

func NewEnqueuer(opt asynq.RedisConnOpt, log *logrus.Logger) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(opt), log: log}
}

func (q *Enqueuer) Close() error {
	return q.client.Close()
}

func (q *Enqueuer) EnqueueBuildStart(ctx context.Context, buildID string) error {
	task, err := NewBuildStartTask(buildID)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, logrus.Fields{"build_id": buildID})
}

func (q *Enqueuer) EnqueueBuildComplete(ctx context.Context, p BuildCompletePayload) error {
	task, err := NewBuildCompleteTask(p)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, logrus.Fields{"build_id": p.BuildID, "success": p.Success})
}

func (q *Enqueuer) EnqueueServiceStatus(ctx context.Context, serviceID string, status models.ServiceStatus) error {
	task, err := NewServiceStatusTask(serviceID, status)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, logrus.Fields{"service_id": serviceID, "status": status})
}

func (q *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, fields logrus.Fields) error {
	info, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		q.log.WithFields(fields).WithError(err).Warnf("enqueue %s failed", task.Type())
		return err
	}
	q.log.WithFields(fields).Debugf("enqueued %s as %s", task.Type(), info.ID)
	return nil
}
