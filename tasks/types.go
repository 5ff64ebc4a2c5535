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
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/tomoncle/shipyard/models"
)

// Task types that report build and service progress back to the store.
const (
	TypeBuildStart    = "build:start"
	TypeBuildComplete = "build:complete"
	TypeServiceStatus = "service:status"
)

type BuildStartPayload struct {
	BuildID string `json:"build_id"`
}

type BuildCompletePayload struct {
	BuildID  string  `json:"build_id"`
	Success  bool    `json:"success"`
	Logs     *string `json:"logs,omitempty"`
	ImageTag *string `json:"image_tag,omitempty"`
}

type ServiceStatusPayload struct {
	ServiceID string               `json:"service_id"`
	Status    models.ServiceStatus `json:"status"`
}

func NewBuildStartTask(buildID string) (*asynq.Task, error) {
	return newTask(TypeBuildStart, BuildStartPayload{BuildID: buildID})
}

func NewBuildCompleteTask(p BuildCompletePayload) (*asynq.Task, error) {
	return newTask(TypeBuildComplete, p)
}

func NewServiceStatusTask(serviceID string, status models.ServiceStatus) (*asynq.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid service status %q", status)
	}
	return newTask(TypeServiceStatus, ServiceStatusPayload{ServiceID: serviceID, Status: status})
}

func newTask(typename string, payload interface{}) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", typename, err)
	}
	return asynq.NewTask(typename, data), nil
}
