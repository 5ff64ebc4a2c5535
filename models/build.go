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

package models

import (
	"time"

	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// Build is one image build of a service.
type Build struct {
	bun.BaseModel `bun:"table:builds,alias:b"`
	Base

	ServiceID       string           `bun:"service_id,type:varchar(36),notnull" json:"service_id"`
	Status          BuildStatus      `bun:"status,type:varchar(20),notnull" json:"status"`
	CommitSHA       *string          `bun:"commit_sha,type:varchar(40)" json:"commit_sha,omitempty"`
	CommitMessage   *string          `bun:"commit_message,type:text" json:"commit_message,omitempty"`
	ImageTag        *string          `bun:"image_tag,type:varchar(255)" json:"image_tag,omitempty"`
	Logs            *string          `bun:"logs,type:text" json:"logs,omitempty"`
	StartedAt       *time.Time       `bun:"started_at" json:"started_at,omitempty"`
	FinishedAt      *time.Time       `bun:"finished_at" json:"finished_at,omitempty"`
	DurationSeconds *int             `bun:"duration_seconds" json:"duration_seconds,omitempty"`
	Metadata        types.JsonObject `bun:"build_metadata,type:json" json:"metadata,omitempty"`
}

var buildSchema = types.NewEntitySchema("Build", "builds",
	columns("service_id", "status", "commit_sha", "commit_message", "image_tag", "logs",
		"started_at", "finished_at", "duration_seconds", "build_metadata")...).
	WithForeignKey("service_id", "services", types.OnDeleteCascade)

func (*Build) Schema() *types.EntitySchema { return buildSchema }

func (b *Build) Init(now time.Time) {
	b.Base.Init(now)
	if b.Status == "" {
		b.Status = BuildStatusPending
	}
}

// Elapsed returns whole seconds between start and finish, or nil when the
// build never recorded a start.
func Elapsed(startedAt *time.Time, finishedAt time.Time) *int {
	if startedAt == nil {
		return nil
	}
	secs := int(finishedAt.Sub(*startedAt) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return &secs
}

type BuildPatch struct {
	Status          *BuildStatus
	CommitSHA       *string
	CommitMessage   *string
	ImageTag        *string
	Logs            *string
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationSeconds *int
	Metadata        *types.JsonObject
}

func (p BuildPatch) Apply(b *Build) []string {
	var c types.Changes
	types.Set(&c, "status", &b.Status, p.Status)
	types.SetNullable(&c, "commit_sha", &b.CommitSHA, p.CommitSHA)
	types.SetNullable(&c, "commit_message", &b.CommitMessage, p.CommitMessage)
	types.SetNullable(&c, "image_tag", &b.ImageTag, p.ImageTag)
	types.SetNullable(&c, "logs", &b.Logs, p.Logs)
	types.SetNullable(&c, "started_at", &b.StartedAt, p.StartedAt)
	types.SetNullable(&c, "finished_at", &b.FinishedAt, p.FinishedAt)
	types.SetNullable(&c, "duration_seconds", &b.DurationSeconds, p.DurationSeconds)
	types.Set(&c, "build_metadata", &b.Metadata, p.Metadata)
	return c
}
