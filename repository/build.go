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

package repository

import (
	"context"
	"fmt"

	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// BuildRepository persists builds and drives their status through
// pending -> building -> success|failed. Status writes are safe to repeat:
// a job retried after a transient failure observes the state it already
// produced instead of rewriting its timestamps.
type BuildRepository struct {
	*BaseRepository[models.Build, *models.Build]
}

var _ Repository[models.Build] = (*BuildRepository)(nil)

func NewBuildRepository(session bun.IDB, opts ...Option) *BuildRepository {
	return &BuildRepository{NewBaseRepository[models.Build, *models.Build](session, opts...)}
}

func (r *BuildRepository) ListByService(ctx context.Context, serviceID string, status *models.BuildStatus, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Build], error) {
	filters := types.NewFilters().Set("service_id", serviceID)
	types.SetOptional(filters, "status", status)
	return r.List(ctx, filters, page, sort)
}

func (r *BuildRepository) ListByStatus(ctx context.Context, status models.BuildStatus, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Build], error) {
	return r.List(ctx, types.NewFilters().Set("status", status), page, sort)
}

// ListPending returns queued builds, newest first.
func (r *BuildRepository) ListPending(ctx context.Context, page types.PaginationParams) (*types.PaginatedResult[models.Build], error) {
	return r.ListByStatus(ctx, models.BuildStatusPending, page, types.SortParams{})
}

// GetLatest returns the most recently created build of serviceID, or nil.
func (r *BuildRepository) GetLatest(ctx context.Context, serviceID string) (*models.Build, error) {
	return r.FindOne(ctx, And(Eq("service_id", serviceID), Newest()))
}

// GetLatestSuccessful returns the most recently created successful build of
// serviceID, or nil.
func (r *BuildRepository) GetLatestSuccessful(ctx context.Context, serviceID string) (*models.Build, error) {
	return r.FindOne(ctx, And(Eq("service_id", serviceID), Eq("status", models.BuildStatusSuccess), Newest()))
}

// UpdateStatus moves the build to status and replaces its logs when logs is
// non-nil. Writing the current status again only updates the logs; moving
// backwards or out of a terminal status is a *ConflictError. Entering
// building records the start time if none is stored.
func (r *BuildRepository) UpdateStatus(ctx context.Context, id string, status models.BuildStatus, logs *string) (*models.Build, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid build status %q", status)
	}
	build, err := r.GetByIDOrErr(ctx, id)
	if err != nil {
		return nil, err
	}
	patch := models.BuildPatch{Logs: logs}
	if build.Status != status {
		if !build.Status.CanTransitionTo(status) {
			return nil, r.transitionConflict(build, status)
		}
		patch.Status = &status
	}
	if status == models.BuildStatusBuilding && build.StartedAt == nil {
		now := r.Now()
		patch.StartedAt = &now
	}
	return r.Update(ctx, id, patch)
}

// StartBuild marks a pending build as building and records its start time.
// A build that is already building keeps its start time, gaining one only
// if it has none; a finished build cannot be restarted.
func (r *BuildRepository) StartBuild(ctx context.Context, id string) (*models.Build, error) {
	build, err := r.GetByIDOrErr(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case build.Status == models.BuildStatusBuilding && build.StartedAt != nil:
		return build, nil
	case build.Status == models.BuildStatusBuilding:
		now := r.Now()
		return r.Update(ctx, id, models.BuildPatch{StartedAt: &now})
	case build.Status.IsTerminal():
		return nil, r.transitionConflict(build, models.BuildStatusBuilding)
	}

	now := r.Now()
	return r.Update(ctx, id, models.BuildPatch{
		Status:    types.Ptr(models.BuildStatusBuilding),
		StartedAt: &now,
	})
}

// CompleteBuild records the build's outcome, finish time and duration in
// whole seconds. The duration stays nil for a build that never started.
// Completing again with the same outcome returns the stored build; a
// different outcome is a *ConflictError.
func (r *BuildRepository) CompleteBuild(ctx context.Context, id string, success bool, logs, imageTag *string) (*models.Build, error) {
	build, err := r.GetByIDOrErr(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := models.BuildOutcome(success)
	if build.Status.IsTerminal() {
		if build.Status == outcome {
			return build, nil
		}
		return nil, r.transitionConflict(build, outcome)
	}

	finished := r.Now()
	return r.Update(ctx, id, models.BuildPatch{
		Status:          &outcome,
		FinishedAt:      &finished,
		DurationSeconds: models.Elapsed(build.StartedAt, finished),
		Logs:            logs,
		ImageTag:        imageTag,
	})
}

func (r *BuildRepository) transitionConflict(build *models.Build, next models.BuildStatus) error {
	return NewStateConflictError(r.Kind(),
		fmt.Sprintf("build '%s' cannot move from %s to %s", build.ID, build.Status, next))
}
