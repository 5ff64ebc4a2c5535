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

// ServiceRepository eager-loads builds, environment variables and webhooks.
type ServiceRepository struct {
	*BaseRepository[models.Service, *models.Service]
}

var _ Repository[models.Service] = (*ServiceRepository)(nil)

func NewServiceRepository(session bun.IDB, opts ...Option) *ServiceRepository {
	return &ServiceRepository{NewBaseRepository[models.Service, *models.Service](session, opts...)}
}

func (r *ServiceRepository) ListByProject(ctx context.Context, projectID string, status *models.ServiceStatus, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Service], error) {
	filters := types.NewFilters().Set("project_id", projectID)
	types.SetOptional(filters, "status", status)
	return r.List(ctx, filters, page, sort)
}

func (r *ServiceRepository) GetByName(ctx context.Context, name, projectID string) (*models.Service, error) {
	return r.FindOne(ctx, And(Eq("name", name), Eq("project_id", projectID)))
}

func (r *ServiceRepository) NameExists(ctx context.Context, name, projectID, excludeID string) (bool, error) {
	return r.Probe(ctx, And(Eq("name", name), Eq("project_id", projectID)), excludeID)
}

func (r *ServiceRepository) ListByStatus(ctx context.Context, status models.ServiceStatus, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Service], error) {
	return r.List(ctx, types.NewFilters().Set("status", status), page, sort)
}

// UpdateStatus persists status as reported by orchestration. Any status may
// follow any other.
func (r *ServiceRepository) UpdateStatus(ctx context.Context, id string, status models.ServiceStatus) (*models.Service, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid service status %q", status)
	}
	return r.Update(ctx, id, models.ServicePatch{Status: &status})
}

func (r *ServiceRepository) ListRunning(ctx context.Context, page types.PaginationParams) (*types.PaginatedResult[models.Service], error) {
	return r.ListByStatus(ctx, models.ServiceStatusRunning, page, types.SortParams{})
}
