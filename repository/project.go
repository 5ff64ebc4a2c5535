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

	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// ProjectRepository eager-loads each project's services.
type ProjectRepository struct {
	*BaseRepository[models.Project, *models.Project]
}

var _ Repository[models.Project] = (*ProjectRepository)(nil)

func NewProjectRepository(session bun.IDB, opts ...Option) *ProjectRepository {
	return &ProjectRepository{NewBaseRepository[models.Project, *models.Project](session, opts...)}
}

func (r *ProjectRepository) ListByTenant(ctx context.Context, tenantID string, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Project], error) {
	return r.List(ctx, types.NewFilters().Set("tenant_id", tenantID), page, sort)
}

func (r *ProjectRepository) GetByName(ctx context.Context, name, tenantID string) (*models.Project, error) {
	return r.FindOne(ctx, And(Eq("name", name), Eq("tenant_id", tenantID)))
}

func (r *ProjectRepository) NameExists(ctx context.Context, name, tenantID, excludeID string) (bool, error) {
	return r.Probe(ctx, And(Eq("name", name), Eq("tenant_id", tenantID)), excludeID)
}
