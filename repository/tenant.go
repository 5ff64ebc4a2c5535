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
	"github.com/uptrace/bun"
)

type TenantRepository struct {
	*BaseRepository[models.Tenant, *models.Tenant]
}

var _ Repository[models.Tenant] = (*TenantRepository)(nil)

func NewTenantRepository(session bun.IDB, opts ...Option) *TenantRepository {
	return &TenantRepository{NewBaseRepository[models.Tenant, *models.Tenant](session, opts...)}
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return r.FindOne(ctx, Eq("slug", slug))
}

// SlugExists reports whether another tenant already uses slug.
func (r *TenantRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.Probe(ctx, Eq("slug", slug), excludeID)
}
