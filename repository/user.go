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

type UserRepository struct {
	*BaseRepository[models.User, *models.User]
}

var _ Repository[models.User] = (*UserRepository)(nil)

func NewUserRepository(session bun.IDB, opts ...Option) *UserRepository {
	return &UserRepository{NewBaseRepository[models.User, *models.User](session, opts...)}
}

// GetByEmail looks a user up by email, within tenantID when it is not empty.
// Without a tenant the oldest matching user is returned.
func (r *UserRepository) GetByEmail(ctx context.Context, email, tenantID string) (*models.User, error) {
	return r.FindOne(ctx, And(Eq("email", email), r.inTenant(tenantID), oldest))
}

// GetByUsername looks a user up by username, within tenantID when it is not
// empty.
func (r *UserRepository) GetByUsername(ctx context.Context, username, tenantID string) (*models.User, error) {
	return r.FindOne(ctx, And(Eq("username", username), r.inTenant(tenantID), oldest))
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string, isActive *bool, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.User], error) {
	filters := types.NewFilters().Set("tenant_id", tenantID)
	types.SetOptional(filters, "is_active", isActive)
	return r.List(ctx, filters, page, sort)
}

func (r *UserRepository) EmailExists(ctx context.Context, email, tenantID, excludeID string) (bool, error) {
	return r.Probe(ctx, And(Eq("email", email), Eq("tenant_id", tenantID)), excludeID)
}

func (r *UserRepository) Activate(ctx context.Context, id string) (*models.User, error) {
	return r.Update(ctx, id, models.UserPatch{IsActive: types.Ptr(true)})
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) (*models.User, error) {
	return r.Update(ctx, id, models.UserPatch{IsActive: types.Ptr(false)})
}

func (r *UserRepository) Verify(ctx context.Context, id string) (*models.User, error) {
	return r.Update(ctx, id, models.UserPatch{IsVerified: types.Ptr(true)})
}

func (r *UserRepository) inTenant(tenantID string) QueryFunc {
	if tenantID == "" {
		return nil
	}
	return Eq("tenant_id", tenantID)
}

func oldest(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.? ASC", bun.Ident("created_at")).
		OrderExpr("?TableAlias.? ASC", bun.Ident("id"))
}
