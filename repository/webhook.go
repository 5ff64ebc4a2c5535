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

type WebhookRepository struct {
	*BaseRepository[models.Webhook, *models.Webhook]
}

var _ Repository[models.Webhook] = (*WebhookRepository)(nil)

func NewWebhookRepository(session bun.IDB, opts ...Option) *WebhookRepository {
	return &WebhookRepository{NewBaseRepository[models.Webhook, *models.Webhook](session, opts...)}
}

func (r *WebhookRepository) ListByService(ctx context.Context, serviceID string, provider *models.WebhookProvider, isActive *bool, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.Webhook], error) {
	filters := types.NewFilters().Set("service_id", serviceID)
	types.SetOptional(filters, "provider", provider)
	types.SetOptional(filters, "is_active", isActive)
	return r.List(ctx, filters, page, sort)
}

// ListActiveByService returns every active webhook of serviceID.
func (r *WebhookRepository) ListActiveByService(ctx context.Context, serviceID string) ([]*models.Webhook, error) {
	var hooks []*models.Webhook
	q := r.NewSelect(&hooks)
	q = And(Eq("service_id", serviceID), Eq("is_active", true), Newest())(q)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return hooks, nil
}

func (r *WebhookRepository) GetByURL(ctx context.Context, url string) (*models.Webhook, error) {
	return r.FindOne(ctx, And(Eq("url", url), Newest()))
}

func (r *WebhookRepository) Activate(ctx context.Context, id string) (*models.Webhook, error) {
	return r.Update(ctx, id, models.WebhookPatch{IsActive: types.Ptr(true)})
}

func (r *WebhookRepository) Deactivate(ctx context.Context, id string) (*models.Webhook, error) {
	return r.Update(ctx, id, models.WebhookPatch{IsActive: types.Ptr(false)})
}
