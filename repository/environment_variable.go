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

type EnvironmentVariableRepository struct {
	*BaseRepository[models.EnvironmentVariable, *models.EnvironmentVariable]
}

var _ Repository[models.EnvironmentVariable] = (*EnvironmentVariableRepository)(nil)

// EnvironmentVariableInput is one entry of a bulk create.
type EnvironmentVariableInput struct {
	Key      string `json:"key" yaml:"key"`
	Value    string `json:"value" yaml:"value"`
	IsSecret bool   `json:"is_secret" yaml:"is_secret"`
}

func NewEnvironmentVariableRepository(session bun.IDB, opts ...Option) *EnvironmentVariableRepository {
	return &EnvironmentVariableRepository{
		NewBaseRepository[models.EnvironmentVariable, *models.EnvironmentVariable](session, opts...),
	}
}

func (r *EnvironmentVariableRepository) ListByService(ctx context.Context, serviceID string, isSecret *bool, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.EnvironmentVariable], error) {
	filters := types.NewFilters().Set("service_id", serviceID)
	types.SetOptional(filters, "is_secret", isSecret)
	return r.List(ctx, filters, page, sort)
}

func (r *EnvironmentVariableRepository) GetByKey(ctx context.Context, serviceID, key string) (*models.EnvironmentVariable, error) {
	return r.FindOne(ctx, byServiceKey(serviceID, key))
}

func (r *EnvironmentVariableRepository) KeyExists(ctx context.Context, serviceID, key, excludeID string) (bool, error) {
	return r.Probe(ctx, byServiceKey(serviceID, key), excludeID)
}

// Upsert sets key on serviceID to value, creating the variable when it does
// not exist. An existing variable keeps its identifier and creation time.
func (r *EnvironmentVariableRepository) Upsert(ctx context.Context, serviceID, key, value string, isSecret bool) (*models.EnvironmentVariable, error) {
	return r.BaseRepository.Upsert(ctx,
		&models.EnvironmentVariable{ServiceID: serviceID, Key: key, Value: value, IsSecret: isSecret},
		[]string{"service_id", "key"},
		[]string{"value", "is_secret"},
		byServiceKey(serviceID, key),
	)
}

// DeleteByKey removes key from serviceID and reports whether it existed.
func (r *EnvironmentVariableRepository) DeleteByKey(ctx context.Context, serviceID, key string) (bool, error) {
	n, err := r.DeleteWhere(ctx, byServiceKey(serviceID, key))
	return n > 0, err
}

// BulkCreate inserts vars for serviceID in one statement. A duplicate key,
// either among vars or against stored variables, fails the whole batch.
func (r *EnvironmentVariableRepository) BulkCreate(ctx context.Context, serviceID string, vars []EnvironmentVariableInput) ([]*models.EnvironmentVariable, error) {
	entities := make([]*models.EnvironmentVariable, 0, len(vars))
	for _, v := range vars {
		entities = append(entities, &models.EnvironmentVariable{
			ServiceID: serviceID,
			Key:       v.Key,
			Value:     v.Value,
			IsSecret:  v.IsSecret,
		})
	}
	return r.CreateMany(ctx, entities)
}

func byServiceKey(serviceID, key string) QueryFunc {
	return And(Eq("service_id", serviceID), Eq("key", key))
}
