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
	"time"

	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the identifier-based operations shared by every
// entity kind.
type CrudRepository[T any] interface {
	GetByID(ctx context.Context, id string) (*T, error)

	GetByIDOrErr(ctx context.Context, id string) (*T, error)

	Create(ctx context.Context, entity *T) (*T, error)

	Update(ctx context.Context, id string, patch types.Patch[T]) (*T, error)

	Delete(ctx context.Context, id string) (bool, error)

	DeleteOrErr(ctx context.Context, id string) error

	Exists(ctx context.Context, id string) (bool, error)
}

// PageQueryRepository defines filtered, sorted, paginated listing.
type PageQueryRepository[T any] interface {
	List(ctx context.Context, filters types.Filters, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[T], error)

	Count(ctx context.Context, filters types.Filters) (int, error)
}

// Repository combines CRUD and pagination and exposes the bound session for
// advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	Dialect() schema.Dialect
	Session() bun.IDB
	Schema() *types.EntitySchema
}

// Option configures a repository.
type Option func(*options)

type options struct {
	relations    []string
	relationsSet bool
	clock        func() time.Time
	logger       database.Logger
}

func newOptions(opts []Option) *options {
	o := &options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = database.GetLogger()
	}
	return o
}

// WithEagerLoad replaces the eager-loaded relations. Names not declared by
// the entity are dropped; no arguments disables eager loading.
func WithEagerLoad(relations ...string) Option {
	return func(o *options) {
		o.relations = relations
		o.relationsSet = true
	}
}

// WithClock sets the time source used for created_at, updated_at and build
// timings.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func WithLogger(logger database.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
