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

package shipyard

import (
	"context"

	"github.com/tomoncle/shipyard/repository"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// Service runs single-entity operations, each in its own transaction.
type Service[T any] interface {
	// Get returns the entity with id or a *repository.NotFoundError.
	Get(ctx context.Context, id string) (*T, error)

	// Page returns one page of entities matching filters.
	Page(ctx context.Context, filters types.Filters, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[T], error)

	// Save inserts a new entity.
	Save(ctx context.Context, model *T) (*T, error)

	// Update applies patch to the entity with id.
	Update(ctx context.Context, id string, patch types.Patch[T]) (*T, error)

	// Delete removes the entity with id or returns a *repository.NotFoundError.
	Delete(ctx context.Context, id string) error
}

type baseServiceImpl[T any, PT repository.EntityPtr[T]] struct {
	db   *bun.DB
	opts []repository.Option
}

// NewService returns a Service for T backed by the store's connection pool.
func NewService[T any, PT repository.EntityPtr[T]](store *Store) Service[T] {
	return &baseServiceImpl[T, PT]{db: store.DB(), opts: store.opts}
}

func (s *baseServiceImpl[T, PT]) withTx(ctx context.Context, fn func(ctx context.Context, repo *repository.BaseRepository[T, PT]) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, repository.NewBaseRepository[T, PT](tx, s.opts...))
	})
}

func (s *baseServiceImpl[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	return repository.NewBaseRepository[T, PT](s.db, s.opts...).GetByIDOrErr(ctx, id)
}

func (s *baseServiceImpl[T, PT]) Page(ctx context.Context, filters types.Filters, page types.PaginationParams, sort types.SortParams) (result *types.PaginatedResult[T], err error) {
	// Count and page must observe the same snapshot.
	err = s.withTx(ctx, func(ctx context.Context, repo *repository.BaseRepository[T, PT]) error {
		result, err = repo.List(ctx, filters, page, sort)
		return err
	})
	return result, err
}

func (s *baseServiceImpl[T, PT]) Save(ctx context.Context, model *T) (saved *T, err error) {
	err = s.withTx(ctx, func(ctx context.Context, repo *repository.BaseRepository[T, PT]) error {
		saved, err = repo.Create(ctx, model)
		return err
	})
	return saved, err
}

func (s *baseServiceImpl[T, PT]) Update(ctx context.Context, id string, patch types.Patch[T]) (updated *T, err error) {
	err = s.withTx(ctx, func(ctx context.Context, repo *repository.BaseRepository[T, PT]) error {
		updated, err = repo.Update(ctx, id, patch)
		return err
	})
	return updated, err
}

func (s *baseServiceImpl[T, PT]) Delete(ctx context.Context, id string) error {
	return s.withTx(ctx, func(ctx context.Context, repo *repository.BaseRepository[T, PT]) error {
		return repo.DeleteOrErr(ctx, id)
	})
}
