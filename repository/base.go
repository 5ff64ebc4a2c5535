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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

// EntityPtr constrains PT to *T implementing types.Entity.
type EntityPtr[T any] interface {
	*T
	types.Entity
}

// QueryFunc narrows a select query.
type QueryFunc func(q *bun.SelectQuery) *bun.SelectQuery

// BaseRepository implements the generic data-access surface for one entity
// kind over a single session. It never begins a transaction of its own;
// writes run inside savepoints of the caller's transaction when there is one.
type BaseRepository[T any, PT EntityPtr[T]] struct {
	session   bun.IDB
	schema    *types.EntitySchema
	relations []string
	clock     func() time.Time
	logger    database.Logger
}

// NewBaseRepository binds a repository for T to session. Relations declared
// by T's schema are eager-loaded on every read unless WithEagerLoad says
// otherwise.
func NewBaseRepository[T any, PT EntityPtr[T]](session bun.IDB, opts ...Option) *BaseRepository[T, PT] {
	o := newOptions(opts)
	s := PT(new(T)).Schema()
	relations := s.Relations
	if o.relationsSet {
		relations = make([]string, 0, len(o.relations))
		for _, name := range o.relations {
			if s.HasRelation(name) {
				relations = append(relations, name)
			}
		}
	}
	return &BaseRepository[T, PT]{
		session:   session,
		schema:    s,
		relations: relations,
		clock:     o.clock,
		logger:    o.logger,
	}
}

func (r *BaseRepository[T, PT]) Dialect() schema.Dialect { return r.session.Dialect() }

func (r *BaseRepository[T, PT]) Session() bun.IDB { return r.session }

func (r *BaseRepository[T, PT]) Schema() *types.EntitySchema { return r.schema }

func (r *BaseRepository[T, PT]) Kind() string { return r.schema.Kind }

// EagerLoads returns the relations loaded on every read.
func (r *BaseRepository[T, PT]) EagerLoads() []string {
	out := make([]string, len(r.relations))
	copy(out, r.relations)
	return out
}

// Now reads the repository clock in UTC.
func (r *BaseRepository[T, PT]) Now() time.Time { return r.clock().UTC() }

// NewSelect starts a select over T's table with eager loads applied.
func (r *BaseRepository[T, PT]) NewSelect(model interface{}) *bun.SelectQuery {
	return r.eager(r.session.NewSelect().Model(model))
}

func (r *BaseRepository[T, PT]) eager(q *bun.SelectQuery) *bun.SelectQuery {
	for _, rel := range r.relations {
		q = q.Relation(rel)
	}
	return q
}

// Eq matches column against value on T's table.
func Eq(column string, value interface{}) QueryFunc {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value)
	}
}

// And applies every fn in order.
func And(fns ...QueryFunc) QueryFunc {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, fn := range fns {
			if fn != nil {
				q = fn(q)
			}
		}
		return q
	}
}

// Newest orders by creation time, latest first, then by primary key.
func Newest() QueryFunc {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.? DESC", bun.Ident("created_at")).
			OrderExpr("?TableAlias.? DESC", bun.Ident("id"))
	}
}

func (r *BaseRepository[T, PT]) wherePK(id string) QueryFunc {
	return Eq(r.schema.PrimaryKey, id)
}

// GetByID returns the entity with id, or (nil, nil) when it does not exist.
func (r *BaseRepository[T, PT]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.FindOne(ctx, r.wherePK(id))
}

// GetByIDOrErr is GetByID returning *NotFoundError on a miss.
func (r *BaseRepository[T, PT]) GetByIDOrErr(ctx context.Context, id string) (*T, error) {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, NewNotFoundError(r.schema.Kind, id)
	}
	return entity, nil
}

// FindOne returns the first entity matching where, or (nil, nil).
func (r *BaseRepository[T, PT]) FindOne(ctx context.Context, where QueryFunc) (*T, error) {
	entity := new(T)
	q := r.NewSelect(entity)
	if where != nil {
		q = where(q)
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entity, nil
}

// Probe reports whether a row matching where exists, ignoring excludeID.
func (r *BaseRepository[T, PT]) Probe(ctx context.Context, where QueryFunc, excludeID string) (bool, error) {
	q := r.session.NewSelect().Model((*T)(nil))
	if where != nil {
		q = where(q)
	}
	if excludeID != "" {
		q = q.Where("?TableAlias.? <> ?", bun.Ident(r.schema.PrimaryKey), excludeID)
	}
	return q.Exists(ctx)
}

// List returns one page of entities matching filters. Unknown filter columns
// and nil values are ignored; an unknown sort field falls back to the
// creation timestamp. The count and the page come from the same predicate on
// the same session.
func (r *BaseRepository[T, PT]) List(ctx context.Context, filters types.Filters, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[T], error) {
	page = page.OrDefault()
	sort = sort.OrDefault()

	total, err := r.Count(ctx, filters)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return types.NewPaginatedResult[T](nil, 0, page.Skip(), page.Limit()), nil
	}

	var items []*T
	q := r.applyFilters(r.session.NewSelect().Model(&items), filters)
	q = r.applySort(q, sort)
	q = r.eager(q.Offset(page.Offset()).Limit(page.Limit()))
	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return types.NewPaginatedResult(items, total, page.Skip(), page.Limit()), nil
}

// Count returns the number of entities matching filters, with List's
// filter semantics.
func (r *BaseRepository[T, PT]) Count(ctx context.Context, filters types.Filters) (int, error) {
	q := r.applyFilters(r.session.NewSelect().Model((*T)(nil)), filters)
	return q.Count(ctx)
}

// Exists reports whether id exists without loading the row.
func (r *BaseRepository[T, PT]) Exists(ctx context.Context, id string) (bool, error) {
	return r.Probe(ctx, r.wherePK(id), "")
}

func (r *BaseRepository[T, PT]) applyFilters(q *bun.SelectQuery, filters types.Filters) *bun.SelectQuery {
	for _, col := range filters.Keys() {
		v := filters[col]
		if isNil(v) || !r.schema.HasColumn(col) {
			continue
		}
		q = q.Where("?TableAlias.? = ?", bun.Ident(col), v)
	}
	return q
}

func (r *BaseRepository[T, PT]) applySort(q *bun.SelectQuery, sort types.SortParams) *bun.SelectQuery {
	col, ok := sort.Resolve(r.schema)
	if !ok {
		return q
	}
	dir := "ASC"
	if sort.Descending() {
		dir = "DESC"
	}
	q = q.OrderExpr("?TableAlias.? "+dir, bun.Ident(col))
	if pk := r.schema.PrimaryKey; pk != "" && pk != col {
		q = q.OrderExpr("?TableAlias.? "+dir, bun.Ident(pk))
	}
	return q
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Create assigns the identifier and creation time when unset, inserts the
// entity and returns it reloaded with its eager relations. A constraint
// violation yields *ConflictError and leaves no row behind.
func (r *BaseRepository[T, PT]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%s: cannot create nil entity", r.schema.Kind)
	}
	PT(entity).Init(r.Now())
	err := database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		_, err := r.session.NewInsert().Model(entity).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.fail("create", err)
	}
	return r.reload(ctx, PT(entity).GetID())
}

// CreateMany inserts entities in a single statement; either all rows are
// written or none.
func (r *BaseRepository[T, PT]) CreateMany(ctx context.Context, entities []*T) ([]*T, error) {
	if len(entities) == 0 {
		return []*T{}, nil
	}
	now := r.Now()
	for _, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("%s: cannot create nil entity", r.schema.Kind)
		}
		PT(e).Init(now)
	}
	err := database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		_, err := r.session.NewInsert().Model(&entities).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.fail("create", err)
	}
	out := make([]*T, len(entities))
	copy(out, entities)
	return out, nil
}

// Update applies patch to the stored entity, stamps the modification time
// and writes the changed columns. Nil patch fields leave columns untouched.
func (r *BaseRepository[T, PT]) Update(ctx context.Context, id string, patch types.Patch[T]) (*T, error) {
	entity, err := r.GetByIDOrErr(ctx, id)
	if err != nil {
		return nil, err
	}
	var cols []string
	if patch != nil {
		cols = patch.Apply(entity)
	}
	PT(entity).Touch(r.Now())
	if uc := r.schema.UpdatedAtColumn; uc != "" {
		cols = append(cols, uc)
	}
	if len(cols) == 0 {
		return entity, nil
	}

	err = database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		_, err := r.session.NewUpdate().Model(entity).Column(cols...).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.fail("update", err)
	}
	return r.reload(ctx, id)
}

// Delete removes id and reports whether a row was removed. Children go with
// it through the store's cascade rules.
func (r *BaseRepository[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	entity := PT(new(T))
	entity.SetID(id)
	var affected int64
	err := database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		res, err := r.session.NewDelete().Model(entity).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, r.fail("delete", err)
	}
	return affected > 0, nil
}

// DeleteOrErr is Delete returning *NotFoundError when nothing was removed.
func (r *BaseRepository[T, PT]) DeleteOrErr(ctx context.Context, id string) error {
	deleted, err := r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return NewNotFoundError(r.schema.Kind, id)
	}
	return nil
}

// DeleteWhere removes every row matching where and returns the count.
func (r *BaseRepository[T, PT]) DeleteWhere(ctx context.Context, where QueryFunc) (int, error) {
	ids, err := r.ids(ctx, where)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	var affected int64
	err = database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		res, err := r.session.NewDelete().Model((*T)(nil)).
			Where("? IN (?)", bun.Ident(r.schema.PrimaryKey), bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, r.fail("delete", err)
	}
	return int(affected), nil
}

func (r *BaseRepository[T, PT]) ids(ctx context.Context, where QueryFunc) ([]string, error) {
	var ids []string
	q := r.session.NewSelect().Model((*T)(nil)).Column(r.schema.PrimaryKey)
	if where != nil {
		q = where(q)
	}
	if err := q.Scan(ctx, &ids); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return ids, nil
}

// Upsert inserts entity or, when a row with the same conflict columns
// exists, overwrites its update columns and stamps the modification time.
// lookup locates the stored row; the stamp never precedes its created_at
// or its previous updated_at.
func (r *BaseRepository[T, PT]) Upsert(ctx context.Context, entity *T, conflict, update []string, lookup QueryFunc) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("%s: cannot upsert nil entity", r.schema.Kind)
	}
	if len(update) == 0 {
		return nil, fmt.Errorf("fields cannot be empty")
	}
	if lookup == nil {
		return nil, fmt.Errorf("%s: upsert requires a lookup", r.schema.Kind)
	}
	now := r.Now()
	PT(entity).Init(now)

	features := r.session.Dialect().Features()
	err := database.WithSavepoint(ctx, r.session, func(ctx context.Context) error {
		existing, err := r.FindOne(ctx, lookup)
		if err != nil {
			return err
		}
		stamp := now.UTC()
		if existing != nil {
			PT(existing).Touch(now)
			stamp = *PT(existing).ModifiedAt()
		}
		switch {
		case features.Has(feature.InsertOnConflict):
			return r.upsertOnConflict(ctx, entity, conflict, update, stamp)
		case features.Has(feature.InsertOnDuplicateKey):
			return r.upsertOnDuplicateKey(ctx, entity, update, stamp)
		default:
			return r.upsertFallback(ctx, entity, existing, update, stamp)
		}
	})
	if err != nil {
		return nil, r.fail("upsert", err)
	}
	result, err := r.FindOne(ctx, lookup)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, NewNotFoundError(r.schema.Kind, PT(entity).GetID())
	}
	return result, nil
}

func (r *BaseRepository[T, PT]) upsertOnConflict(ctx context.Context, entity *T, conflict, update []string, stamp time.Time) error {
	if len(conflict) == 0 {
		conflict = []string{r.schema.PrimaryKey}
	}
	placeholders := make([]string, len(conflict))
	args := make([]interface{}, len(conflict))
	for i, col := range conflict {
		placeholders[i] = "?"
		args[i] = bun.Ident(col)
	}
	q := r.session.NewInsert().Model(entity).
		On("CONFLICT ("+strings.Join(placeholders, ", ")+") DO UPDATE", args...)
	for _, col := range update {
		q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}
	if uc := r.schema.UpdatedAtColumn; uc != "" {
		q = q.Set("? = ?", bun.Ident(uc), stamp)
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *BaseRepository[T, PT]) upsertOnDuplicateKey(ctx context.Context, entity *T, update []string, stamp time.Time) error {
	sets := make([]string, 0, len(update)+1)
	args := make([]interface{}, 0, 2*len(update)+2)
	for _, col := range update {
		sets = append(sets, "? = VALUES(?)")
		args = append(args, bun.Ident(col), bun.Ident(col))
	}
	if uc := r.schema.UpdatedAtColumn; uc != "" {
		sets = append(sets, "? = ?")
		args = append(args, bun.Ident(uc), stamp)
	}
	_, err := r.session.NewInsert().Model(entity).
		On("DUPLICATE KEY UPDATE "+strings.Join(sets, ", "), args...).
		Exec(ctx)
	return err
}

func (r *BaseRepository[T, PT]) upsertFallback(ctx context.Context, entity, existing *T, update []string, stamp time.Time) error {
	if existing == nil {
		_, err := r.session.NewInsert().Model(entity).Exec(ctx)
		return err
	}
	PT(entity).SetID(PT(existing).GetID())
	cols := append([]string{}, update...)
	q := r.session.NewUpdate().Model(entity)
	if uc := r.schema.UpdatedAtColumn; uc != "" {
		cols = append(cols, uc)
		q = q.Value(uc, "?", stamp)
	}
	_, err := q.Column(cols...).WherePK().Exec(ctx)
	return err
}

func (r *BaseRepository[T, PT]) reload(ctx context.Context, id string) (*T, error) {
	return r.GetByIDOrErr(ctx, id)
}

func (r *BaseRepository[T, PT]) fail(op string, err error) error {
	err = translateError(r.schema.Kind, err)
	if r.logger != nil {
		if IsConflict(err) {
			r.logger.Debug("Write rejected by constraint", "kind", r.schema.Kind, "op", op, "error", err.Error())
		} else {
			r.logger.Warn("Write failed", "kind", r.schema.Kind, "op", op, "error", err.Error())
		}
	}
	return err
}
