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

package types

import (
	"sort"
	"strings"
)

// Pagination and ordering bounds.
const (
	DefaultSkip      = 0
	DefaultLimit     = 100
	MinLimit         = 1
	MaxLimit         = 1000
	SortAsc          = "asc"
	SortDesc         = "desc"
	DefaultSortField = "created_at"
)

// Filters maps a column name to an exact-match value. Entries whose value is
// nil, and entries naming a column the entity does not have, are ignored.
type Filters map[string]any

// NewFilters returns an empty filter set.
func NewFilters() Filters {
	return make(Filters)
}

// Set adds an exact-match condition and returns the filter set.
func (f Filters) Set(column string, value any) Filters {
	f[column] = value
	return f
}

// Keys returns the filter columns in a deterministic order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetOptional adds the condition only when value is non-nil.
func SetOptional[V any](f Filters, column string, value *V) Filters {
	if value != nil {
		f[column] = *value
	}
	return f
}

// PaginationParams is a normalized offset/limit pair.
type PaginationParams struct {
	skip  int
	limit int
}

// NewPaginationParams clamps skip to >= 0 and limit to [MinLimit, MaxLimit].
func NewPaginationParams(skip, limit int) PaginationParams {
	if skip < 0 {
		skip = 0
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PaginationParams{skip: skip, limit: limit}
}

// DefaultPaginationParams returns the first page of DefaultLimit rows.
func DefaultPaginationParams() PaginationParams {
	return NewPaginationParams(DefaultSkip, DefaultLimit)
}

func (p PaginationParams) Skip() int { return p.skip }

func (p PaginationParams) Limit() int { return p.limit }

// Offset is the effective row offset for a query.
func (p PaginationParams) Offset() int { return p.skip }

// IsZero reports whether p is the zero value, which listings treat as
// DefaultPaginationParams.
func (p PaginationParams) IsZero() bool { return p.limit == 0 }

// OrDefault returns p, or DefaultPaginationParams for the zero value.
func (p PaginationParams) OrDefault() PaginationParams {
	if p.IsZero() {
		return DefaultPaginationParams()
	}
	return p
}

// SortParams describes a single ORDER BY column.
type SortParams struct {
	field     string
	direction string
}

// NewSortParams normalizes direction to "asc" or "desc" (default "desc").
// An empty field selects DefaultSortField.
func NewSortParams(field, direction string) SortParams {
	field = strings.TrimSpace(field)
	if field == "" {
		field = DefaultSortField
	}
	dir := strings.ToLower(strings.TrimSpace(direction))
	if dir != SortAsc {
		dir = SortDesc
	}
	return SortParams{field: field, direction: dir}
}

// DefaultSortParams orders by creation time, newest first.
func DefaultSortParams() SortParams {
	return NewSortParams(DefaultSortField, SortDesc)
}

func (s SortParams) Field() string { return s.field }

func (s SortParams) Direction() string { return s.direction }

func (s SortParams) Descending() bool { return s.direction == SortDesc }

// OrDefault returns s, or DefaultSortParams for the zero value.
func (s SortParams) OrDefault() SortParams {
	if s.field == "" {
		return DefaultSortParams()
	}
	return s
}

// Resolve returns the column to order by for the given schema. An unknown
// field falls back to the schema's creation timestamp column; when that is
// missing too, ok is false and no ordering should be applied.
func (s SortParams) Resolve(schema *EntitySchema) (column string, ok bool) {
	if schema == nil {
		return "", false
	}
	if schema.HasColumn(s.field) {
		return s.field, true
	}
	if schema.CreatedAtColumn != "" && schema.HasColumn(schema.CreatedAtColumn) {
		return schema.CreatedAtColumn, true
	}
	return "", false
}

// PaginatedResult is one page of a filtered listing.
type PaginatedResult[T any] struct {
	items []*T
	total int
	skip  int
	limit int
}

// NewPaginatedResult builds a page. total must be counted on the same
// predicate that produced items for HasMore to be exact.
func NewPaginatedResult[T any](items []*T, total, skip, limit int) *PaginatedResult[T] {
	copied := make([]*T, len(items))
	copy(copied, items)
	return &PaginatedResult[T]{items: copied, total: total, skip: skip, limit: limit}
}

// Items returns a copy of the page's rows.
func (r *PaginatedResult[T]) Items() []*T {
	items := make([]*T, len(r.items))
	copy(items, r.items)
	return items
}

func (r *PaginatedResult[T]) Len() int { return len(r.items) }

func (r *PaginatedResult[T]) Total() int { return r.total }

func (r *PaginatedResult[T]) Skip() int { return r.skip }

func (r *PaginatedResult[T]) Limit() int { return r.limit }

// HasMore reports whether rows exist beyond this page.
func (r *PaginatedResult[T]) HasMore() bool {
	return r.skip+len(r.items) < r.total
}
