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
	"fmt"
	"strings"
	"time"
)

// Referential actions accepted by ForeignKey.OnDelete.
const (
	OnDeleteCascade  = "CASCADE"
	OnDeleteRestrict = "RESTRICT"
	OnDeleteSetNull  = "SET NULL"
	OnDeleteNoAction = "NO ACTION"
)

// UniqueConstraint is a set of columns whose combined value must be unique.
// The first columns usually name the parent, which scopes the uniqueness.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// ForeignKey references a parent row.
type ForeignKey struct {
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string
}

// EntitySchema is the static description of one entity kind: its table,
// columns usable for filtering and sorting, relations eligible for eager
// loading, and the constraints the store enforces.
type EntitySchema struct {
	Kind            string
	Table           string
	PrimaryKey      string
	CreatedAtColumn string
	UpdatedAtColumn string
	Columns         []string
	Relations       []string
	Uniques         []UniqueConstraint
	ForeignKeys     []ForeignKey

	columns   map[string]struct{}
	relations map[string]struct{}
}

// NewEntitySchema declares an entity kind stored in table with the given
// columns. "id", "created_at" and "updated_at" become the primary key and
// timestamp columns when present.
func NewEntitySchema(kind, table string, columns ...string) *EntitySchema {
	s := &EntitySchema{
		Kind:      kind,
		Table:     table,
		Columns:   columns,
		columns:   make(map[string]struct{}, len(columns)),
		relations: make(map[string]struct{}),
	}
	for _, c := range columns {
		s.columns[c] = struct{}{}
	}
	if s.HasColumn("id") {
		s.PrimaryKey = "id"
	}
	if s.HasColumn("created_at") {
		s.CreatedAtColumn = "created_at"
	}
	if s.HasColumn("updated_at") {
		s.UpdatedAtColumn = "updated_at"
	}
	return s
}

// WithRelations declares relations (Go field names) eligible for eager loading.
func (s *EntitySchema) WithRelations(names ...string) *EntitySchema {
	for _, n := range names {
		if _, ok := s.relations[n]; ok {
			continue
		}
		s.relations[n] = struct{}{}
		s.Relations = append(s.Relations, n)
	}
	return s
}

// WithUnique declares a unique constraint over columns.
func (s *EntitySchema) WithUnique(name string, columns ...string) *EntitySchema {
	s.Uniques = append(s.Uniques, UniqueConstraint{Name: name, Columns: columns})
	return s
}

// WithForeignKey declares that column references refTable(id).
func (s *EntitySchema) WithForeignKey(column, refTable, onDelete string) *EntitySchema {
	s.ForeignKeys = append(s.ForeignKeys, ForeignKey{
		Column:          column,
		ReferenceTable:  refTable,
		ReferenceColumn: "id",
		OnDelete:        strings.ToUpper(onDelete),
	})
	return s
}

func (s *EntitySchema) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

func (s *EntitySchema) HasRelation(name string) bool {
	_, ok := s.relations[name]
	return ok
}

func (s *EntitySchema) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Table)
}

// Entity is implemented by every persisted record.
type Entity interface {
	GetID() string
	SetID(id string)
	// Init assigns the identifier and creation timestamp when they are unset
	// and applies kind-specific defaults.
	Init(now time.Time)
	// Touch stamps the modification time, never moving it backwards.
	Touch(now time.Time)
	// ModifiedAt returns the modification time, nil until the first update.
	ModifiedAt() *time.Time
	Schema() *EntitySchema
}
