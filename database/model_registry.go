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

package database

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tomoncle/shipyard/types"
)

var defaultTables = NewTableRegistry()

// TableModel is an entity table the schema manager bootstraps. Tier is the
// table's depth below the tenant root; lower tiers are created first so a
// foreign key always points at an existing table.
type TableModel interface {
	Instance() interface{}
	Tier() int
}

// TableRegistry holds one TableModel per table name.
type TableRegistry interface {
	Register(model TableModel)
	Models() []TableModel
}

type tableRegistry struct {
	mu     sync.RWMutex
	tables map[string]TableModel
}

func NewTableRegistry() TableRegistry {
	return &tableRegistry{tables: make(map[string]TableModel)}
}

// Register adds model, replacing an earlier model for the same table.
func (r *tableRegistry) Register(model TableModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[tableKey(model.Instance())] = model
}

// Models orders tables by tier, then by name.
func (r *tableRegistry) Models() []TableModel {
	r.mu.RLock()
	keys := make([]string, 0, len(r.tables))
	for k := range r.tables {
		keys = append(keys, k)
	}
	result := make([]TableModel, len(keys))
	sort.Strings(keys)
	for i, k := range keys {
		result[i] = r.tables[k]
	}
	r.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Tier() < result[j].Tier()
	})
	return result
}

func tableKey(instance interface{}) string {
	if s := SchemaOf(instance); s != nil && s.Table != "" {
		return s.Table
	}
	return fmt.Sprintf("%T", instance)
}

type entityTable struct {
	instance interface{}
	tier     int
}

// EntityTable registers a nil entity pointer such as (*models.Tenant)(nil)
// at tier.
func EntityTable(instance interface{}, tier int) TableModel {
	return entityTable{instance: instance, tier: tier}
}

func (t entityTable) Instance() interface{} { return t.instance }

func (t entityTable) Tier() int { return t.tier }

// RegisterTable adds model to the tables created by default.
func RegisterTable(model TableModel) {
	defaultTables.Register(model)
}

// TableModels returns the default tables' instances, parents first.
func TableModels() []interface{} {
	return modelInstances(defaultTables)
}

func modelInstances(r TableRegistry) []interface{} {
	models := r.Models()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

// SchemaOf returns the entity schema of a model instance, or nil.
func SchemaOf(instance interface{}) *types.EntitySchema {
	if p, ok := instance.(interface{ Schema() *types.EntitySchema }); ok {
		return p.Schema()
	}
	return nil
}
