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
	"context"
	"fmt"
	"os"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// SchemaManager creates and drops the tables of registered models. It is a
// bootstrap helper, not a versioned migration system.
type SchemaManager struct {
	db          bun.IDB
	logger      Logger
	registry    TableRegistry
	foreignKeys bool
}

type SchemaOption func(*SchemaManager)

// WithRegistry bootstraps the models of r instead of the default registry.
func WithRegistry(r TableRegistry) SchemaOption {
	return func(sm *SchemaManager) { sm.registry = r }
}

// WithForeignKeys toggles the FOREIGN KEY clauses. They are on by default.
func WithForeignKeys(enabled bool) SchemaOption {
	return func(sm *SchemaManager) { sm.foreignKeys = enabled }
}

func NewSchemaManager(db bun.IDB, logger Logger, opts ...SchemaOption) *SchemaManager {
	sm := &SchemaManager{
		db:          db,
		logger:      logger,
		registry:    defaultTables,
		foreignKeys: true,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// CreateTables creates every registered table in tier order together with
// its foreign keys and unique indexes. Existing tables are left alone.
func (sm *SchemaManager) CreateTables(ctx context.Context) error {
	if sm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("SHIPYARD_SQL_DEBUG_BOOTSTRAP"); !ok {
		EnableSilentMode(true)
		defer EnableSilentMode(false)
	}

	instances := modelInstances(sm.registry)
	if sm.foreignKeys {
		if errs := sm.validateForeignKeys(instances); len(errs) > 0 {
			for _, err := range errs {
				sm.debug("Foreign key constraint validation failed", "error", err.Error())
			}
			return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
		}
	}

	for _, model := range instances {
		if err := sm.createTable(ctx, model); err != nil {
			return err
		}
		if err := sm.createUniqueIndexes(ctx, model); err != nil {
			return err
		}
	}

	if sm.logger != nil {
		sm.logger.Info("Database tables created", "tables", len(instances))
	}
	return nil
}

func (sm *SchemaManager) validateForeignKeys(instances []interface{}) []error {
	fkm := NewForeignKeyManager(sm.logger)
	for _, inst := range instances {
		fkm.constraints = append(fkm.constraints, ConstraintsFromSchema(SchemaOf(inst))...)
	}
	return fkm.ValidateConstraints()
}

func (sm *SchemaManager) createTable(ctx context.Context, model interface{}) error {
	q := sm.db.NewCreateTable().Model(model).IfNotExists()
	if sm.foreignKeys {
		for _, fk := range ConstraintsFromSchema(SchemaOf(model)) {
			q = q.ForeignKey(fk.Clause(),
				bun.Ident(fk.Column), bun.Ident(fk.ReferenceTable), bun.Ident(fk.ReferenceColumn))
		}
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create table %T: %w", model, err)
	}
	return nil
}

func (sm *SchemaManager) createUniqueIndexes(ctx context.Context, model interface{}) error {
	schema := SchemaOf(model)
	if schema == nil {
		return nil
	}
	for _, u := range schema.Uniques {
		q := sm.db.NewCreateIndex().Model(model).Unique().Index(u.Name).Column(u.Columns...)
		if sm.db.Dialect().Name() != dialect.MySQL {
			q = q.IfNotExists()
		}
		if _, err := q.Exec(ctx); err != nil {
			if is, class := ClassifySQLError(err); is && class == ExistIndexErr {
				continue
			}
			return fmt.Errorf("failed to create index %s: %w", u.Name, err)
		}
		sm.debug("Unique index ensured", "table", schema.Table, "index", u.Name)
	}
	return nil
}

// DropTables drops every registered table, children first.
func (sm *SchemaManager) DropTables(ctx context.Context) error {
	if sm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	instances := modelInstances(sm.registry)
	for i := len(instances) - 1; i >= 0; i-- {
		if _, err := sm.db.NewDropTable().Model(instances[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %T: %w", instances[i], err)
		}
	}
	return nil
}

func (sm *SchemaManager) debug(msg string, fields ...interface{}) {
	if sm.logger != nil {
		sm.logger.Debug(msg, fields...)
	}
}
