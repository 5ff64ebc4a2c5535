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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

type testParent struct {
	bun.BaseModel `bun:"table:test_parents"`

	ID   string `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

var testParentSchema = types.NewEntitySchema("TestParent", "test_parents", "id", "name").
	WithUnique("ux_test_parents_name", "name")

func (*testParent) Schema() *types.EntitySchema { return testParentSchema }

type testChild struct {
	bun.BaseModel `bun:"table:test_children"`

	ID       string `bun:"id,pk"`
	ParentID string `bun:"parent_id,notnull"`
}

var testChildSchema = types.NewEntitySchema("TestChild", "test_children", "id", "parent_id").
	WithForeignKey("parent_id", "test_parents", types.OnDeleteCascade)

func (*testChild) Schema() *types.EntitySchema { return testChildSchema }

func testRegistry() TableRegistry {
	r := NewTableRegistry()
	// Registered out of order; tier decides creation order.
	r.Register(EntityTable((*testChild)(nil), 20))
	r.Register(EntityTable((*testParent)(nil), 10))
	return r
}

func connectMemory(t *testing.T, opts ...ManagerOption) (AbstractDatabaseManager, *bun.DB) {
	t.Helper()
	t.Setenv("DB_TYPE", "")
	t.Setenv("DATABASE_URL", "")

	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = ":memory:"
	cfg.SlowQueryTime = 0

	opts = append([]ManagerOption{WithMetricsRegisterer(prometheus.NewRegistry())}, opts...)
	dm := NewDatabaseManager(cfg, opts...)
	require.NoError(t, dm.Connect(context.Background()))
	t.Cleanup(func() { _ = dm.Disconnect() })
	return dm, dm.GetDB()
}

func createTestTables(t *testing.T, db bun.IDB) {
	t.Helper()
	sm := NewSchemaManager(db, nil, WithRegistry(testRegistry()))
	require.NoError(t, sm.CreateTables(context.Background()))
}
