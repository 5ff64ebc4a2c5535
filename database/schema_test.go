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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/types"
)

func TestCreateTablesEnforcesConstraints(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)
	createTestTables(t, db)

	// Running the bootstrap twice leaves existing tables alone.
	createTestTables(t, db)

	_, err := db.NewInsert().Model(&testParent{ID: "p1", Name: "alpha"}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&testParent{ID: "p2", Name: "alpha"}).Exec(ctx)
	is, class := ClassifySQLError(err)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, class)

	_, err = db.NewInsert().Model(&testChild{ID: "c1", ParentID: "missing"}).Exec(ctx)
	is, class = ClassifySQLError(err)
	assert.True(t, is)
	assert.Equal(t, ForeignKeyViolationErr, class)

	_, err = db.NewInsert().Model(&testChild{ID: "c1", ParentID: "p1"}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewDelete().Model((*testParent)(nil)).Where("id = ?", "p1").Exec(ctx)
	require.NoError(t, err)

	n, err := db.NewSelect().Model((*testChild)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateTablesWithoutForeignKeys(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)
	sm := NewSchemaManager(db, nil, WithRegistry(testRegistry()), WithForeignKeys(false))
	require.NoError(t, sm.CreateTables(ctx))

	_, err := db.NewInsert().Model(&testChild{ID: "c1", ParentID: "missing"}).Exec(ctx)
	assert.NoError(t, err)
}

func TestDropTables(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)
	sm := NewSchemaManager(db, nil, WithRegistry(testRegistry()))
	require.NoError(t, sm.CreateTables(ctx))
	require.NoError(t, sm.DropTables(ctx))

	_, err := db.NewSelect().Model((*testParent)(nil)).Count(ctx)
	is, class := ClassifySQLError(err)
	assert.True(t, is)
	assert.Equal(t, NoTableErr, class)

	assert.Error(t, NewSchemaManager(nil, nil).CreateTables(ctx))
}

type brokenModel struct {
	ID string `bun:"id,pk"`
}

var brokenSchema = types.NewEntitySchema("Broken", "broken", "id", "owner_id").
	WithForeignKey("owner_id", "", "explode")

func (*brokenModel) Schema() *types.EntitySchema { return brokenSchema }

func TestCreateTablesRejectsInvalidForeignKeys(t *testing.T) {
	_, db := connectMemory(t)
	r := NewTableRegistry()
	r.Register(EntityTable((*brokenModel)(nil), 1))

	err := NewSchemaManager(db, nil, WithRegistry(r)).CreateTables(context.Background())
	assert.ErrorContains(t, err, "2 errors")
}

func TestTableRegistryOrdersByTier(t *testing.T) {
	instances := modelInstances(testRegistry())
	require.Len(t, instances, 2)
	assert.IsType(t, (*testParent)(nil), instances[0])
	assert.IsType(t, (*testChild)(nil), instances[1])

	assert.Equal(t, testParentSchema, SchemaOf(instances[0]))
	assert.Nil(t, SchemaOf(struct{}{}))
}

func TestTableRegistryReplacesSameTable(t *testing.T) {
	r := testRegistry()
	r.Register(EntityTable((*testChild)(nil), 5))

	models := r.Models()
	require.Len(t, models, 2)
	assert.IsType(t, (*testChild)(nil), models[0].Instance())
	assert.Equal(t, 5, models[0].Tier())
	assert.IsType(t, (*testParent)(nil), models[1].Instance())
}
