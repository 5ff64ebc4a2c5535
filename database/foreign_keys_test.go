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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForeignKeyConstraintSQL(t *testing.T) {
	fk := ForeignKeyConstraint{
		Table:           "services",
		Column:          "project_id",
		ReferenceTable:  "projects",
		ReferenceColumn: "id",
		OnDelete:        "cascade",
	}
	assert.Equal(t, "fk_services_project_id", fk.GenerateConstraintName())
	assert.Equal(t, "(?) REFERENCES ? (?) ON DELETE CASCADE", fk.Clause())
	assert.Equal(t,
		"ALTER TABLE services ADD CONSTRAINT fk_services_project_id FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE",
		fk.GenerateSQL())

	fk.ConstraintName = "fk_custom"
	fk.OnUpdate = "restrict"
	assert.Equal(t, "fk_custom", fk.GenerateConstraintName())
	assert.Equal(t, "(?) REFERENCES ? (?) ON DELETE CASCADE ON UPDATE RESTRICT", fk.Clause())
}

func TestForeignKeyManager(t *testing.T) {
	fkm := NewForeignKeyManager(nil, testParentSchema, testChildSchema)
	require.Len(t, fkm.ListAllConstraints(), 1)

	byTable := fkm.GetConstraintsByTable("TEST_CHILDREN")
	require.Len(t, byTable, 1)
	assert.Equal(t, "test_parents", byTable[0].ReferenceTable)
	assert.Equal(t, "id", byTable[0].ReferenceColumn)
	assert.Empty(t, fkm.GetConstraintsByTable("test_parents"))
	assert.Empty(t, fkm.ValidateConstraints())

	assert.Nil(t, ConstraintsFromSchema(nil))
}

func TestForeignKeyManagerValidation(t *testing.T) {
	fkm := NewForeignKeyManager(nil)
	fkm.constraints = []ForeignKeyConstraint{
		{Table: "a", Column: "b_id", ReferenceTable: "b", ReferenceColumn: "id", OnDelete: "SET NULL"},
		{Table: "a", Column: "", ReferenceTable: "b", ReferenceColumn: "id"},
		{Table: "a", Column: "c_id", ReferenceTable: "c", ReferenceColumn: "id", OnUpdate: "DROP"},
	}
	errs := fkm.ValidateConstraints()
	require.Len(t, errs, 2)
	assert.ErrorContains(t, errs[0], "column name cannot be empty")
	assert.ErrorContains(t, errs[1], "invalid update policy")
}
