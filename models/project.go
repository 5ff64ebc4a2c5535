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

package models

import (
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// Project groups services under a tenant; its name is unique within the tenant.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`
	Base

	TenantID    string  `bun:"tenant_id,type:varchar(36),notnull" json:"tenant_id"`
	Name        string  `bun:"name,type:varchar(255),notnull" json:"name"`
	Description *string `bun:"description,type:text" json:"description,omitempty"`

	Services []*Service `bun:"rel:has-many,join:id=project_id" json:"services,omitempty"`
}

var projectSchema = types.NewEntitySchema("Project", "projects",
	columns("tenant_id", "name", "description")...).
	WithRelations("Services").
	WithUnique("ux_projects_tenant_name", "tenant_id", "name").
	WithForeignKey("tenant_id", "tenants", types.OnDeleteCascade)

func (*Project) Schema() *types.EntitySchema { return projectSchema }

type ProjectPatch struct {
	Name        *string
	Description *string
}

func (p ProjectPatch) Apply(pr *Project) []string {
	var c types.Changes
	types.Set(&c, "name", &pr.Name, p.Name)
	types.SetNullable(&c, "description", &pr.Description, p.Description)
	return c
}
