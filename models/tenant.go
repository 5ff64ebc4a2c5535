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

// Tenant is the top-level owner of users and projects.
type Tenant struct {
	bun.BaseModel `bun:"table:tenants,alias:tn"`
	Base

	Name        string  `bun:"name,type:varchar(255),notnull" json:"name"`
	Slug        string  `bun:"slug,type:varchar(255),notnull" json:"slug"`
	Description *string `bun:"description,type:text" json:"description,omitempty"`

	Users    []*User    `bun:"rel:has-many,join:id=tenant_id" json:"users,omitempty"`
	Projects []*Project `bun:"rel:has-many,join:id=tenant_id" json:"projects,omitempty"`
}

var tenantSchema = types.NewEntitySchema("Tenant", "tenants",
	columns("name", "slug", "description")...).
	WithRelations("Users", "Projects").
	WithUnique("ux_tenants_slug", "slug")

func (*Tenant) Schema() *types.EntitySchema { return tenantSchema }

type TenantPatch struct {
	Name        *string
	Slug        *string
	Description *string
}

func (p TenantPatch) Apply(t *Tenant) []string {
	var c types.Changes
	types.Set(&c, "name", &t.Name, p.Name)
	types.Set(&c, "slug", &t.Slug, p.Slug)
	types.SetNullable(&c, "description", &t.Description, p.Description)
	return c
}
