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

type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`
	Base

	Name        string  `bun:"name,type:varchar(255),notnull" json:"name"`
	Description *string `bun:"description,type:text" json:"description,omitempty"`

	Members []*TeamMember `bun:"rel:has-many,join:id=team_id" json:"members,omitempty"`
}

var teamSchema = types.NewEntitySchema("Team", "teams",
	columns("name", "description")...).
	WithRelations("Members").
	WithUnique("ux_teams_name", "name")

func (*Team) Schema() *types.EntitySchema { return teamSchema }

type TeamPatch struct {
	Name        *string
	Description *string
}

func (p TeamPatch) Apply(t *Team) []string {
	var c types.Changes
	types.Set(&c, "name", &t.Name, p.Name)
	types.SetNullable(&c, "description", &t.Description, p.Description)
	return c
}
