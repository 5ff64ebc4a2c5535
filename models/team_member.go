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
	"time"

	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// TeamMember links a user to a team with a role; a user joins a team once.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:tm"`
	Base

	TeamID string         `bun:"team_id,type:varchar(36),notnull" json:"team_id"`
	UserID string         `bun:"user_id,type:varchar(36),notnull" json:"user_id"`
	Role   TeamMemberRole `bun:"role,type:varchar(20),notnull" json:"role"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

var teamMemberSchema = types.NewEntitySchema("TeamMember", "team_members",
	columns("team_id", "user_id", "role")...).
	WithRelations("User").
	WithUnique("ux_team_members_team_user", "team_id", "user_id").
	WithForeignKey("team_id", "teams", types.OnDeleteCascade).
	WithForeignKey("user_id", "users", types.OnDeleteCascade)

func (*TeamMember) Schema() *types.EntitySchema { return teamMemberSchema }

func (m *TeamMember) Init(now time.Time) {
	m.Base.Init(now)
	if m.Role == "" {
		m.Role = TeamMemberRoleMember
	}
}

type TeamMemberPatch struct {
	Role *TeamMemberRole
}

func (p TeamMemberPatch) Apply(m *TeamMember) []string {
	var c types.Changes
	types.Set(&c, "role", &m.Role, p.Role)
	return c
}
