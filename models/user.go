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

// User belongs to exactly one tenant; its email is unique within the tenant.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	Base

	TenantID     string   `bun:"tenant_id,type:varchar(36),notnull" json:"tenant_id"`
	Email        string   `bun:"email,type:varchar(255),notnull" json:"email"`
	Username     string   `bun:"username,type:varchar(100),notnull" json:"username"`
	PasswordHash string   `bun:"password_hash,type:varchar(255),notnull" json:"-"`
	Role         UserRole `bun:"role,type:varchar(20),notnull" json:"role"`
	IsActive     bool     `bun:"is_active,notnull" json:"is_active"`
	IsVerified   bool     `bun:"is_verified,notnull" json:"is_verified"`

	TeamMemberships []*TeamMember `bun:"rel:has-many,join:id=user_id" json:"team_memberships,omitempty"`
}

var userSchema = types.NewEntitySchema("User", "users",
	columns("tenant_id", "email", "username", "password_hash", "role", "is_active", "is_verified")...).
	WithRelations("TeamMemberships").
	WithUnique("ux_users_tenant_email", "tenant_id", "email").
	WithForeignKey("tenant_id", "tenants", types.OnDeleteCascade)

func (*User) Schema() *types.EntitySchema { return userSchema }

// NewUser returns an active, unverified member of tenantID.
func NewUser(tenantID, email, username, passwordHash string) *User {
	return &User{
		TenantID:     tenantID,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         UserRoleMember,
		IsActive:     true,
	}
}

func (u *User) Init(now time.Time) {
	u.Base.Init(now)
	if u.Role == "" {
		u.Role = UserRoleMember
	}
}

type UserPatch struct {
	Email        *string
	Username     *string
	PasswordHash *string
	Role         *UserRole
	IsActive     *bool
	IsVerified   *bool
}

func (p UserPatch) Apply(u *User) []string {
	var c types.Changes
	types.Set(&c, "email", &u.Email, p.Email)
	types.Set(&c, "username", &u.Username, p.Username)
	types.Set(&c, "password_hash", &u.PasswordHash, p.PasswordHash)
	types.Set(&c, "role", &u.Role, p.Role)
	types.Set(&c, "is_active", &u.IsActive, p.IsActive)
	types.Set(&c, "is_verified", &u.IsVerified, p.IsVerified)
	return c
}
