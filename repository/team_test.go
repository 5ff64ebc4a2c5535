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

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

type teamFixture struct {
	db      bun.IDB
	team    *models.Team
	alice   *models.User
	bob     *models.User
	members *TeamMemberRepository
}

func newTeamFixture(t *testing.T, ctx context.Context) teamFixture {
	t.Helper()
	db := newTestDB(t)
	tenant, err := NewTenantRepository(db).Create(ctx, &models.Tenant{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	users := NewUserRepository(db)
	alice, err := users.Create(ctx, models.NewUser(tenant.ID, "alice@example.com", "alice", "h"))
	require.NoError(t, err)
	bob, err := users.Create(ctx, models.NewUser(tenant.ID, "bob@example.com", "bob", "h"))
	require.NoError(t, err)
	team, err := NewTeamRepository(db).Create(ctx, &models.Team{Name: "platform"})
	require.NoError(t, err)
	return teamFixture{db: db, team: team, alice: alice, bob: bob, members: NewTeamMemberRepository(db)}
}

func TestTeamMembership(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, ctx)

	owner, err := f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.alice.ID, Role: models.TeamMemberRoleOwner})
	require.NoError(t, err)
	require.NotNil(t, owner.User)
	assert.Equal(t, "alice", owner.User.Username)

	member, err := f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberRoleMember, member.Role)

	_, err = f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.bob.ID})
	assert.True(t, IsConflict(err))

	isMember, err := f.members.IsMember(ctx, f.team.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	hasRole, err := f.members.HasRole(ctx, f.team.ID, f.alice.ID, models.TeamMemberRoleOwner)
	require.NoError(t, err)
	assert.True(t, hasRole)

	// Roles match exactly; an owner is not reported as admin.
	hasRole, err = f.members.HasRole(ctx, f.team.ID, f.alice.ID, models.TeamMemberRoleAdmin)
	require.NoError(t, err)
	assert.False(t, hasRole)

	owners := models.TeamMemberRoleOwner
	page, err := f.members.ListByTeam(ctx, f.team.ID, &owners, types.PaginationParams{}, types.SortParams{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total())
	assert.Equal(t, f.alice.ID, page.Items()[0].UserID)
	assert.NotNil(t, page.Items()[0].User)

	byUser, err := f.members.ListByUser(ctx, f.bob.ID, types.PaginationParams{}, types.SortParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, byUser.Total())
}

func TestTeamMemberRoleChanges(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, ctx)

	_, err := f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.bob.ID})
	require.NoError(t, err)

	promoted, err := f.members.UpdateRole(ctx, f.team.ID, f.bob.ID, models.TeamMemberRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberRoleAdmin, promoted.Role)

	_, err = f.members.UpdateRole(ctx, f.team.ID, f.alice.ID, models.TeamMemberRoleAdmin)
	require.True(t, IsNotFound(err))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "TeamMember", nf.Kind)
	assert.Equal(t, f.team.ID+":"+f.alice.ID, nf.ID)

	removed, err := f.members.RemoveMember(ctx, f.team.ID, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.members.RemoveMember(ctx, f.team.ID, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	membership, err := f.members.GetMembership(ctx, f.team.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Nil(t, membership)
}

func TestTeamLookups(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, ctx)
	teams := NewTeamRepository(f.db)

	_, err := teams.Create(ctx, &models.Team{Name: "platform"})
	assert.True(t, IsConflict(err))

	got, err := teams.GetByName(ctx, "platform")
	require.NoError(t, err)
	assert.Equal(t, f.team.ID, got.ID)

	exists, err := teams.NameExists(ctx, "platform", f.team.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.alice.ID})
	require.NoError(t, err)

	withMembers, err := teams.GetWithMembers(ctx, f.team.ID)
	require.NoError(t, err)
	require.Len(t, withMembers.Members, 1)
	require.NotNil(t, withMembers.Members[0].User)
	assert.Equal(t, "alice", withMembers.Members[0].User.Username)

	missing, err := teams.GetWithMembers(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeletingUserRemovesMemberships(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t, ctx)

	_, err := f.members.Create(ctx, &models.TeamMember{TeamID: f.team.ID, UserID: f.alice.ID})
	require.NoError(t, err)

	require.NoError(t, NewUserRepository(f.db).DeleteOrErr(ctx, f.alice.ID))

	n, err := f.members.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
