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
	"fmt"

	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// TeamMemberRepository eager-loads the member's user.
type TeamMemberRepository struct {
	*BaseRepository[models.TeamMember, *models.TeamMember]
}

var _ Repository[models.TeamMember] = (*TeamMemberRepository)(nil)

func NewTeamMemberRepository(session bun.IDB, opts ...Option) *TeamMemberRepository {
	return &TeamMemberRepository{NewBaseRepository[models.TeamMember, *models.TeamMember](session, opts...)}
}

func (r *TeamMemberRepository) ListByTeam(ctx context.Context, teamID string, role *models.TeamMemberRole, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.TeamMember], error) {
	filters := types.NewFilters().Set("team_id", teamID)
	types.SetOptional(filters, "role", role)
	return r.List(ctx, filters, page, sort)
}

func (r *TeamMemberRepository) ListByUser(ctx context.Context, userID string, page types.PaginationParams, sort types.SortParams) (*types.PaginatedResult[models.TeamMember], error) {
	return r.List(ctx, types.NewFilters().Set("user_id", userID), page, sort)
}

func (r *TeamMemberRepository) GetMembership(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	return r.FindOne(ctx, membership(teamID, userID))
}

func (r *TeamMemberRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	return r.Probe(ctx, membership(teamID, userID), "")
}

// HasRole reports whether userID holds exactly role in teamID.
func (r *TeamMemberRepository) HasRole(ctx context.Context, teamID, userID string, role models.TeamMemberRole) (bool, error) {
	return r.Probe(ctx, And(membership(teamID, userID), Eq("role", role)), "")
}

// UpdateRole changes the role of userID in teamID.
func (r *TeamMemberRepository) UpdateRole(ctx context.Context, teamID, userID string, role models.TeamMemberRole) (*models.TeamMember, error) {
	m, err := r.GetMembership(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NewNotFoundError(r.Kind(), fmt.Sprintf("%s:%s", teamID, userID))
	}
	return r.Update(ctx, m.ID, models.TeamMemberPatch{Role: &role})
}

// RemoveMember deletes the membership and reports whether it existed.
func (r *TeamMemberRepository) RemoveMember(ctx context.Context, teamID, userID string) (bool, error) {
	n, err := r.DeleteWhere(ctx, membership(teamID, userID))
	return n > 0, err
}

func membership(teamID, userID string) QueryFunc {
	return And(Eq("team_id", teamID), Eq("user_id", userID))
}
