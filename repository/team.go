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
	"database/sql"
	"errors"

	"github.com/tomoncle/shipyard/models"
	"github.com/uptrace/bun"
)

// TeamRepository eager-loads each team's memberships.
type TeamRepository struct {
	*BaseRepository[models.Team, *models.Team]
}

var _ Repository[models.Team] = (*TeamRepository)(nil)

func NewTeamRepository(session bun.IDB, opts ...Option) *TeamRepository {
	return &TeamRepository{NewBaseRepository[models.Team, *models.Team](session, opts...)}
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	return r.FindOne(ctx, Eq("name", name))
}

func (r *TeamRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return r.Probe(ctx, Eq("name", name), excludeID)
}

// GetWithMembers loads the team, its memberships and each member's user
// regardless of the repository's eager-load settings. It returns nil when
// the team does not exist.
func (r *TeamRepository) GetWithMembers(ctx context.Context, id string) (*models.Team, error) {
	team := new(models.Team)
	err := r.Session().NewSelect().Model(team).
		Relation("Members").
		Relation("Members.User").
		Where("?TableAlias.? = ?", bun.Ident("id"), id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}
