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

package shipyard

import (
	"context"
	"fmt"

	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/repository"
	"github.com/uptrace/bun"
)

// Repositories bundles every entity repository bound to one session.
type Repositories struct {
	Tenants              *repository.TenantRepository
	Users                *repository.UserRepository
	Projects             *repository.ProjectRepository
	Services             *repository.ServiceRepository
	Builds               *repository.BuildRepository
	EnvironmentVariables *repository.EnvironmentVariableRepository
	Webhooks             *repository.WebhookRepository
	Teams                *repository.TeamRepository
	TeamMembers          *repository.TeamMemberRepository
}

// NewRepositories binds all repositories to session.
func NewRepositories(session bun.IDB, opts ...repository.Option) *Repositories {
	return &Repositories{
		Tenants:              repository.NewTenantRepository(session, opts...),
		Users:                repository.NewUserRepository(session, opts...),
		Projects:             repository.NewProjectRepository(session, opts...),
		Services:             repository.NewServiceRepository(session, opts...),
		Builds:               repository.NewBuildRepository(session, opts...),
		EnvironmentVariables: repository.NewEnvironmentVariableRepository(session, opts...),
		Webhooks:             repository.NewWebhookRepository(session, opts...),
		Teams:                repository.NewTeamRepository(session, opts...),
		TeamMembers:          repository.NewTeamMemberRepository(session, opts...),
	}
}

// Store is the unit-of-work entry point: each RunInTx call gets a fresh set
// of repositories sharing one transaction.
type Store struct {
	db   *bun.DB
	opts []repository.Option
}

func NewStore(db *bun.DB, opts ...repository.Option) *Store {
	return &Store{db: db, opts: opts}
}

func (s *Store) DB() *bun.DB { return s.db }

// Repositories returns repositories bound to the connection pool, where
// every statement commits on its own.
func (s *Store) Repositories() *Repositories {
	return NewRepositories(s.db, s.opts...)
}

// RunInTx commits when fn returns nil and rolls every write back otherwise.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, NewRepositories(tx, s.opts...))
	})
}
