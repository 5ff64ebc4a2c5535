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
)

func TestServiceDefaults(t *testing.T) {
	ctx := context.Background()
	s := seedService(t, ctx, newTestDB(t), "acme")

	assert.Equal(t, models.ServiceStatusPending, s.Service.Status)
	assert.Equal(t, models.DefaultGitBranch, s.Service.GitBranch)
	assert.Equal(t, models.DefaultDockerfilePath, s.Service.DockerfilePath)
	assert.Equal(t, models.DefaultBuildContext, s.Service.BuildContext)
}

func TestServiceStatusIsUnrestricted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := seedService(t, ctx, db, "acme")
	repo := NewServiceRepository(db)

	for _, status := range []models.ServiceStatus{
		models.ServiceStatusRunning,
		models.ServiceStatusPending,
		models.ServiceStatusFailed,
		models.ServiceStatusRunning,
	} {
		svc, err := repo.UpdateStatus(ctx, s.Service.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, svc.Status)
	}

	running, err := repo.ListRunning(ctx, types.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, running.Total())

	stopped := models.ServiceStatusStopped
	page, err := repo.ListByProject(ctx, s.Project.ID, &stopped, types.PaginationParams{}, types.SortParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total())

	_, err = repo.UpdateStatus(ctx, "missing", models.ServiceStatusRunning)
	assert.True(t, IsNotFound(err))

	_, err = repo.UpdateStatus(ctx, s.Service.ID, models.ServiceStatus("exploded"))
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	current, err := repo.GetByIDOrErr(ctx, s.Service.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusRunning, current.Status)
}

func TestServiceNamesAreScopedToProject(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := seedService(t, ctx, db, "acme")
	repo := NewServiceRepository(db)

	_, err := repo.Create(ctx, &models.Service{ProjectID: s.Project.ID, Name: "api"})
	assert.True(t, IsConflict(err))

	got, err := repo.GetByName(ctx, "api", s.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Service.ID, got.ID)

	exists, err := repo.NameExists(ctx, "api", s.Project.ID, "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.NameExists(ctx, "api", s.Project.ID, s.Service.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestServiceEagerLoadsChildren(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	s := seedService(t, ctx, db, "acme")

	_, err := NewBuildRepository(db).Create(ctx, &models.Build{ServiceID: s.Service.ID})
	require.NoError(t, err)
	_, err = NewEnvironmentVariableRepository(db).Upsert(ctx, s.Service.ID, "A", "1", false)
	require.NoError(t, err)
	_, err = NewWebhookRepository(db).Create(ctx, models.NewWebhook(s.Service.ID, "https://hooks.example.com/x", "s"))
	require.NoError(t, err)

	svc, err := NewServiceRepository(db).GetByIDOrErr(ctx, s.Service.ID)
	require.NoError(t, err)
	assert.Len(t, svc.Builds, 1)
	assert.Len(t, svc.EnvironmentVariables, 1)
	assert.Len(t, svc.Webhooks, 1)
}
