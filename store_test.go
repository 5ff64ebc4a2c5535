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
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/repository"
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.SlowQueryTime = 0

	manager, err := database.Open(context.Background(), cfg,
		database.WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Disconnect() })
	return NewStore(manager.GetDB())
}

func TestStoreRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var serviceID string
	err := store.RunInTx(ctx, func(ctx context.Context, repos *Repositories) error {
		tenant, err := repos.Tenants.Create(ctx, &models.Tenant{Name: "Acme", Slug: "acme"})
		if err != nil {
			return err
		}
		project, err := repos.Projects.Create(ctx, &models.Project{TenantID: tenant.ID, Name: "web"})
		if err != nil {
			return err
		}
		service, err := repos.Services.Create(ctx, &models.Service{ProjectID: project.ID, Name: "api"})
		if err != nil {
			return err
		}
		serviceID = service.ID
		return nil
	})
	require.NoError(t, err)

	got, err := store.Repositories().Services.GetByIDOrErr(ctx, serviceID)
	require.NoError(t, err)
	assert.Equal(t, "api", got.Name)
}

func TestStoreRunInTxRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Repositories().Tenants.Create(ctx, &models.Tenant{Name: "Taken", Slug: "taken"})
	require.NoError(t, err)

	err = store.RunInTx(ctx, func(ctx context.Context, repos *Repositories) error {
		if _, err := repos.Tenants.Create(ctx, &models.Tenant{Name: "Fresh", Slug: "fresh"}); err != nil {
			return err
		}
		_, err := repos.Tenants.Create(ctx, &models.Tenant{Name: "Dup", Slug: "taken"})
		return err
	})
	require.True(t, repository.IsConflict(err))

	exists, err := store.Repositories().Tenants.SlugExists(ctx, "fresh", "")
	require.NoError(t, err)
	assert.False(t, exists)

	boom := errors.New("boom")
	err = store.RunInTx(ctx, func(ctx context.Context, repos *Repositories) error {
		if _, err := repos.Tenants.Create(ctx, &models.Tenant{Name: "Other", Slug: "other"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := store.Repositories().Tenants.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStoreRecoversFromConflictInsideTx(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.RunInTx(ctx, func(ctx context.Context, repos *Repositories) error {
		if _, err := repos.Teams.Create(ctx, &models.Team{Name: "platform"}); err != nil {
			return err
		}
		_, err := repos.Teams.Create(ctx, &models.Team{Name: "platform"})
		assert.True(t, repository.IsConflict(err))
		_, err = repos.Teams.Create(ctx, &models.Team{Name: "data"})
		return err
	})
	require.NoError(t, err)

	n, err := store.Repositories().Teams.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilStore(t *testing.T) {
	var s *Store
	assert.Error(t, s.RunInTx(context.Background(), func(context.Context, *Repositories) error { return nil }))
}

func TestRepositoriesShareSession(t *testing.T) {
	store := newTestStore(t)
	err := store.RunInTx(context.Background(), func(ctx context.Context, repos *Repositories) error {
		_, isTx := repos.Builds.Session().(bun.Tx)
		assert.True(t, isTx)
		assert.Equal(t, repos.Users.Session(), repos.Webhooks.Session())
		return nil
	})
	require.NoError(t, err)
	_, isDB := store.Repositories().Users.Session().(*bun.DB)
	assert.True(t, isDB)
}

func TestServiceFacade(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	tenants := NewService[models.Tenant, *models.Tenant](store)

	acme, err := tenants.Save(ctx, &models.Tenant{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	_, err = tenants.Save(ctx, &models.Tenant{Name: "Globex", Slug: "globex"})
	require.NoError(t, err)

	_, err = tenants.Save(ctx, &models.Tenant{Name: "Again", Slug: "acme"})
	assert.True(t, repository.IsConflict(err))

	got, err := tenants.Get(ctx, acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	name := "Acme Corp"
	updated, err := tenants.Update(ctx, acme.ID, models.TenantPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	page, err := tenants.Page(ctx, types.Filters{"slug": "globex"}, types.PaginationParams{}, types.SortParams{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total())
	assert.Equal(t, "Globex", page.Items()[0].Name)

	require.NoError(t, tenants.Delete(ctx, acme.ID))
	err = tenants.Delete(ctx, acme.ID)
	assert.True(t, repository.IsNotFound(err))

	_, err = tenants.Get(ctx, acme.ID)
	assert.True(t, repository.IsNotFound(err))
}
