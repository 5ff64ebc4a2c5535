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
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/models"
	"github.com/uptrace/bun"
)

// newTestDB opens an isolated in-memory sqlite database with every
// registered table created.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.SlowQueryTime = 0

	manager, err := database.Open(context.Background(), cfg,
		database.WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager.GetDB()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// seed holds one tenant -> project -> service chain.
type seed struct {
	Tenant  *models.Tenant
	Project *models.Project
	Service *models.Service
}

func seedService(t *testing.T, ctx context.Context, db bun.IDB, slug string) seed {
	t.Helper()
	tenant, err := NewTenantRepository(db).Create(ctx, &models.Tenant{Name: slug, Slug: slug})
	require.NoError(t, err)
	project, err := NewProjectRepository(db).Create(ctx, &models.Project{TenantID: tenant.ID, Name: "web"})
	require.NoError(t, err)
	service, err := NewServiceRepository(db).Create(ctx, &models.Service{ProjectID: project.ID, Name: "api"})
	require.NoError(t, err)
	return seed{Tenant: tenant, Project: project, Service: service}
}
