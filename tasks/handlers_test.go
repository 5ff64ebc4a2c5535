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

package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard"
	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/models"
	"github.com/tomoncle/shipyard/repository"
	"github.com/tomoncle/shipyard/types"
)

type fixture struct {
	store   *shipyard.Store
	mux     *asynq.ServeMux
	hook    *logtest.Hook
	service *models.Service
	build   *models.Build
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "sqlite"
	cfg.ConnectionConfig.DBName = ":memory:"
	cfg.ConnectionConfig.SlowQueryTime = 0

	manager, err := database.Open(ctx, cfg, database.WithMetricsRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Disconnect() })
	store := shipyard.NewStore(manager.GetDB())

	f := fixture{store: store}
	err = store.RunInTx(ctx, func(ctx context.Context, repos *shipyard.Repositories) error {
		tenant, err := repos.Tenants.Create(ctx, &models.Tenant{Name: "Acme", Slug: "acme"})
		if err != nil {
			return err
		}
		project, err := repos.Projects.Create(ctx, &models.Project{TenantID: tenant.ID, Name: "web"})
		if err != nil {
			return err
		}
		if f.service, err = repos.Services.Create(ctx, &models.Service{ProjectID: project.ID, Name: "api"}); err != nil {
			return err
		}
		f.build, err = repos.Builds.Create(ctx, &models.Build{ServiceID: f.service.ID})
		return err
	})
	require.NoError(t, err)

	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f.hook = hook
	f.mux = asynq.NewServeMux()
	NewHandlers(store, log).Register(f.mux)
	return f
}

func (f fixture) process(t *testing.T, task *asynq.Task, err error) error {
	t.Helper()
	require.NoError(t, err)
	return f.mux.ProcessTask(context.Background(), task)
}

func TestBuildLifecycleTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := NewBuildStartTask(f.build.ID)
	require.NoError(t, f.process(t, task, err))
	// Redelivery of the same start is harmless.
	require.NoError(t, f.process(t, task, err))

	build, err := f.store.Repositories().Builds.GetByIDOrErr(ctx, f.build.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BuildStatusBuilding, build.Status)
	assert.NotNil(t, build.StartedAt)

	tag := "registry.example.com/api:1"
	task, err = NewBuildCompleteTask(BuildCompletePayload{BuildID: f.build.ID, Success: true, ImageTag: types.Ptr(tag)})
	require.NoError(t, f.process(t, task, err))

	build, err = f.store.Repositories().Builds.GetByIDOrErr(ctx, f.build.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BuildStatusSuccess, build.Status)
	require.NotNil(t, build.ImageTag)
	assert.Equal(t, tag, *build.ImageTag)
	assert.NotNil(t, build.DurationSeconds)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "build completed", entry.Message)
	assert.Equal(t, f.build.ID, entry.Data["build_id"])
}

func TestRejectedTasksAreNotRetried(t *testing.T) {
	f := newFixture(t)

	task, err := NewBuildCompleteTask(BuildCompletePayload{BuildID: f.build.ID, Success: false})
	require.NoError(t, f.process(t, task, err))

	// A terminal build cannot be restarted.
	task, err = NewBuildStartTask(f.build.ID)
	err = f.process(t, task, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, repository.IsConflict(err))
	assert.Equal(t, logrus.WarnLevel, f.hook.LastEntry().Level)

	task, err = NewBuildStartTask("missing")
	err = f.process(t, task, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, repository.IsNotFound(err))

	err = f.mux.ProcessTask(context.Background(), asynq.NewTask(TypeBuildStart, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = f.mux.ProcessTask(context.Background(),
		asynq.NewTask(TypeServiceStatus, []byte(`{"service_id":"x","status":"exploded"}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestServiceStatusTask(t *testing.T) {
	f := newFixture(t)

	task, err := NewServiceStatusTask(f.service.ID, models.ServiceStatusRunning)
	require.NoError(t, f.process(t, task, err))

	svc, err := f.store.Repositories().Services.GetByIDOrErr(context.Background(), f.service.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceStatusRunning, svc.Status)

	_, err = NewServiceStatusTask(f.service.ID, models.ServiceStatus("exploded"))
	assert.Error(t, err)
}

func TestStoreErrorsAreRetried(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.DB().Close())

	task, err := NewBuildStartTask(f.build.ID)
	err = f.process(t, task, err)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, logrus.ErrorLevel, f.hook.LastEntry().Level)
}

func TestAsynqLevel(t *testing.T) {
	assert.Equal(t, asynq.DebugLevel, asynqLevel(logrus.TraceLevel))
	assert.Equal(t, asynq.InfoLevel, asynqLevel(logrus.InfoLevel))
	assert.Equal(t, asynq.WarnLevel, asynqLevel(logrus.WarnLevel))
	assert.Equal(t, asynq.ErrorLevel, asynqLevel(logrus.ErrorLevel))
	assert.Equal(t, asynq.FatalLevel, asynqLevel(logrus.PanicLevel))
}
