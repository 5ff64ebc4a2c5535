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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/shipyard/database"
	"github.com/tomoncle/shipyard/types"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBaseInitKeepsAssignedValues(t *testing.T) {
	var b Base
	b.Init(t0.In(time.FixedZone("CET", 3600)))
	assert.Len(t, b.ID, 36)
	assert.Equal(t, time.UTC, b.CreatedAt.Location())
	assert.True(t, t0.Equal(b.CreatedAt))
	assert.Nil(t, b.UpdatedAt)

	id := b.ID
	b.Init(t0.Add(time.Hour))
	assert.Equal(t, id, b.ID)
	assert.True(t, t0.Equal(b.CreatedAt))
}

func TestBaseTouchIsMonotonic(t *testing.T) {
	b := Base{CreatedAt: t0}

	b.Touch(t0.Add(time.Minute))
	require.NotNil(t, b.UpdatedAt)
	assert.True(t, t0.Add(time.Minute).Equal(*b.UpdatedAt))

	b.Touch(t0.Add(time.Second))
	assert.True(t, t0.Add(time.Minute).Equal(*b.UpdatedAt))

	fresh := Base{CreatedAt: t0}
	fresh.Touch(t0.Add(-time.Hour))
	assert.True(t, t0.Equal(*fresh.UpdatedAt))
}

func TestDefaults(t *testing.T) {
	s := &Service{ProjectID: "p", Name: "api"}
	s.Init(t0)
	assert.Equal(t, ServiceStatusPending, s.Status)
	assert.Equal(t, DefaultGitBranch, s.GitBranch)
	assert.Equal(t, DefaultDockerfilePath, s.DockerfilePath)
	assert.Equal(t, DefaultBuildContext, s.BuildContext)

	b := &Build{ServiceID: "s"}
	b.Init(t0)
	assert.Equal(t, BuildStatusPending, b.Status)

	u := &User{TenantID: "t", Email: "a@example.com", Username: "a"}
	u.Init(t0)
	assert.Equal(t, UserRoleMember, u.Role)
	assert.False(t, u.IsActive)
	assert.True(t, NewUser("t", "a@example.com", "a", "h").IsActive)

	w := &Webhook{ServiceID: "s", URL: "https://example.com"}
	w.Init(t0)
	assert.Equal(t, WebhookProviderGitHub, w.Provider)
}

func TestBuildStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BuildStatus
		ok       bool
	}{
		{BuildStatusPending, BuildStatusBuilding, true},
		{BuildStatusPending, BuildStatusSuccess, true},
		{BuildStatusPending, BuildStatusFailed, true},
		{BuildStatusBuilding, BuildStatusSuccess, true},
		{BuildStatusBuilding, BuildStatusFailed, true},
		{BuildStatusBuilding, BuildStatusPending, false},
		{BuildStatusSuccess, BuildStatusFailed, false},
		{BuildStatusFailed, BuildStatusBuilding, false},
		{BuildStatusPending, BuildStatus("queued"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, BuildStatusSuccess.IsTerminal())
	assert.False(t, BuildStatusBuilding.IsTerminal())
	assert.Equal(t, BuildStatusSuccess, BuildOutcome(true))
	assert.Equal(t, BuildStatusFailed, BuildOutcome(false))

	st, ok := ParseBuildStatus("building")
	assert.True(t, ok)
	assert.Equal(t, BuildStatusBuilding, st)
	_, ok = ParseBuildStatus("BUILDING")
	assert.False(t, ok)
}

func TestElapsed(t *testing.T) {
	assert.Nil(t, Elapsed(nil, t0))

	start := t0
	d := Elapsed(&start, t0.Add(30*time.Second+900*time.Millisecond))
	require.NotNil(t, d)
	assert.Equal(t, 30, *d)

	d = Elapsed(&start, t0.Add(-time.Second))
	assert.Equal(t, 0, *d)
}

func TestPatchesReportChangedColumns(t *testing.T) {
	s := &Service{Name: "api", Status: ServiceStatusPending}
	running := ServiceStatusRunning
	same := "api"
	assert.ElementsMatch(t, []string{"name", "status"}, ServicePatch{Name: &same, Status: &running}.Apply(s))
	assert.Equal(t, ServiceStatusRunning, s.Status)

	e := &EnvironmentVariable{Key: "K", Value: "v", IsSecret: true}
	assert.Equal(t, "********", e.Redacted())
	off := false
	assert.Equal(t, []string{"is_secret"}, EnvironmentVariablePatch{IsSecret: &off}.Apply(e))
	assert.Equal(t, "v", e.Redacted())

	meta := types.JsonObject{"runner": "docker"}
	b := &Build{}
	assert.ElementsMatch(t, []string{"build_metadata"}, BuildPatch{Metadata: &meta}.Apply(b))
}

func TestTableModelsCreateParentsFirst(t *testing.T) {
	seen := map[string]int{}
	for i, inst := range database.TableModels() {
		s := database.SchemaOf(inst)
		require.NotNil(t, s, "%T has no schema", inst)
		seen[s.Table] = i
	}
	require.Len(t, seen, 9)
	for _, inst := range database.TableModels() {
		s := database.SchemaOf(inst)
		for _, fk := range s.ForeignKeys {
			assert.Less(t, seen[fk.ReferenceTable], seen[s.Table], "%s before %s", fk.ReferenceTable, s.Table)
		}
	}
}
