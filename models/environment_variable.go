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
	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

// EnvironmentVariable is a key/value pair injected into a service; keys are
// unique per service.
type EnvironmentVariable struct {
	bun.BaseModel `bun:"table:environment_variables,alias:ev"`
	Base

	ServiceID string `bun:"service_id,type:varchar(36),notnull" json:"service_id"`
	Key       string `bun:"key,type:varchar(255),notnull" json:"key"`
	Value     string `bun:"value,type:text,notnull" json:"value"`
	IsSecret  bool   `bun:"is_secret,notnull" json:"is_secret"`
}

var environmentVariableSchema = types.NewEntitySchema("EnvironmentVariable", "environment_variables",
	columns("service_id", "key", "value", "is_secret")...).
	WithUnique("ux_env_vars_service_key", "service_id", "key").
	WithForeignKey("service_id", "services", types.OnDeleteCascade)

func (*EnvironmentVariable) Schema() *types.EntitySchema { return environmentVariableSchema }

// Redacted returns the value, masked when the variable is secret.
func (e *EnvironmentVariable) Redacted() string {
	if e.IsSecret {
		return "********"
	}
	return e.Value
}

type EnvironmentVariablePatch struct {
	Key      *string
	Value    *string
	IsSecret *bool
}

func (p EnvironmentVariablePatch) Apply(e *EnvironmentVariable) []string {
	var c types.Changes
	types.Set(&c, "key", &e.Key, p.Key)
	types.Set(&c, "value", &e.Value, p.Value)
	types.Set(&c, "is_secret", &e.IsSecret, p.IsSecret)
	return c
}
