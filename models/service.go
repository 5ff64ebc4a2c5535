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
	"time"

	"github.com/tomoncle/shipyard/types"
	"github.com/uptrace/bun"
)

const (
	DefaultGitBranch      = "main"
	DefaultDockerfilePath = "Dockerfile"
	DefaultBuildContext   = "."
)

// Service is a deployable unit of a project.
type Service struct {
	bun.BaseModel `bun:"table:services,alias:s"`
	Base

	ProjectID      string        `bun:"project_id,type:varchar(36),notnull" json:"project_id"`
	Name           string        `bun:"name,type:varchar(255),notnull" json:"name"`
	Status         ServiceStatus `bun:"status,type:varchar(20),notnull" json:"status"`
	GitRepo        *string       `bun:"git_repo,type:varchar(500)" json:"git_repo,omitempty"`
	GitBranch      string        `bun:"git_branch,type:varchar(255),notnull" json:"git_branch"`
	DockerfilePath string        `bun:"dockerfile_path,type:varchar(255),notnull" json:"dockerfile_path"`
	BuildContext   string        `bun:"build_context,type:varchar(255),notnull" json:"build_context"`
	Port           *int          `bun:"port" json:"port,omitempty"`
	Domain         *string       `bun:"domain,type:varchar(255)" json:"domain,omitempty"`
	Image          *string       `bun:"image,type:varchar(500)" json:"image,omitempty"`

	Builds               []*Build               `bun:"rel:has-many,join:id=service_id" json:"builds,omitempty"`
	EnvironmentVariables []*EnvironmentVariable `bun:"rel:has-many,join:id=service_id" json:"environment_variables,omitempty"`
	Webhooks             []*Webhook             `bun:"rel:has-many,join:id=service_id" json:"webhooks,omitempty"`
}

var serviceSchema = types.NewEntitySchema("Service", "services",
	columns("project_id", "name", "status", "git_repo", "git_branch", "dockerfile_path",
		"build_context", "port", "domain", "image")...).
	WithRelations("Builds", "EnvironmentVariables", "Webhooks").
	WithUnique("ux_services_project_name", "project_id", "name").
	WithForeignKey("project_id", "projects", types.OnDeleteCascade)

func (*Service) Schema() *types.EntitySchema { return serviceSchema }

func (s *Service) Init(now time.Time) {
	s.Base.Init(now)
	if s.Status == "" {
		s.Status = ServiceStatusPending
	}
	if s.GitBranch == "" {
		s.GitBranch = DefaultGitBranch
	}
	if s.DockerfilePath == "" {
		s.DockerfilePath = DefaultDockerfilePath
	}
	if s.BuildContext == "" {
		s.BuildContext = DefaultBuildContext
	}
}

type ServicePatch struct {
	Name           *string
	Status         *ServiceStatus
	GitRepo        *string
	GitBranch      *string
	DockerfilePath *string
	BuildContext   *string
	Port           *int
	Domain         *string
	Image          *string
}

func (p ServicePatch) Apply(s *Service) []string {
	var c types.Changes
	types.Set(&c, "name", &s.Name, p.Name)
	types.Set(&c, "status", &s.Status, p.Status)
	types.SetNullable(&c, "git_repo", &s.GitRepo, p.GitRepo)
	types.Set(&c, "git_branch", &s.GitBranch, p.GitBranch)
	types.Set(&c, "dockerfile_path", &s.DockerfilePath, p.DockerfilePath)
	types.Set(&c, "build_context", &s.BuildContext, p.BuildContext)
	types.SetNullable(&c, "port", &s.Port, p.Port)
	types.SetNullable(&c, "domain", &s.Domain, p.Domain)
	types.SetNullable(&c, "image", &s.Image, p.Image)
	return c
}
