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

import "github.com/tomoncle/shipyard/types"

// UserRole is a user's role within its tenant.
type UserRole string

const (
	UserRoleOwner  UserRole = "owner"
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

var userRoles = types.NewEnumTable(
	[]UserRole{UserRoleOwner, UserRoleAdmin, UserRoleMember},
	map[UserRole]string{
		UserRoleOwner:  "Tenant owner",
		UserRoleAdmin:  "Tenant administrator",
		UserRoleMember: "Tenant member",
	},
)

func (r UserRole) IsValid() bool  { return userRoles.IsValid(r) }
func (r UserRole) Number() int    { return userRoles.Number(r) }
func (r UserRole) String() string { return string(r) }
func (r UserRole) Desc() string   { return userRoles.Desc(r) }
func (r UserRole) Name() string   { return userRoles.Name(r) }

// ServiceStatus is set by external orchestration; any value may follow any other.
type ServiceStatus string

const (
	ServiceStatusPending  ServiceStatus = "pending"
	ServiceStatusBuilding ServiceStatus = "building"
	ServiceStatusRunning  ServiceStatus = "running"
	ServiceStatusFailed   ServiceStatus = "failed"
	ServiceStatusStopped  ServiceStatus = "stopped"
)

var serviceStatuses = types.NewEnumTable(
	[]ServiceStatus{ServiceStatusPending, ServiceStatusBuilding, ServiceStatusRunning, ServiceStatusFailed, ServiceStatusStopped},
	map[ServiceStatus]string{
		ServiceStatusPending:  "Waiting for first deployment",
		ServiceStatusBuilding: "Image build in progress",
		ServiceStatusRunning:  "Deployed and serving",
		ServiceStatusFailed:   "Deployment failed",
		ServiceStatusStopped:  "Stopped",
	},
)

func (s ServiceStatus) IsValid() bool  { return serviceStatuses.IsValid(s) }
func (s ServiceStatus) Number() int    { return serviceStatuses.Number(s) }
func (s ServiceStatus) String() string { return string(s) }
func (s ServiceStatus) Desc() string   { return serviceStatuses.Desc(s) }
func (s ServiceStatus) Name() string   { return serviceStatuses.Name(s) }

// ParseServiceStatus returns the status named s.
func ParseServiceStatus(s string) (ServiceStatus, bool) {
	return serviceStatuses.Parse(s)
}

// BuildStatus follows pending -> building -> success|failed.
type BuildStatus string

const (
	BuildStatusPending  BuildStatus = "pending"
	BuildStatusBuilding BuildStatus = "building"
	BuildStatusSuccess  BuildStatus = "success"
	BuildStatusFailed   BuildStatus = "failed"
)

var buildStatuses = types.NewEnumTable(
	[]BuildStatus{BuildStatusPending, BuildStatusBuilding, BuildStatusSuccess, BuildStatusFailed},
	map[BuildStatus]string{
		BuildStatusPending:  "Queued",
		BuildStatusBuilding: "Running",
		BuildStatusSuccess:  "Finished successfully",
		BuildStatusFailed:   "Finished with failure",
	},
)

func (s BuildStatus) IsValid() bool  { return buildStatuses.IsValid(s) }
func (s BuildStatus) Number() int    { return buildStatuses.Number(s) }
func (s BuildStatus) String() string { return string(s) }
func (s BuildStatus) Desc() string   { return buildStatuses.Desc(s) }
func (s BuildStatus) Name() string   { return buildStatuses.Name(s) }

// IsTerminal reports whether no further transition is allowed.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s BuildStatus) CanTransitionTo(next BuildStatus) bool {
	switch s {
	case BuildStatusPending:
		return next == BuildStatusBuilding || next.IsTerminal()
	case BuildStatusBuilding:
		return next.IsTerminal()
	}
	return false
}

// ParseBuildStatus returns the status named s.
func ParseBuildStatus(s string) (BuildStatus, bool) {
	return buildStatuses.Parse(s)
}

// BuildOutcome maps a boolean result to a terminal status.
func BuildOutcome(success bool) BuildStatus {
	if success {
		return BuildStatusSuccess
	}
	return BuildStatusFailed
}

type WebhookProvider string

const WebhookProviderGitHub WebhookProvider = "github"

var webhookProviders = types.NewEnumTable(
	[]WebhookProvider{WebhookProviderGitHub},
	map[WebhookProvider]string{WebhookProviderGitHub: "GitHub push events"},
)

func (p WebhookProvider) IsValid() bool  { return webhookProviders.IsValid(p) }
func (p WebhookProvider) Number() int    { return webhookProviders.Number(p) }
func (p WebhookProvider) String() string { return string(p) }
func (p WebhookProvider) Desc() string   { return webhookProviders.Desc(p) }
func (p WebhookProvider) Name() string   { return webhookProviders.Name(p) }

// TeamMemberRole orders privileges owner > admin > member.
type TeamMemberRole string

const (
	TeamMemberRoleOwner  TeamMemberRole = "owner"
	TeamMemberRoleAdmin  TeamMemberRole = "admin"
	TeamMemberRoleMember TeamMemberRole = "member"
)

var teamMemberRoles = types.NewEnumTable(
	[]TeamMemberRole{TeamMemberRoleOwner, TeamMemberRoleAdmin, TeamMemberRoleMember},
	map[TeamMemberRole]string{
		TeamMemberRoleOwner:  "Team owner",
		TeamMemberRoleAdmin:  "Team administrator",
		TeamMemberRoleMember: "Team member",
	},
)

func (r TeamMemberRole) IsValid() bool  { return teamMemberRoles.IsValid(r) }
func (r TeamMemberRole) Number() int    { return teamMemberRoles.Number(r) }
func (r TeamMemberRole) String() string { return string(r) }
func (r TeamMemberRole) Desc() string   { return teamMemberRoles.Desc(r) }
func (r TeamMemberRole) Name() string   { return teamMemberRoles.Name(r) }

var (
	_ types.BaseEnum = UserRole("")
	_ types.BaseEnum = ServiceStatus("")
	_ types.BaseEnum = BuildStatus("")
	_ types.BaseEnum = WebhookProvider("")
	_ types.BaseEnum = TeamMemberRole("")
)
