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

import "github.com/tomoncle/shipyard/database"

// Depth below the tenant root; tables are created shallowest first.
const (
	tierRoot = iota
	tierTenant
	tierProject
	tierService
)

func init() {
	database.RegisterTable(database.EntityTable((*Tenant)(nil), tierRoot))
	database.RegisterTable(database.EntityTable((*Team)(nil), tierRoot))
	database.RegisterTable(database.EntityTable((*User)(nil), tierTenant))
	database.RegisterTable(database.EntityTable((*Project)(nil), tierTenant))
	database.RegisterTable(database.EntityTable((*TeamMember)(nil), tierProject))
	database.RegisterTable(database.EntityTable((*Service)(nil), tierProject))
	database.RegisterTable(database.EntityTable((*Build)(nil), tierService))
	database.RegisterTable(database.EntityTable((*EnvironmentVariable)(nil), tierService))
	database.RegisterTable(database.EntityTable((*Webhook)(nil), tierService))
}
