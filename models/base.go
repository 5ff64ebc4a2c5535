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

	"github.com/google/uuid"
)

// Base carries the identifier and timestamps shared by every entity.
type Base struct {
	ID        string     `bun:"id,pk,type:varchar(36)" json:"id"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
}

func (b *Base) GetID() string { return b.ID }

func (b *Base) SetID(id string) { b.ID = id }

func (b *Base) ModifiedAt() *time.Time { return b.UpdatedAt }

// Init assigns a UUIDv4 and the creation time when they are unset.
func (b *Base) Init(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}
}

// Touch stamps updated_at. A clock reading earlier than the stored stamp
// keeps the stored stamp.
func (b *Base) Touch(now time.Time) {
	now = now.UTC()
	if b.UpdatedAt != nil && now.Before(*b.UpdatedAt) {
		now = *b.UpdatedAt
	}
	if now.Before(b.CreatedAt) {
		now = b.CreatedAt
	}
	b.UpdatedAt = &now
}

var baseColumns = []string{"id", "created_at", "updated_at"}

func columns(cols ...string) []string {
	out := make([]string, 0, len(baseColumns)+len(cols))
	out = append(out, baseColumns...)
	return append(out, cols...)
}
