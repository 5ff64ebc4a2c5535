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

package types

// Patch is a typed partial update. Apply copies every set field onto entity
// and returns the columns it changed. Unset (nil) fields leave the entity
// untouched, so a patch can never clear a nullable column.
type Patch[T any] interface {
	Apply(entity *T) []string
}

// Changes collects the columns written by a patch.
type Changes []string

// Set copies *src into *dst when src is non-nil.
func Set[V any](c *Changes, column string, dst *V, src *V) {
	if src == nil {
		return
	}
	*dst = *src
	*c = append(*c, column)
}

// SetNullable copies *src into a nullable destination when src is non-nil.
func SetNullable[V any](c *Changes, column string, dst **V, src *V) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
	*c = append(*c, column)
}

// Ptr returns a pointer to v.
func Ptr[V any](v V) *V {
	return &v
}
