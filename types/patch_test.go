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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type widget struct {
	Name  string
	Color *string
	Size  int
}

type widgetPatch struct {
	Name  *string
	Color *string
	Size  *int
}

func (p widgetPatch) Apply(w *widget) []string {
	var c Changes
	Set(&c, "name", &w.Name, p.Name)
	SetNullable(&c, "color", &w.Color, p.Color)
	Set(&c, "size", &w.Size, p.Size)
	return c
}

var _ Patch[widget] = widgetPatch{}

func TestPatchNilFieldsAreNoOps(t *testing.T) {
	w := &widget{Name: "a", Color: Ptr("red"), Size: 1}

	cols := widgetPatch{}.Apply(w)
	assert.Empty(t, cols)
	assert.Equal(t, "a", w.Name)
	assert.Equal(t, "red", *w.Color)
	assert.Equal(t, 1, w.Size)
}

func TestPatchAppliesSetFields(t *testing.T) {
	w := &widget{Name: "a", Size: 1}

	cols := widgetPatch{Color: Ptr("blue"), Size: Ptr(0)}.Apply(w)
	assert.Equal(t, []string{"color", "size"}, cols)
	assert.Equal(t, "a", w.Name)
	assert.Equal(t, "blue", *w.Color)
	assert.Equal(t, 0, w.Size)
}

func TestSetNullableCopiesValue(t *testing.T) {
	src := "green"
	var dst *string
	var c Changes
	SetNullable(&c, "color", &dst, &src)

	src = "changed"
	assert.Equal(t, "green", *dst)
}
