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

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// EnumTable backs a string enum with an ordered value list and descriptions.
type EnumTable[E ~string] struct {
	values []E
	descs  map[E]string
}

// NewEnumTable declares the legal values of E in order.
func NewEnumTable[E ~string](values []E, descs map[E]string) EnumTable[E] {
	return EnumTable[E]{values: values, descs: descs}
}

func (t EnumTable[E]) Values() []E {
	out := make([]E, len(t.values))
	copy(out, t.values)
	return out
}

func (t EnumTable[E]) Number(v E) int {
	for i, x := range t.values {
		if x == v {
			return i
		}
	}
	return IllegalValue
}

func (t EnumTable[E]) IsValid(v E) bool {
	return t.Number(v) != IllegalValue
}

func (t EnumTable[E]) Name(v E) string {
	if !t.IsValid(v) {
		return IllegalName
	}
	return string(v)
}

func (t EnumTable[E]) Desc(v E) string {
	if d, ok := t.descs[v]; ok {
		return d
	}
	return IllegalDesc
}

// Parse returns the enum value named s.
func (t EnumTable[E]) Parse(s string) (E, bool) {
	for _, x := range t.values {
		if string(x) == s {
			return x, true
		}
	}
	var zero E
	return zero, false
}
