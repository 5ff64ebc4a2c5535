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

package repository

import (
	"errors"
	"fmt"

	"github.com/tomoncle/shipyard/database"
)

// Error codes carried by repository errors.
const (
	CodeNotFound = "NOT_FOUND"
	CodeConflict = "CONFLICT"
)

var (
	// ErrNotFound matches every *NotFoundError through errors.Is.
	ErrNotFound = errors.New("entity not found")
	// ErrConflict matches every *ConflictError through errors.Is.
	ErrConflict = errors.New("constraint conflict")
)

// NotFoundError reports that no entity of Kind has the identifier ID.
type NotFoundError struct {
	Kind string
	ID   string
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Code() string { return CodeNotFound }

// ConflictError reports a write rejected by a uniqueness or integrity
// constraint. Message carries the store's constraint description.
type ConflictError struct {
	Kind    string
	Message string
	Reason  database.SQLError
	Err     error
}

func NewConflictError(kind string, err error) *ConflictError {
	_, class := database.ClassifySQLError(err)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ConflictError{Kind: kind, Message: msg, Reason: class, Err: err}
}

// NewStateConflictError reports a write refused because the entity's
// current state does not allow it.
func NewStateConflictError(kind, message string) *ConflictError {
	return &ConflictError{Kind: kind, Message: message}
}

func (e *ConflictError) Error() string {
	if e.Kind == "" {
		return "conflict: " + e.Message
	}
	return fmt.Sprintf("%s conflict: %s", e.Kind, e.Message)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func (e *ConflictError) Unwrap() error { return e.Err }

func (e *ConflictError) Code() string { return CodeConflict }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// translateError turns constraint violations into *ConflictError and passes
// every other error through unchanged.
func translateError(kind string, err error) error {
	if err == nil {
		return nil
	}
	if database.IsConstraintViolation(err) {
		return NewConflictError(kind, err)
	}
	return err
}
