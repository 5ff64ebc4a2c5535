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

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Session is the store handle repositories are bound to: a *bun.DB for
// autocommit use, or a bun.Tx for a unit of work.
type Session = bun.IDB

// TxFunc is the body of a unit of work.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// RunInTx runs fn in a transaction on db. The transaction commits when fn
// returns nil and rolls back on error, panic or context cancellation.
func RunInTx(ctx context.Context, db *bun.DB, fn TxFunc) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// InTx reports whether session is a transaction.
func InTx(session Session) bool {
	switch session.(type) {
	case bun.Tx, *bun.Tx:
		return true
	}
	return false
}

// WithSavepoint runs fn inside a savepoint when session is a transaction, so
// a failing statement can be undone without aborting the enclosing
// transaction. Outside a transaction fn runs directly.
func WithSavepoint(ctx context.Context, session Session, fn func(ctx context.Context) error) error {
	if !InTx(session) {
		return fn(ctx)
	}

	name := "sp_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := session.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(ctx); err != nil {
		// The rollback must run even when ctx is already cancelled.
		if _, rbErr := session.ExecContext(context.WithoutCancel(ctx), "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := session.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}
