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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestRunInTx(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)
	createTestTables(t, db)

	err := RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		assert.True(t, InTx(tx))
		_, err := tx.NewInsert().Model(&testParent{ID: "p1", Name: "kept"}).Exec(ctx)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&testParent{ID: "p2", Name: "discarded"}).Exec(ctx); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := db.NewSelect().Model((*testParent)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.False(t, InTx(db))
	assert.Error(t, RunInTx(ctx, nil, nil))
}

func TestWithSavepointRollsBackOnlyTheFailedStep(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)
	createTestTables(t, db)

	err := RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&testParent{ID: "p1", Name: "first"}).Exec(ctx); err != nil {
			return err
		}
		spErr := WithSavepoint(ctx, tx, func(ctx context.Context) error {
			if _, err := tx.NewInsert().Model(&testParent{ID: "p2", Name: "second"}).Exec(ctx); err != nil {
				return err
			}
			_, err := tx.NewInsert().Model(&testParent{ID: "p3", Name: "first"}).Exec(ctx)
			return err
		})
		assert.True(t, IsConstraintViolation(spErr))

		// The transaction is still usable after the savepoint rollback.
		_, err := tx.NewInsert().Model(&testParent{ID: "p4", Name: "third"}).Exec(ctx)
		return err
	})
	require.NoError(t, err)

	var ids []string
	require.NoError(t, db.NewSelect().Model((*testParent)(nil)).Column("id").Order("id").Scan(ctx, &ids))
	assert.Equal(t, []string{"p1", "p4"}, ids)
}

func TestWithSavepointOutsideTx(t *testing.T) {
	ctx := context.Background()
	_, db := connectMemory(t)

	called := false
	err := WithSavepoint(ctx, db, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
