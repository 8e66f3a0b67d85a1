package chainq

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(context.Background(), `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT,
			department TEXT,
			age INTEGER,
			active INTEGER NOT NULL DEFAULT 1,
			balance REAL
		)`)
	require.NoError(t, err)

	return db
}

func seedUsers(t *testing.T, db *DB) {
	t.Helper()

	ctx := context.Background()
	users := []map[string]any{
		{"name": "alice", "email": "alice@example.com", "department": "eng", "age": 30, "active": 1, "balance": 120.5},
		{"name": "bob", "email": nil, "department": "eng", "age": 25, "active": 1, "balance": 80.0},
		{"name": "carol", "email": "carol@example.com", "department": "ops", "age": 41, "active": 0, "balance": 0.0},
	}
	for _, u := range users {
		_, err := db.Table("users").Insert(ctx, u)
		require.NoError(t, err)
	}
}

func TestCount_EmptyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCount_AfterInsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Table("users").Insert(ctx, map[string]any{"name": "alice"})
	require.NoError(t, err)

	count, err := db.Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCount_Filtered(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	count, err := db.Table("users").
		Filter("active = ?", 1).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count) // alice, bob
}

func TestCount_Error(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.Table("missing").Count(ctx)
	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAggregates_EmptyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := db.Table("users")

	max, err := users.Max(ctx, "age")
	require.NoError(t, err)
	assert.Nil(t, max)

	min, err := users.Min(ctx, "age")
	require.NoError(t, err)
	assert.Nil(t, min)

	sum, err := users.Sum(ctx, "age")
	require.NoError(t, err)
	assert.Nil(t, sum)

	avg, err := users.Avg(ctx, "age")
	require.NoError(t, err)
	assert.Nil(t, avg)

	// total() is the one aggregate that yields 0.0 instead of NULL on
	// an empty set.
	total, err := users.Total(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestAggregates_Values(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()
	users := db.Table("users")

	max, err := users.Max(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(41), max)

	min, err := users.Min(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(25), min)

	sum, err := users.Sum(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(96), sum)

	avg, err := users.Avg(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 32.0, avg)

	total, err := users.Total(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 96.0, total)
}

func TestAggregates_TextColumn(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	max, err := db.Table("users").Max(ctx, "name")
	require.NoError(t, err)
	assert.Equal(t, "carol", max)
}

func TestAggregates_Filtered(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	sum, err := db.Table("users").
		Filter("department = ?", "eng").
		Sum(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(55), sum) // alice 30, bob 25
}

func TestSum_AllNull(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Table("users").Insert(ctx, map[string]any{"name": "alice"})
	require.NoError(t, err)
	_, err = db.Table("users").Insert(ctx, map[string]any{"name": "bob"})
	require.NoError(t, err)

	sum, err := db.Table("users").Sum(ctx, "age")
	require.NoError(t, err)
	assert.Nil(t, sum)

	total, err := db.Table("users").Total(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestInsert_ReturnsRowID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Table("users").Insert(ctx, map[string]any{"name": "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	id, err = db.Table("users").Insert(ctx, map[string]any{"name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestInsert_Error(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// name is NOT NULL.
	id, err := db.Table("users").Insert(ctx, map[string]any{"email": "x@example.com"})
	assert.Error(t, err)
	assert.Equal(t, int64(0), id)
}

func TestUpdate_ReturnsAffectedCount(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	affected, err := db.Table("users").
		Filter("department = ?", "eng").
		Update(ctx, map[string]any{"active": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected) // alice, bob

	count, err := db.Table("users").Filter("active = ?", 1).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestUpdate_NoMatch(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	affected, err := db.Table("users").
		Filter("name = ?", "nobody").
		Update(ctx, map[string]any{"active": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestUpdate_Error(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	affected, err := db.Table("users").
		Update(ctx, map[string]any{"no_such_column": 1})
	assert.Error(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestDelete_Filtered(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	deleted, err := db.Table("users").
		Filter("active = ?", 0).
		Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted) // carol

	count, err := db.Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDelete_All(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	deleted, err := db.Table("users").Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err := db.Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDelete_NoMatch(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	deleted, err := db.Table("users").
		Filter("age > ?", 100).
		Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestDelete_Error(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	deleted, err := db.Table("missing").Delete(ctx)
	assert.Error(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestQuery_InsideTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx, err := db.DB().BeginTx(ctx, nil)
	require.NoError(t, err)

	users := Table("users").Bind(tx)
	_, err = users.Insert(ctx, map[string]any{"name": "temp"})
	require.NoError(t, err)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, tx.Rollback())

	count, err = db.Table("users").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestExecute_Unbound(t *testing.T) {
	ctx := context.Background()
	users := Table("users")

	_, err := users.Count(ctx)
	require.ErrorIs(t, err, ErrNotBound)

	_, err = users.Insert(ctx, map[string]any{"name": "alice"})
	require.ErrorIs(t, err, ErrNotBound)

	_, err = users.Rows(ctx)
	require.ErrorIs(t, err, ErrNotBound)
}

func TestFilterHelpers_Execution(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	ctx := context.Background()

	count, err := db.Table("users").
		FilterEq(map[string]any{"department": "eng", "active": 1}).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = db.Table("users").
		FilterEq(map[string]any{"email": nil}).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count) // bob

	count, err = db.Table("users").
		FilterIn(map[string][]any{"name": {"alice", "carol"}}).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = db.Table("users").
		FilterBetween(map[string]Range{"age": {From: 25, To: 30}}).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count) // bounds are inclusive
}
