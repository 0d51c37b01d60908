package core

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/selector"
)

// setupSQLite opens an in-memory database with a user3 table and an engine
// with User3 mapped.
func setupSQLite(t *testing.T) (*sql.DB, *Engine) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE user3 (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			age  INTEGER NOT NULL
		)
	`)
	require.NoError(t, err)

	e := newTestEngine(t, WithDialect("sqlite"))
	return db, e
}

func exec(t *testing.T, db *sql.DB, query string, args ...any) sql.Result {
	t.Helper()
	res, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, query)
	return res
}

func count(t *testing.T, db *sql.DB, e *Engine, filter any) int {
	t.Helper()
	query, err := e.BuildCount(User3{}, filter)
	require.NoError(t, err)
	args, err := FilterArgs(filter)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestIntegration_CRUD(t *testing.T) {
	db, e := setupSQLite(t)

	// Insert
	insert, err := e.BuildInsert(User3{})
	require.NoError(t, err)
	args, err := e.Args(&User3{Name: "Ana", Age: 31}, mapping.ColumnsOnly)
	require.NoError(t, err)
	res := exec(t, db, insert, args...)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	// Select by id
	selectByID, err := e.BuildSelectByID(User3{}, id)
	require.NoError(t, err)
	args, err = e.Args(User3{Id: int(id)}, mapping.KeysOnly)
	require.NoError(t, err)

	var got User3
	require.NoError(t, db.QueryRow(selectByID, args...).Scan(&got.Id, &got.Name, &got.Age))
	assert.Equal(t, User3{Id: int(id), Name: "Ana", Age: 31}, got)

	// Update
	update, err := e.BuildUpdate(User3{})
	require.NoError(t, err)
	args, err = e.Args(User3{Id: int(id), Name: "Ana Maria", Age: 32}, mapping.AllFields)
	require.NoError(t, err)
	res = exec(t, db, update, args...)
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	assert.Equal(t, 1, count(t, db, e, struct{ Name string }{"Ana Maria"}))
	assert.Equal(t, 0, count(t, db, e, struct{ Name string }{"Ana"}))

	// Delete by id
	deleteByID, err := e.BuildDeleteByID(User3{})
	require.NoError(t, err)
	args, err = e.Args(User3{Id: int(id)}, mapping.KeysOnly)
	require.NoError(t, err)
	exec(t, db, deleteByID, args...)

	assert.Equal(t, 0, count(t, db, e, nil))
}

func TestIntegration_BulkInsertAndFilters(t *testing.T) {
	db, e := setupSQLite(t)

	users := []User3{
		{Name: "Ana", Age: 31},
		{Name: "Bo", Age: 40},
		{Name: "Cy", Age: 40},
	}
	bulk, err := e.BuildBulkInsert(User3{}, len(users))
	require.NoError(t, err)
	args, err := e.BatchArgs(users, mapping.ColumnsOnly)
	require.NoError(t, err)
	exec(t, db, bulk, args...)

	assert.Equal(t, 3, count(t, db, e, nil))
	assert.Equal(t, 2, count(t, db, e, map[string]any{"Age": 40}))

	// Select with a filter
	filter := struct{ Age int }{40}
	query, err := e.BuildSelect(User3{}, filter)
	require.NoError(t, err)
	args, err = FilterArgs(filter)
	require.NoError(t, err)

	rows, err := db.Query(query+" ORDER BY id", args...)
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		var u User3
		require.NoError(t, rows.Scan(&u.Id, &u.Name, &u.Age))
		names = append(names, u.Name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"Bo", "Cy"}, names)

	// Delete with a filter
	del, err := e.BuildDelete(User3{}, filter)
	require.NoError(t, err)
	exec(t, db, del, args...)
	assert.Equal(t, 1, count(t, db, e, nil))

	// Truncate is DELETE FROM on SQLite
	truncate, err := e.BuildTruncate(User3{})
	require.NoError(t, err)
	exec(t, db, truncate)
	assert.Equal(t, 0, count(t, db, e, nil))
}

func TestIntegration_Upsert(t *testing.T) {
	db, e := setupSQLite(t)
	byName := selector.Of(func(u *User3) []any { return []any{&u.Name} })

	upsert, err := e.BuildUpsert(User3{}, 2, true, byName)
	require.NoError(t, err)
	args, err := e.BatchArgs([]*User3{{Name: "Ana", Age: 31}, {Name: "Bo", Age: 40}}, mapping.ColumnsOnly)
	require.NoError(t, err)
	exec(t, db, upsert, args...)

	// Same names again: rows are updated, not duplicated.
	args, err = e.BatchArgs([]*User3{{Name: "Ana", Age: 32}, {Name: "Bo", Age: 41}}, mapping.ColumnsOnly)
	require.NoError(t, err)
	exec(t, db, upsert, args...)

	assert.Equal(t, 2, count(t, db, e, nil))
	assert.Equal(t, 1, count(t, db, e, struct{ Age int }{32}))
	assert.Equal(t, 1, count(t, db, e, struct{ Age int }{41}))

	// DO NOTHING keeps the existing row.
	doNothing, err := e.BuildUpsert(User3{}, 1, false, nil)
	require.NoError(t, err)
	args, err = e.BatchArgs([]User3{{Name: "Ana", Age: 99}}, mapping.ColumnsOnly)
	require.NoError(t, err)
	exec(t, db, doNothing, args...)

	assert.Equal(t, 0, count(t, db, e, struct{ Age int }{99}))
	assert.Equal(t, 2, count(t, db, e, nil))
}
