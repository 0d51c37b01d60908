package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/entmap/internal/selector"
)

const upsertUser3 = `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0),(@Name_1, @Age_1),(@Name_2, @Age_2) ` +
	`ON CONFLICT (id,name) DO UPDATE SET name = EXCLUDED.name,age = EXCLUDED.age`

func idAndName() *selector.Selector {
	return selector.Of(func(u *User3) []any { return []any{&u.Id, &u.Name} })
}

func TestBuildUpsert(t *testing.T) {
	e := newTestEngine(t)

	sql, err := e.BuildUpsert(User3{}, 3, true, idAndName())
	require.NoError(t, err)
	assert.Equal(t, upsertUser3, sql)
}

func TestBuildUpsert_SameShapeDifferentInstance(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.BuildUpsert(User3{}, 3, true, idAndName())
	require.NoError(t, err)

	before := e.CacheStats()
	second, err := e.BuildUpsert(User3{}, 3, true, idAndName())
	require.NoError(t, err)
	after := e.CacheStats()

	assert.Equal(t, first, second)
	assert.Equal(t, before.Hits+1, after.Hits)

	// Reordered and string-based selectors name the same field set.
	third, err := e.BuildUpsert(User3{}, 3, true, selector.Names("Name", "Id"))
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.Contains(t, third, "ON CONFLICT (id,name)", "the first order built for a field set is kept")
}

func TestBuildUpsert_DifferentShapes(t *testing.T) {
	e := newTestEngine(t)

	byIDName, err := e.BuildUpsert(User3{}, 1, true, selector.Names("Id", "Name"))
	require.NoError(t, err)
	byName, err := e.BuildUpsert(User3{}, 1, true, selector.Of(func(u *User3) []any { return []any{&u.Name} }))
	require.NoError(t, err)
	byNameAge, err := e.BuildUpsert(User3{}, 1, true, selector.Names("Name", "Age"))
	require.NoError(t, err)

	assert.Equal(t, `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0) ON CONFLICT (id,name) DO UPDATE SET name = EXCLUDED.name,age = EXCLUDED.age`, byIDName)
	assert.Equal(t, `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name,age = EXCLUDED.age`, byName)
	assert.Equal(t, `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0) ON CONFLICT (name,age) DO UPDATE SET name = EXCLUDED.name,age = EXCLUDED.age`, byNameAge)

	// Earlier shapes are still served after new ones were added.
	again, err := e.BuildUpsert(User3{}, 1, true, selector.Names("Id", "Name"))
	require.NoError(t, err)
	assert.Equal(t, byIDName, again)
}

func TestBuildUpsert_NoCacheMatchesCached(t *testing.T) {
	e := newTestEngine(t)

	uncached, err := e.BuildUpsertNoCache(User3{}, 3, true, idAndName())
	require.NoError(t, err)
	assert.Equal(t, 0, e.CacheStats().Entities, "no-cache builds leave the cache untouched")

	cached, err := e.BuildUpsert(User3{}, 3, true, idAndName())
	require.NoError(t, err)
	warm, err := e.BuildUpsert(User3{}, 3, true, idAndName())
	require.NoError(t, err)

	assert.Equal(t, uncached, cached)
	assert.Equal(t, uncached, warm)
	assert.Equal(t, upsertUser3, uncached)
}

func TestBuildUpsert_DoNothing(t *testing.T) {
	e := newTestEngine(t)
	want := `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0),(@Name_1, @Age_1) ON CONFLICT DO NOTHING`

	sql, err := e.BuildUpsert(User3{}, 2, false, idAndName())
	require.NoError(t, err)
	assert.Equal(t, want, sql)

	sql, err = e.BuildUpsert(User3{}, 2, true, nil)
	require.NoError(t, err)
	assert.Equal(t, want, sql, "update without conflict keys falls back to DO NOTHING")

	// The count varies per call while the cached parts are reused.
	sql, err = e.BuildUpsert(User3{}, 1, true, idAndName())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO user3 ("name", "age") VALUES (@Name_0, @Age_0) ON CONFLICT (id,name) DO UPDATE SET name = EXCLUDED.name,age = EXCLUDED.age`, sql)
}

func TestBuildUpsert_KeysOnlyInConflict(t *testing.T) {
	e := newTestEngine(t)

	sql, err := e.BuildUpsert(Membership{}, 1, true, selector.Names("UserID", "GroupID"))
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO membership ("role") VALUES (@Role_0) ON CONFLICT (user_id,group_id) DO UPDATE SET role = EXCLUDED.role`,
		sql)
}

func TestBuildUpsert_UnmappedConflictFieldLeavesEmptySlot(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	type Tagged struct {
		Id    int `db:",pk"`
		Label string
		Cache string `db:"-"`
	}
	_, err = e.Map(Tagged{})
	require.NoError(t, err)

	sql, err := e.BuildUpsert(Tagged{}, 1, true, selector.Names("Id", "Cache"))
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO tagged ("label") VALUES (@Label_0) ON CONFLICT (id,) DO UPDATE SET label = EXCLUDED.label`,
		sql)
}

func TestBuildUpsert_Errors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.BuildUpsert(User3{}, 0, true, idAndName())
	assert.ErrorIs(t, err, ErrInvalidRowCount)

	_, err = e.BuildUpsert(User3{}, 1, true, selector.Names("Missing"))
	assert.ErrorIs(t, err, ErrInvalidFieldReference)

	_, err = e.BuildUpsert(Account{}, 1, true, idAndName())
	assert.ErrorIs(t, err, ErrInvalidFieldReference, "selector over another entity")

	_, err = e.BuildUpsert(KeyOnly{}, 1, false, nil)
	assert.ErrorIs(t, err, ErrNoColumns)

	type Unmapped struct{ ID int }
	_, err = e.BuildUpsert(Unmapped{}, 1, false, nil)
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestBuildUpsert_Concurrent(t *testing.T) {
	e := newTestEngine(t)

	selectors := []*selector.Selector{
		idAndName(),
		selector.Names("Name"),
		selector.Names("Id", "Name"),
	}

	const workers = 48
	results := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = e.BuildUpsert(User3{}, 3, true, selectors[i%len(selectors)])
		}()
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if i%len(selectors) == 1 {
			assert.Contains(t, results[i], "ON CONFLICT (name) DO UPDATE")
		} else {
			assert.Equal(t, upsertUser3, results[i])
		}
	}
}
