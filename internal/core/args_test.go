package core

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/entmap/internal/mapping"
)

func TestEngine_Args(t *testing.T) {
	e := newTestEngine(t)

	args, err := e.Args(&Account{AccountID: 9, Email: "a@b.c", Balance: 10}, mapping.AllFields)
	require.NoError(t, err)
	assert.Equal(t, []any{
		sql.Named("AccountID", 9),
		sql.Named("Email", "a@b.c"),
		sql.Named("Balance", 10),
	}, args)

	type Unmapped struct{ ID int }
	_, err = e.Args(Unmapped{}, mapping.AllFields)
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestEngine_BatchArgs(t *testing.T) {
	e := newTestEngine(t)

	args, err := e.BatchArgs([]*Membership{{UserID: 1, GroupID: 2, Role: "admin"}}, mapping.AllFields)
	require.NoError(t, err)
	assert.Equal(t, []any{
		sql.Named("UserID_0", 1),
		sql.Named("GroupID_0", 2),
		sql.Named("Role_0", "admin"),
	}, args)

	_, err = e.BatchArgs(Membership{}, mapping.AllFields)
	assert.ErrorIs(t, err, ErrInvalidModelType)
	_, err = e.BatchArgs(nil, mapping.AllFields)
	assert.ErrorIs(t, err, ErrInvalidModelType)
}
