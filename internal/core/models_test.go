package core

import "testing"

type User3 struct {
	Id   int `db:",pk"`
	Name string
	Age  int
}

type Account struct {
	AccountID int    `db:"account_id,pk"`
	Email     string `db:"email_address"`
	Balance   int
}

func (Account) TableName() string  { return "accounts" }
func (Account) SchemaName() string { return "billing" }

type Membership struct {
	UserID  int `db:"user_id,pk"`
	GroupID int `db:"group_id,pk"`
	Role    string
}

type AuditLog struct {
	Message string
}

type KeyOnly struct {
	ID int `db:",pk"`
}

// newTestEngine returns an engine with User3, Account, Membership and
// AuditLog mapped.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := e.MapMany(User3{}, Account{}, Membership{}, AuditLog{}, KeyOnly{}); err != nil {
		t.Fatalf("MapMany: %v", err)
	}
	return e
}
