package entmap_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/entmap"
)

type Customer struct {
	Id     int `db:",pk"`
	Name   string
	Email  string
	Active bool
}

type Invoice struct {
	Number string `db:"number,pk"`
	Total  int
}

func (Invoice) TableName() string  { return "invoices" }
func (Invoice) SchemaName() string { return "billing" }

func TestGenericAPI(t *testing.T) {
	_, err := entmap.Map[Customer]()
	require.NoError(t, err)
	assert.True(t, entmap.IsMapped[Customer]())

	insert, err := entmap.BuildInsert[Customer]()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO customer ("name", "email", "active") VALUES (@Name, @Email, @Active)`, insert)

	update, err := entmap.BuildUpdate[Customer]()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE customer SET name=@Name,email=@Email,active=@Active WHERE id=@Id`, update)

	upsert, err := entmap.BuildUpsert[Customer](2, true, entmap.Fields(func(c *Customer) []any {
		return []any{&c.Id, &c.Name}
	}))
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO customer ("name", "email", "active") VALUES (@Name_0, @Email_0, @Active_0),(@Name_1, @Email_1, @Active_1) `+
			`ON CONFLICT (id,name) DO UPDATE SET name = EXCLUDED.name,email = EXCLUDED.email,active = EXCLUDED.active`,
		upsert)

	count, err := entmap.BuildCount[Customer](struct{ Active bool }{true})
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(1) FROM customer WHERE active = @Active`, count)
}

func TestGenericAPI_Unmapped(t *testing.T) {
	type Ghost struct{ ID int }

	_, ok := entmap.Get[Ghost]()
	assert.False(t, ok)

	_, err := entmap.BuildDeleteAll[Ghost]()
	assert.ErrorIs(t, err, entmap.ErrMappingNotFound)
}

func TestEngine_Isolated(t *testing.T) {
	e, err := entmap.New(entmap.WithNamingConvention(entmap.SnakeCase), entmap.WithStrictMapping(true))
	require.NoError(t, err)

	_, err = e.Map(Invoice{})
	require.NoError(t, err)
	_, err = e.Map(Invoice{})
	assert.ErrorIs(t, err, entmap.ErrMappingConflict)

	sql, err := e.BuildDeleteByID(Invoice{})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM billing.invoices WHERE number = @Number`, sql)

	assert.False(t, entmap.IsMapped[Invoice](), "engines do not share registries")
}

func Example() {
	type User struct {
		ID    int `db:"id,pk"`
		Name  string
		Email string `db:"email_address"`
	}

	engine, err := entmap.New(entmap.WithNamingConvention(entmap.SnakeCase))
	if err != nil {
		panic(err)
	}
	if _, err := engine.Map(User{}); err != nil {
		panic(err)
	}

	insert, _ := engine.BuildInsert(User{})
	update, _ := engine.BuildUpdate(User{})
	upsert, _ := engine.BuildUpsert(User{}, 2, true, entmap.Names("Email"))
	byEmail, _ := engine.BuildSelect(User{}, struct{ Email string }{})

	fmt.Println(insert)
	fmt.Println(update)
	fmt.Println(upsert)
	fmt.Println(byEmail)
	// Output:
	// INSERT INTO user ("name", "email_address") VALUES (@Name, @Email)
	// UPDATE user SET name=@Name,email_address=@Email WHERE id=@ID
	// INSERT INTO user ("name", "email_address") VALUES (@Name_0, @Email_0),(@Name_1, @Email_1) ON CONFLICT (email_address) DO UPDATE SET name = EXCLUDED.name,email_address = EXCLUDED.email_address
	// SELECT id as ID, name as Name, email_address as Email FROM user WHERE email_address = @Email
}

func ExampleEngine_Bind() {
	type Product struct {
		SKU   string `db:"sku,pk"`
		Price int
	}

	engine, _ := entmap.New(entmap.WithNamingConvention(entmap.SnakeCase))
	_, _ = engine.Map(Product{})

	update, _ := engine.BuildUpdate(Product{})
	args, _ := engine.Args(Product{SKU: "A-1", Price: 990}, entmap.AllFields)
	query, values, _ := engine.Bind(update, args...)

	fmt.Println(query)
	fmt.Println(values)
	// Output:
	// UPDATE product SET price=$1 WHERE sku=$2
	// [990 A-1]
}
