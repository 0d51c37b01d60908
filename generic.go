package entmap

import "reflect"

// The functions below operate on the Default engine with the entity given as
// a type parameter.

// Map maps T on the default engine.
func Map[T any]() (*Entity, error) {
	return Default().Map(reflect.TypeFor[T]())
}

// GetOrAdd returns the descriptor of T, mapping it when absent.
func GetOrAdd[T any]() (*Entity, error) {
	return Default().GetOrAdd(reflect.TypeFor[T]())
}

// Get returns the descriptor of T if it is mapped.
func Get[T any]() (*Entity, bool) {
	return Default().Get(reflect.TypeFor[T]())
}

// IsMapped reports whether T is mapped.
func IsMapped[T any]() bool {
	return Default().IsMapped(reflect.TypeFor[T]())
}

// CreateEmptyMap registers an empty descriptor of T for manual mapping.
func CreateEmptyMap[T any]() (*Entity, error) {
	return Default().CreateEmptyMap(reflect.TypeFor[T]())
}

// BuildInsert returns the INSERT statement of T.
func BuildInsert[T any]() (string, error) {
	return Default().BuildInsert(reflect.TypeFor[T]())
}

// BuildBulkInsert returns the INSERT statement of T for count rows.
func BuildBulkInsert[T any](count int) (string, error) {
	return Default().BuildBulkInsert(reflect.TypeFor[T](), count)
}

// BuildUpdate returns the UPDATE statement of T.
func BuildUpdate[T any]() (string, error) {
	return Default().BuildUpdate(reflect.TypeFor[T]())
}

// BuildUpsert returns the upsert statement of T for count rows.
func BuildUpsert[T any](count int, doUpdate bool, conflict *Selector) (string, error) {
	return Default().BuildUpsert(reflect.TypeFor[T](), count, doUpdate, conflict)
}

// BuildSelect returns the SELECT statement of T filtered by filter.
func BuildSelect[T any](filter any) (string, error) {
	return Default().BuildSelect(reflect.TypeFor[T](), filter)
}

// BuildSelectByID returns the SELECT statement of T for one row.
func BuildSelectByID[T any](id any) (string, error) {
	return Default().BuildSelectByID(reflect.TypeFor[T](), id)
}

// BuildCount returns the COUNT statement of T filtered by filter.
func BuildCount[T any](filter any) (string, error) {
	return Default().BuildCount(reflect.TypeFor[T](), filter)
}

// BuildDelete returns the DELETE statement of T filtered by filter.
func BuildDelete[T any](filter any) (string, error) {
	return Default().BuildDelete(reflect.TypeFor[T](), filter)
}

// BuildDeleteByID returns the DELETE statement of T matching every key.
func BuildDeleteByID[T any]() (string, error) {
	return Default().BuildDeleteByID(reflect.TypeFor[T]())
}

// BuildDeleteAll returns the DELETE statement of T without a filter.
func BuildDeleteAll[T any]() (string, error) {
	return Default().BuildDeleteAll(reflect.TypeFor[T]())
}

// BuildTruncate returns the truncate statement of T.
func BuildTruncate[T any]() (string, error) {
	return Default().BuildTruncate(reflect.TypeFor[T]())
}
