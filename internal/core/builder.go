package core

import (
	"strings"

	"github.com/coregx/entmap/internal/cache"
	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/shape"
	"github.com/coregx/entmap/internal/tracer"
)

// buildFunc renders a statement from a descriptor snapshot and its qualified
// table name.
type buildFunc func(v *mapping.View, table string) (string, error)

// statement runs one traced build. When cached is true the result is looked
// up and stored under (type, kind, shape).
func (e *Engine) statement(kind cache.Kind, model any, id shape.ID, cached bool, build buildFunc) (string, error) {
	_, span := e.tracer.StartSpan(e.context(), tracer.SpanName(kind.String()))
	defer span.End()

	meta := &tracer.StatementMetadata{Kind: kind.String()}
	sql, err := e.buildStatement(meta, kind, model, id, cached, build)
	meta.SQL = sql
	meta.Error = err
	tracer.AddStatementAttributes(span, meta)
	return sql, err
}

func (e *Engine) buildStatement(
	meta *tracer.StatementMetadata,
	kind cache.Kind,
	model any,
	id shape.ID,
	cached bool,
	build buildFunc,
) (string, error) {
	view, table, err := e.resolve(meta, model)
	if err != nil {
		return "", err
	}

	if cached {
		if sql, ok := e.cache.Get(view.Type, view.Version, kind, id); ok {
			meta.CacheHit = true
			return sql, nil
		}
	}

	sql, err := build(view, table)
	if err != nil {
		return "", err
	}
	if cached {
		e.cache.Put(view.Type, view.Version, kind, id, sql)
	}

	e.logger.Debug("statement built",
		"entity", meta.Entity,
		"kind", meta.Kind,
		"sql", sql,
	)
	return sql, nil
}

// resolve returns the descriptor snapshot of model and its qualified table
// name, recording both on meta.
func (e *Engine) resolve(meta *tracer.StatementMetadata, model any) (*mapping.View, string, error) {
	ent, err := e.entity(model)
	if err != nil {
		if t, terr := mapping.TypeOf(model); terr == nil {
			meta.Entity = t.String()
		}
		return nil, "", err
	}

	view := ent.Snapshot()
	meta.Entity = view.Name()

	table, err := view.QualifiedName()
	if err != nil {
		return nil, "", err
	}
	meta.Table = table
	return view, table, nil
}

// BuildInsert returns
//
//	INSERT INTO table ("col1", "col2") VALUES (@Field1, @Field2)
//
// with columns in registration order. Keys are not inserted.
func (e *Engine) BuildInsert(model any) (string, error) {
	return e.statement(cache.Insert, model, shape.None, true, func(v *mapping.View, table string) (string, error) {
		if len(v.Columns) == 0 {
			return "", WrapError(ErrNoColumns, v.Name())
		}
		return "INSERT INTO " + table + " (" + e.quotedColumns(v) + ") VALUES (" + placeholders(v.Columns) + ")", nil
	})
}

// BuildBulkInsert returns an INSERT with count VALUES tuples whose
// placeholders carry the row index, @Field_0 ... @Field_<count-1>. Bulk
// statements are never cached.
func (e *Engine) BuildBulkInsert(model any, count int) (string, error) {
	return e.statement(cache.BulkInsert, model, shape.None, false, func(v *mapping.View, table string) (string, error) {
		if count < 1 {
			return "", WrapError(ErrInvalidRowCount, v.Name())
		}
		if len(v.Columns) == 0 {
			return "", WrapError(ErrNoColumns, v.Name())
		}
		return "INSERT INTO " + table + " (" + e.quotedColumns(v) + ") VALUES " +
			cache.RepeatValues(fieldNames(v.Columns), count), nil
	})
}

// BuildUpdate returns
//
//	UPDATE table SET col1=@Field1,col2=@Field2 WHERE key=@Key
//
// Only the first registered key is used in the WHERE clause, also for
// entities with composite keys.
func (e *Engine) BuildUpdate(model any) (string, error) {
	return e.statement(cache.Update, model, shape.None, true, func(v *mapping.View, table string) (string, error) {
		if len(v.Keys) == 0 {
			return "", WrapError(ErrPrimaryKeyMissing, v.Name())
		}
		if len(v.Columns) == 0 {
			return "", WrapError(ErrNoColumns, v.Name())
		}

		var b strings.Builder
		b.WriteString("UPDATE ")
		b.WriteString(table)
		b.WriteString(" SET ")
		for i, f := range v.Columns {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Column)
			b.WriteString("=@")
			b.WriteString(f.Name)
		}
		key := v.Keys[0]
		b.WriteString(" WHERE ")
		b.WriteString(key.Column)
		b.WriteString("=@")
		b.WriteString(key.Name)
		return b.String(), nil
	})
}

// BuildSelect returns SELECT over every key and column, filtered by the
// fields of filter (a struct, a map with string keys or nil).
func (e *Engine) BuildSelect(model any, filter any) (string, error) {
	fields, id, err := filterShape(filter)
	if err != nil {
		return e.failed(cache.Select, model, err)
	}
	return e.statement(cache.Select, model, id, true, func(v *mapping.View, table string) (string, error) {
		return withWhere("SELECT "+v.SelectList()+" FROM "+table, v.Where(fields)), nil
	})
}

// BuildSelectByID returns SELECT over every key and column for one row.
// When id is a struct or map its fields form the WHERE clause; otherwise
// every key is matched.
func (e *Engine) BuildSelectByID(model any, id any) (string, error) {
	if isFilter(id) {
		fields, sid, err := filterShape(id)
		if err != nil {
			return e.failed(cache.SelectByID, model, err)
		}
		if len(fields) == 0 {
			return e.failed(cache.SelectByID, model, WrapError(ErrInvalidFilter, "empty id filter"))
		}
		return e.statement(cache.SelectByID, model, sid, true, func(v *mapping.View, table string) (string, error) {
			return "SELECT " + v.SelectList() + " FROM " + table + " WHERE " + v.Where(fields), nil
		})
	}

	return e.byKeys(cache.SelectByID, model, func(v *mapping.View, table string) string {
		return "SELECT " + v.SelectList() + " FROM " + table
	})
}

// BuildCount returns SELECT COUNT(1), filtered by the fields of filter when
// it has any.
func (e *Engine) BuildCount(model any, filter any) (string, error) {
	fields, id, err := filterShape(filter)
	if err != nil {
		return e.failed(cache.Count, model, err)
	}
	return e.statement(cache.Count, model, id, true, func(v *mapping.View, table string) (string, error) {
		return withWhere("SELECT COUNT(1) FROM "+table, v.Where(fields)), nil
	})
}

// BuildDelete returns DELETE FROM filtered by the fields of filter. An
// empty filter is rejected; use BuildDeleteAll to delete every row.
func (e *Engine) BuildDelete(model any, filter any) (string, error) {
	fields, id, err := filterShape(filter)
	if err == nil && len(fields) == 0 {
		err = WrapError(ErrInvalidFilter, "delete filter has no fields")
	}
	if err != nil {
		return e.failed(cache.Delete, model, err)
	}
	return e.statement(cache.Delete, model, id, true, func(v *mapping.View, table string) (string, error) {
		return "DELETE FROM " + table + " WHERE " + v.Where(fields), nil
	})
}

// BuildDeleteByID returns DELETE FROM matching every key.
func (e *Engine) BuildDeleteByID(model any) (string, error) {
	return e.byKeys(cache.DeleteByID, model, func(_ *mapping.View, table string) string {
		return "DELETE FROM " + table
	})
}

// BuildDeleteAll returns DELETE FROM without a WHERE clause.
func (e *Engine) BuildDeleteAll(model any) (string, error) {
	return e.statement(cache.DeleteAll, model, shape.None, true, func(_ *mapping.View, table string) (string, error) {
		return "DELETE FROM " + table, nil
	})
}

// BuildTruncate returns the dialect's truncate statement, TRUNCATE TABLE
// on PostgreSQL.
func (e *Engine) BuildTruncate(model any) (string, error) {
	return e.statement(cache.Truncate, model, shape.None, true, func(_ *mapping.View, table string) (string, error) {
		return e.dialect.TruncateSQL(table), nil
	})
}

// byKeys builds head + " WHERE " + every key, cached under the key shape.
func (e *Engine) byKeys(kind cache.Kind, model any, head func(v *mapping.View, table string) string) (string, error) {
	return e.statement(kind, model, shape.None, true, func(v *mapping.View, table string) (string, error) {
		if len(v.Keys) == 0 {
			return "", WrapError(ErrPrimaryKeyMissing, v.Name())
		}
		return head(v, table) + " WHERE " + v.KeyWhere(), nil
	})
}

// failed records a build that was rejected before reaching the registry.
func (e *Engine) failed(kind cache.Kind, model any, err error) (string, error) {
	return e.statement(kind, model, shape.None, false, func(*mapping.View, string) (string, error) {
		return "", err
	})
}

func (e *Engine) quotedColumns(v *mapping.View) string {
	parts := make([]string, len(v.Columns))
	for i, f := range v.Columns {
		parts[i] = e.dialect.QuoteIdentifier(f.Column)
	}
	return strings.Join(parts, ", ")
}

func placeholders(fields []mapping.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = "@" + f.Name
	}
	return strings.Join(parts, ", ")
}

func fieldNames(fields []mapping.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func withWhere(head, where string) string {
	if where == "" {
		return head
	}
	return head + " WHERE " + where
}
