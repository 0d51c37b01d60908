package core

import (
	"strings"

	"github.com/coregx/entmap/internal/cache"
	"github.com/coregx/entmap/internal/mapping"
	"github.com/coregx/entmap/internal/selector"
	"github.com/coregx/entmap/internal/tracer"
)

// BuildUpsert returns an INSERT of count rows with an ON CONFLICT clause:
//
//	INSERT INTO table ("col1", "col2") VALUES (@Field1_0, @Field2_0),...
//	ON CONFLICT (col1,col2) DO UPDATE SET col1 = EXCLUDED.col1,col2 = EXCLUDED.col2
//
// The conflict columns come from conflict, resolved against columns first
// and keys second. When doUpdate is false, or conflict selects nothing, the
// clause is ON CONFLICT DO NOTHING.
//
// The parts that do not depend on count are cached per entity, with one
// conflict fragment per distinct set of conflict fields.
func (e *Engine) BuildUpsert(model any, count int, doUpdate bool, conflict *selector.Selector) (string, error) {
	return e.upsert(model, count, doUpdate, conflict, true)
}

// BuildUpsertNoCache is BuildUpsert without reading or writing the cache.
func (e *Engine) BuildUpsertNoCache(model any, count int, doUpdate bool, conflict *selector.Selector) (string, error) {
	return e.upsert(model, count, doUpdate, conflict, false)
}

func (e *Engine) upsert(model any, count int, doUpdate bool, conflict *selector.Selector, useCache bool) (string, error) {
	_, span := e.tracer.StartSpan(e.context(), tracer.SpanName(cache.Upsert.String()))
	defer span.End()

	meta := &tracer.StatementMetadata{Kind: cache.Upsert.String()}
	sql, err := e.buildUpsert(meta, model, count, doUpdate, conflict, useCache)
	meta.SQL = sql
	meta.Error = err
	tracer.AddStatementAttributes(span, meta)
	return sql, err
}

func (e *Engine) buildUpsert(
	meta *tracer.StatementMetadata,
	model any,
	count int,
	doUpdate bool,
	conflict *selector.Selector,
	useCache bool,
) (string, error) {
	view, table, err := e.resolve(meta, model)
	if err != nil {
		return "", err
	}
	if count < 1 {
		return "", WrapError(ErrInvalidRowCount, view.Name())
	}
	if len(view.Columns) == 0 {
		return "", WrapError(ErrNoColumns, view.Name())
	}
	if err := conflict.Validate(view.Type); err != nil {
		return "", err
	}

	var entry *cache.UpsertEntry
	if useCache {
		entry, meta.CacheHit = e.cache.Upsert(view.Type, view.Version)
	}
	if entry == nil {
		entry = e.newUpsertEntry(view)
		if useCache {
			entry = e.cache.PutUpsert(view.Type, view.Version, entry)
		}
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(entry.FieldsFormatted)
	b.WriteString(") VALUES ")
	b.WriteString(entry.Values(count))
	b.WriteString(" ON CONFLICT ")

	if doUpdate && conflict.Len() > 0 {
		id := conflict.Shape()
		fragment, ok := entry.Conflict(id)
		if !ok {
			meta.CacheHit = false
			fragment = entry.AddConflict(id, conflictFragment(view, conflict.Fields()))
		}
		b.WriteString(fragment)
		b.WriteString(" DO UPDATE SET ")
		b.WriteString(entry.SetClause)
	} else {
		if doUpdate {
			e.logger.Warn("upsert without conflict keys", "entity", meta.Entity)
		}
		b.WriteString("DO NOTHING")
	}

	sql := b.String()
	if !meta.CacheHit {
		e.logger.Debug("statement built",
			"entity", meta.Entity,
			"kind", meta.Kind,
			"sql", sql,
		)
	}
	return sql, nil
}

// newUpsertEntry builds the count-independent parts of an upsert. The SET
// clause covers every column, keys excluded.
func (e *Engine) newUpsertEntry(v *mapping.View) *cache.UpsertEntry {
	set := make([]string, len(v.Columns))
	for i, f := range v.Columns {
		set[i] = f.Column + " = EXCLUDED." + f.Column
	}
	return cache.NewUpsertEntry(e.quotedColumns(v), fieldNames(v.Columns), strings.Join(set, ","))
}

// conflictFragment returns "(col1,col2)" for the conflict fields. Fields
// that resolve to no column leave an empty slot.
func conflictFragment(v *mapping.View, fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = v.ConflictColumn(f)
	}
	return "(" + strings.Join(cols, ",") + ")"
}
