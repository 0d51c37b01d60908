package core

import (
	"database/sql"
	"strings"
)

// Bind rewrites the @Field placeholders of query to the dialect's
// positional placeholders ($1, $2 on PostgreSQL; ? on SQLite) and returns
// the argument values in placeholder order. args are sql.NamedArg values as
// returned by Args, BatchArgs and FilterArgs. Placeholders inside quoted
// strings and identifiers are left alone.
func (e *Engine) Bind(query string, args ...any) (string, []any, error) {
	named := make(map[string]any, len(args))
	for _, a := range args {
		na, ok := a.(sql.NamedArg)
		if !ok {
			return "", nil, WrapError(ErrUnboundParameter, "argument is not sql.NamedArg")
		}
		named[na.Name] = na.Value
	}

	var (
		b     strings.Builder
		out   = make([]any, 0, len(args))
		quote byte
	)
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)

		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)

		case c == '@' && i+1 < len(query) && isIdentStart(query[i+1]):
			j := i + 1
			for j < len(query) && isIdentPart(query[j]) {
				j++
			}
			name := query[i+1 : j]
			v, ok := named[name]
			if !ok {
				return "", nil, WrapError(ErrUnboundParameter, "@"+name)
			}
			out = append(out, v)
			b.WriteString(e.dialect.Placeholder(len(out)))
			i = j - 1

		default:
			b.WriteByte(c)
		}
	}
	return b.String(), out, nil
}

// isIdentifier reports whether s can follow @ as a whole placeholder name.
func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
