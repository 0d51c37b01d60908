package mapping

import (
	"reflect"
	"strings"
)

// TagName is the struct tag read by the registry.
const TagName = "db"

// fieldTag is the parsed form of a db struct tag.
type fieldTag struct {
	column string // explicit destination, empty means "format the field name"
	key    bool
	ignore bool
	tagged bool
}

// parseTag parses a db tag.
//
// Supported formats:
//   - "-"            -> field is ignored
//   - "column"       -> column with explicit name
//   - "column,pk"    -> key with explicit name ("key" is accepted for "pk")
//   - ",pk"          -> key with formatted field name
//   - "pk"           -> legacy form of ",pk"
func parseTag(field reflect.StructField) fieldTag {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return fieldTag{}
	}

	parts := strings.Split(tag, ",")
	ft := fieldTag{
		column: strings.TrimSpace(parts[0]),
		tagged: true,
	}

	if ft.column == "-" && len(parts) == 1 {
		ft.ignore = true
		ft.column = ""
		return ft
	}

	for _, part := range parts[1:] {
		switch strings.TrimSpace(part) {
		case "pk", "key":
			ft.key = true
		}
	}

	if ft.column == "pk" {
		ft.key = true
		ft.column = ""
	}

	return ft
}

// TableNamer is implemented by models that declare their table name.
type TableNamer interface {
	TableName() string
}

// SchemaNamer is implemented by models that declare the schema of their table.
type SchemaNamer interface {
	SchemaName() string
}
