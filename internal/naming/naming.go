// Package naming converts Go identifiers into table and column names
// according to a naming convention.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention selects how raw identifiers are turned into database names.
type Convention int

const (
	// SnakeCase formats UserInfo as user_info.
	SnakeCase Convention = iota
	// CamelCase formats UserInfo as userInfo.
	CamelCase
	// PascalCase formats user_info as UserInfo.
	PascalCase
	// KebabCase is accepted for configuration but leaves names unchanged.
	KebabCase
	// Identity leaves names unchanged.
	Identity
)

// Default is the convention used when none is configured.
const Default = CamelCase

var conventionNames = map[Convention]string{
	SnakeCase:  "snake_case",
	CamelCase:  "camel_case",
	PascalCase: "pascal_case",
	KebabCase:  "kebab_case",
	Identity:   "identity",
}

// String returns the configuration name of the convention.
func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Convention(%d)", int(c))
}

// ParseConvention parses a configuration name such as "snake_case".
// Matching ignores case, dashes and underscores, so "SnakeCase" and
// "snake-case" are accepted too.
func ParseConvention(s string) (Convention, error) {
	want := normalize(s)
	for c, name := range conventionNames {
		if normalize(name) == want {
			return c, nil
		}
	}
	return Default, fmt.Errorf("naming: unknown convention %q", s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

var (
	leadingUnderscores = regexp.MustCompile(`^_+`)
	wordBoundary       = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Format converts raw according to convention c.
func Format(c Convention, raw string) string {
	switch c {
	case SnakeCase:
		return ToSnake(raw)
	case CamelCase:
		return ToCamel(raw)
	case PascalCase:
		return ToPascal(raw)
	default:
		return raw
	}
}

// Formatter returns a formatting function bound to convention c.
func Formatter(c Convention) func(string) string {
	return func(raw string) string { return Format(c, raw) }
}

// ToSnake keeps any leading underscores, splits lower/digit-to-upper
// boundaries with an underscore and lowercases the result.
func ToSnake(s string) string {
	if s == "" {
		return s
	}
	prefix := leadingUnderscores.FindString(s)
	return prefix + strings.ToLower(wordBoundary.ReplaceAllString(s[len(prefix):], "${1}_${2}"))
}

// ToCamel lowercases the first character. Single-character input is
// returned unchanged.
func ToCamel(s string) string {
	if utf8.RuneCountInString(s) < 2 {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// ToPascal lowercases s, splits it on underscores and title-cases each
// segment.
func ToPascal(s string) string {
	caser := cases.Title(language.English)
	words := strings.Split(strings.ToLower(s), "_")
	var b strings.Builder
	b.Grow(len(s))
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}
