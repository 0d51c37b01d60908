package cache

import (
	"strconv"
	"strings"
	"sync"

	"github.com/coregx/entmap/internal/shape"
)

// UpsertEntry holds the parts of an upsert statement that do not depend on
// the row count or the conflict keys, plus one conflict fragment per
// conflict-key shape seen so far.
type UpsertEntry struct {
	FieldsFormatted string   // quoted column list
	ValueFields     []string // field names repeated in every VALUES tuple
	SetClause       string   // col = EXCLUDED.col for every column

	mu        sync.RWMutex
	conflicts map[shape.ID]string
}

// NewUpsertEntry creates an entry without conflict fragments.
func NewUpsertEntry(fieldsFormatted string, valueFields []string, setClause string) *UpsertEntry {
	return &UpsertEntry{
		FieldsFormatted: fieldsFormatted,
		ValueFields:     valueFields,
		SetClause:       setClause,
		conflicts:       make(map[shape.ID]string),
	}
}

// Conflict returns the conflict fragment stored for a conflict-key shape.
func (u *UpsertEntry) Conflict(id shape.ID) (string, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	c, ok := u.conflicts[id]
	return c, ok
}

// AddConflict stores fragment for id unless one is already present and
// returns the stored fragment.
func (u *UpsertEntry) AddConflict(id shape.ID, fragment string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if existing, ok := u.conflicts[id]; ok {
		return existing
	}
	u.conflicts[id] = fragment
	return fragment
}

// Conflicts returns the number of stored conflict fragments.
func (u *UpsertEntry) Conflicts() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.conflicts)
}

// Values returns count placeholder tuples, (@A_0, @B_0),(@A_1, @B_1),...
func (u *UpsertEntry) Values(count int) string {
	return RepeatValues(u.ValueFields, count)
}

// RepeatValues returns count placeholder tuples over fields, each name
// suffixed with its row index.
func RepeatValues(fields []string, count int) string {
	var b strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		suffix := "_" + strconv.Itoa(i)
		b.WriteByte('(')
		for j, f := range fields {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('@')
			b.WriteString(f)
			b.WriteString(suffix)
		}
		b.WriteByte(')')
	}
	return b.String()
}
