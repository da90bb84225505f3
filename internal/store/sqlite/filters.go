package sqlite

import (
	"strings"

	"chatapi/internal/domain"
)

// Recognized ordering fields mapped onto their SQL columns, per entity.
var (
	messageOrderColumns = map[string]string{
		"created_at": "m.created_at",
		"id":         "m.id",
	}
	conversationOrderColumns = map[string]string{
		"created_at": "c.created_at",
		"id":         "c.id",
		"title":      "c.title",
	}
)

// orderClause renders a validated ordering into SQL. The id column is always
// appended ascending as a tie-break, so the order is total and repeated
// paginated fetches cannot duplicate or skip rows.
func orderClause(o domain.Ordering, columns map[string]string, idColumn string) string {
	col, ok := columns[o.Field]
	if !ok {
		col = columns["created_at"]
		o.Desc = true
	}
	dir := " ASC"
	if o.Desc {
		dir = " DESC"
	}
	clause := " ORDER BY " + col + dir
	if col != idColumn {
		clause += ", " + idColumn + " ASC"
	}
	return clause
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for LIKE against a
// LOWER()-ed column. LIKE metacharacters in the term are escaped so the match
// stays a literal substring; the paired clause must carry ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
