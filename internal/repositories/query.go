package repositories

import (
	"strings"
	"time"

	"github.com/portfoliocms/backend/internal/models"
)

// listQuery accumulates the WHERE and ORDER BY parts of a list statement.
// Column names are always code constants, values are always bound parameters.
type listQuery struct {
	conditions []string
	args       []any
	order      string
}

func newListQuery() *listQuery {
	return &listQuery{}
}

// Equal adds col = value, skipped when value is empty
func (q *listQuery) Equal(col, value string) *listQuery {
	if value == "" {
		return q
	}
	q.conditions = append(q.conditions, col+" = ?")
	q.args = append(q.args, value)
	return q
}

// EqualInt adds col = value, skipped when value is zero
func (q *listQuery) EqualInt(col string, value int) *listQuery {
	if value == 0 {
		return q
	}
	q.conditions = append(q.conditions, col+" = ?")
	q.args = append(q.args, value)
	return q
}

// Bool adds col = value when the filter was supplied
func (q *listQuery) Bool(col string, value *bool) *listQuery {
	if value == nil {
		return q
	}
	q.conditions = append(q.conditions, col+" = ?")
	q.args = append(q.args, *value)
	return q
}

// Search matches term as a substring of any of the columns
func (q *listQuery) Search(term string, cols ...string) *listQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return q
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " LIKE ?"
		q.args = append(q.args, pattern)
	}
	q.conditions = append(q.conditions, "("+strings.Join(parts, " OR ")+")")
	return q
}

// DateFrom adds an inclusive lower bound on col
func (q *listQuery) DateFrom(col string, from *time.Time) *listQuery {
	if from == nil {
		return q
	}
	q.conditions = append(q.conditions, col+" >= ?")
	q.args = append(q.args, *from)
	return q
}

// DateTo adds an inclusive upper bound on col.
// A bound at midnight covers the whole calendar day.
func (q *listQuery) DateTo(col string, to *time.Time) *listQuery {
	if to == nil {
		return q
	}
	if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 && to.Nanosecond() == 0 {
		q.conditions = append(q.conditions, col+" < ?")
		q.args = append(q.args, to.AddDate(0, 0, 1))
		return q
	}
	q.conditions = append(q.conditions, col+" <= ?")
	q.args = append(q.args, *to)
	return q
}

// JSONContains matches rows whose JSON array column holds value
func (q *listQuery) JSONContains(col, value string) *listQuery {
	if value == "" {
		return q
	}
	q.conditions = append(q.conditions, "JSON_CONTAINS("+col+", JSON_QUOTE(?))")
	q.args = append(q.args, value)
	return q
}

// OrderBy picks the clause registered for key, or fallback for unknown keys
func (q *listQuery) OrderBy(key string, whitelist map[string]string, fallback string) *listQuery {
	if clause, ok := whitelist[key]; ok {
		q.order = clause
		return q
	}
	q.order = fallback
	return q
}

// Where returns the WHERE clause (with leading keyword) and its arguments
func (q *listQuery) Where() (string, []any) {
	if len(q.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(q.conditions, " AND "), q.args
}

// Build assembles the full paginated statement
func (q *listQuery) Build(selectFrom string, params models.ListParams) (string, []any) {
	where, args := q.Where()
	var sb strings.Builder
	sb.WriteString(selectFrom)
	sb.WriteString(where)
	if q.order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.order)
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(append([]any{}, args...), params.Limit, params.Offset())
	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
