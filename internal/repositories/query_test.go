package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfoliocms/backend/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestListQuery_Build(t *testing.T) {
	order := map[string]string{"title": "title ASC", "views": "views DESC"}

	tests := []struct {
		name          string
		build         func() *listQuery
		params        models.ListParams
		expectedQuery string
		expectedArgs  []any
	}{
		{
			name:          "no filters uses fallback order",
			build:         func() *listQuery { return newListQuery().OrderBy("", order, "sort_order ASC") },
			params:        models.ListParams{Page: 1, Limit: 10},
			expectedQuery: "SELECT * FROM t ORDER BY sort_order ASC LIMIT ? OFFSET ?",
			expectedArgs:  []any{10, 0},
		},
		{
			name: "page two offsets by limit",
			build: func() *listQuery {
				return newListQuery().Equal("status", "published").OrderBy("views", order, "sort_order ASC")
			},
			params:        models.ListParams{Page: 2, Limit: 10},
			expectedQuery: "SELECT * FROM t WHERE status = ? ORDER BY views DESC LIMIT ? OFFSET ?",
			expectedArgs:  []any{"published", 10, 10},
		},
		{
			name: "unknown order key falls back",
			build: func() *listQuery {
				return newListQuery().OrderBy("id; DROP TABLE t", order, "created_at DESC")
			},
			params:        models.ListParams{Page: 1, Limit: 5},
			expectedQuery: "SELECT * FROM t ORDER BY created_at DESC LIMIT ? OFFSET ?",
			expectedArgs:  []any{5, 0},
		},
		{
			name: "empty filters are skipped",
			build: func() *listQuery {
				return newListQuery().Equal("status", "").EqualInt("rating", 0).Bool("featured", nil).
					Search("   ", "name").JSONContains("tags", "").DateFrom("created_at", nil).DateTo("created_at", nil)
			},
			params:        models.ListParams{Page: 1, Limit: 10},
			expectedQuery: "SELECT * FROM t LIMIT ? OFFSET ?",
			expectedArgs:  []any{10, 0},
		},
		{
			name: "combined filters",
			build: func() *listQuery {
				return newListQuery().
					Equal("category", "web").
					Bool("featured", boolPtr(false)).
					EqualInt("rating", 5).
					JSONContains("tags", "go").
					Search("50%_off", "title", "content")
			},
			params: models.ListParams{Page: 3, Limit: 20},
			expectedQuery: "SELECT * FROM t WHERE category = ? AND featured = ? AND rating = ? AND " +
				"JSON_CONTAINS(tags, JSON_QUOTE(?)) AND (title LIKE ? OR content LIKE ?) LIMIT ? OFFSET ?",
			expectedArgs: []any{"web", false, 5, "go", `%50\%\_off%`, `%50\%\_off%`, 20, 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.build().Build("SELECT * FROM t", tt.params)
			assert.Equal(t, tt.expectedQuery, query)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestListQuery_DateRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dayTo := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	exactTo := time.Date(2024, 1, 31, 15, 30, 0, 0, time.UTC)

	where, args := newListQuery().DateFrom("created_at", &from).DateTo("created_at", &dayTo).Where()
	assert.Equal(t, " WHERE created_at >= ? AND created_at < ?", where)
	require.Len(t, args, 2)
	assert.Equal(t, from, args[0])
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), args[1])

	where, args = newListQuery().DateTo("created_at", &exactTo).Where()
	assert.Equal(t, " WHERE created_at <= ?", where)
	assert.Equal(t, []any{exactTo}, args)
}

func TestStringList(t *testing.T) {
	t.Run("value of nil list is empty array", func(t *testing.T) {
		v, err := stringList(nil).Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("value encodes items", func(t *testing.T) {
		v, err := stringList{"Go", "MySQL"}.Value()
		require.NoError(t, err)
		assert.Equal(t, `["Go","MySQL"]`, v)
	})

	tests := []struct {
		name     string
		src      any
		expected stringList
		wantErr  bool
	}{
		{"bytes", []byte(`["a","b"]`), stringList{"a", "b"}, false},
		{"string", `["x"]`, stringList{"x"}, false},
		{"null column", nil, stringList{}, false},
		{"empty bytes", []byte{}, stringList{}, false},
		{"json null", []byte("null"), stringList{}, false},
		{"invalid json", []byte("{"), nil, true},
		{"unsupported type", 42, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l stringList
			err := l.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, l)
		})
	}
}

func TestDistinctStrings(t *testing.T) {
	got := distinctStrings([]stringList{{"go", "sql"}, {"sql", "", "api"}, nil})
	assert.Equal(t, []string{"api", "go", "sql"}, got)
	assert.Equal(t, []string{}, distinctStrings(nil))
}
