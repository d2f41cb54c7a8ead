package httpx

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPageParams(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "page=3&page_size=25", 3, 25},
		{"zero page clamps", "page=0", 1, 10},
		{"negative page clamps", "page=-2", 1, 10},
		{"oversized page size clamps", "page_size=9999", 1, 100},
		{"garbage falls back", "page=abc&page_size=xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			page, pageSize := getPageParams(q)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestBuildPageURL(t *testing.T) {
	tests := []struct {
		name string
		opts pageOpts
		page int
		want string
	}{
		{
			name: "first page without filters is bare",
			opts: pageOpts{Page: 1, PageSize: 10},
			page: 1,
			want: "/users",
		},
		{
			name: "page number carried",
			opts: pageOpts{Page: 1, PageSize: 10},
			page: 2,
			want: "/users?page=2",
		},
		{
			name: "query preserved",
			opts: pageOpts{Page: 2, PageSize: 10, Q: "doe"},
			page: 3,
			want: "/users?page=3&q=doe",
		},
		{
			name: "non-default page size carried",
			opts: pageOpts{Page: 1, PageSize: 25},
			page: 2,
			want: "/users?page=2&page_size=25",
		},
		{
			name: "query alone on first page",
			opts: pageOpts{Page: 2, PageSize: 10, Q: "doe"},
			page: 1,
			want: "/users?q=doe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildPageURL("/users", tt.opts, tt.page))
		})
	}
}

func TestPaginationFor(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		opts := pageOpts{Page: 2, PageSize: 10, Q: "doe"}
		p := paginationFor("/users", opts, 10, 25, 3)

		assert.Equal(t, 2, p.Page)
		assert.Equal(t, 25, p.TotalCount)
		assert.Equal(t, 3, p.TotalPages)
		assert.True(t, p.HasPrev)
		assert.True(t, p.HasNext)
		assert.Equal(t, 11, p.StartIndex)
		assert.Equal(t, 20, p.EndIndex)
		assert.Equal(t, "/users?q=doe", p.PrevURL)
		assert.Equal(t, "/users?page=3&q=doe", p.NextURL)
	})

	t.Run("last page", func(t *testing.T) {
		opts := pageOpts{Page: 3, PageSize: 10}
		p := paginationFor("/users", opts, 5, 25, 3)

		assert.True(t, p.HasPrev)
		assert.False(t, p.HasNext)
		assert.Equal(t, 21, p.StartIndex)
		assert.Equal(t, 25, p.EndIndex)
		assert.Empty(t, p.NextURL)
	})

	t.Run("beyond last page", func(t *testing.T) {
		opts := pageOpts{Page: 10, PageSize: 10}
		p := paginationFor("/users", opts, 0, 25, 3)

		assert.Equal(t, 3, p.TotalPages)
		assert.False(t, p.HasNext)
		assert.Zero(t, p.StartIndex)
		assert.Zero(t, p.EndIndex)
	})

	t.Run("empty table", func(t *testing.T) {
		opts := pageOpts{Page: 1, PageSize: 10}
		p := paginationFor("/users", opts, 0, 0, 0)

		assert.False(t, p.HasPrev)
		assert.False(t, p.HasNext)
		assert.Zero(t, p.TotalCount)
	})
}
