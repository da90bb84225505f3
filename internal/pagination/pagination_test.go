package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatapi/internal/domain"
	"chatapi/internal/pagination"
)

func TestParseParams(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		p, err := pagination.ParseParams(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, pagination.DefaultPageSize, p.PageSize)
	})

	t.Run("Explicit", func(t *testing.T) {
		values := url.Values{"page": {"3"}, "page_size": {"10"}}
		p, err := pagination.ParseParams(values)
		require.NoError(t, err)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 10, p.PageSize)
		assert.Equal(t, 20, p.Offset())
		assert.Equal(t, 10, p.Limit())
	})

	t.Run("ClampedAboveCeiling", func(t *testing.T) {
		values := url.Values{"page_size": {"5000"}}
		p, err := pagination.ParseParams(values)
		require.NoError(t, err)
		assert.Equal(t, pagination.MaxPageSize, p.PageSize)
	})

	t.Run("NonPositivePageSize", func(t *testing.T) {
		for _, raw := range []string{"0", "-5", "abc"} {
			_, err := pagination.ParseParams(url.Values{"page_size": {raw}})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr, raw)
			assert.Contains(t, verr.Fields, "page_size")
		}
	})

	t.Run("NonPositivePage", func(t *testing.T) {
		_, err := pagination.ParseParams(url.Values{"page": {"0"}})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "page")
	})
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNewPageMetadata(t *testing.T) {
	u := mustURL(t, "/messages?content=hi&page=1&page_size=20")

	t.Run("FirstOfThree", func(t *testing.T) {
		p := pagination.Params{Page: 1, PageSize: 20}
		page := pagination.NewPage([]int{}, 45, p, u)

		assert.Equal(t, 45, page.Count)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, 20, page.PageSize)
		require.NotNil(t, page.Next)
		assert.Nil(t, page.Previous)

		next := mustURL(t, *page.Next)
		assert.Equal(t, "2", next.Query().Get("page"))
		// Other query parameters are preserved on the link.
		assert.Equal(t, "hi", next.Query().Get("content"))
	})

	t.Run("LastOfThree", func(t *testing.T) {
		p := pagination.Params{Page: 3, PageSize: 20}
		page := pagination.NewPage([]int{}, 45, p, u)

		assert.Nil(t, page.Next)
		require.NotNil(t, page.Previous)
		prev := mustURL(t, *page.Previous)
		assert.Equal(t, "2", prev.Query().Get("page"))
	})

	t.Run("ExactMultiple", func(t *testing.T) {
		p := pagination.Params{Page: 1, PageSize: 20}
		page := pagination.NewPage([]int{}, 40, p, u)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("Empty", func(t *testing.T) {
		p := pagination.Params{Page: 1, PageSize: 20}
		page := pagination.NewPage([]int{}, 0, p, u)
		assert.Equal(t, 0, page.Count)
		assert.Equal(t, 0, page.TotalPages)
		assert.Nil(t, page.Next)
		assert.Nil(t, page.Previous)
	})

	t.Run("BeyondLastPage", func(t *testing.T) {
		p := pagination.Params{Page: 9, PageSize: 20}
		page := pagination.NewPage([]int{}, 45, p, u)

		// Accurate metadata, no next, previous is the adjacent page.
		assert.Equal(t, 45, page.Count)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 9, page.CurrentPage)
		assert.Nil(t, page.Next)
		require.NotNil(t, page.Previous)
		prev := mustURL(t, *page.Previous)
		assert.Equal(t, "8", prev.Query().Get("page"))
	})
}
