package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard-api/internal/constants"
)

func TestGenerateTokenKey(t *testing.T) {
	a, err := GenerateTokenKey()
	require.NoError(t, err)
	b, err := GenerateTokenKey()
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello", StripTags("<b>Hello</b>"))
	assert.Equal(t, "Tom & Jerry", StripTags("Tom & Jerry"))
	assert.Equal(t, "", StripTags("<script>alert(1)</script>"))
	assert.Equal(t, "plain", StripTags("  plain  "))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		page     int
		pageSize int
	}{
		{"defaults", "", 1, constants.DefaultPageSize},
		{"page size", "?page=3&page_size=10", 3, 10},
		{"limit alias", "?limit=25", 1, 25},
		{"out of range", "?page=-1&page_size=100000", 1, constants.DefaultPageSize},
		{"garbage", "?page=abc&page_size=x", 1, constants.DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/contacts"+tt.query, nil)

			params := GetPaginationParams(c)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.pageSize, params.PageSize)
		})
	}
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 2, PageSize: 10}, 21)
	assert.Equal(t, 3, resp.TotalPages)
	assert.EqualValues(t, 21, resp.Total)

	assert.Equal(t, 0, NewPaginationResponse(PaginationParams{Page: 1, PageSize: 10}, 0).TotalPages)
}
