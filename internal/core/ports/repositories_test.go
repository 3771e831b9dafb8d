package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListParams_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       ListParams
		page     int
		pageSize int
	}{
		{"zero values", ListParams{}, 1, DefaultPageSize},
		{"negative page", ListParams{Page: -3, PageSize: 5}, 1, 5},
		{"oversized page", ListParams{Page: 2, PageSize: 1000}, 2, MaxPageSize},
		{"in range", ListParams{Page: 4, PageSize: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.pageSize, got.PageSize)
		})
	}
}

func TestListParams_Offset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 0, PageSize: 20}.Offset())
	assert.Equal(t, 0, ListParams{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, ListParams{Page: 3, PageSize: 20}.Offset())
}
