package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	cases := []struct {
		name  string
		page  string
		limit string
		want  Pagination
	}{
		{"defaults", "", "", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"second page", "3", "10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"zero and negative fall back", "0", "-5", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"garbage falls back", "abc", "xyz", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"oversized limit is clamped", "2", "500", Pagination{Page: 2, Limit: 100, Offset: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, paginate(tc.page, tc.limit))
		})
	}
}
