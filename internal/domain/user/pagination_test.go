package user

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	users := []User{
		{ID: 1, Name: "A", Email: "a@x.com"},
		{ID: 2, Name: "B", Email: "b@x.com"},
		{ID: 3, Name: "C", Email: "c@x.com"},
	}

	tests := []struct {
		name      string
		page      int64
		limit     int64
		wantIDs   []int64
		wantPages int64
	}{
		{name: "first page", page: 1, limit: 2, wantIDs: []int64{1, 2}, wantPages: 2},
		{name: "last partial page", page: 2, limit: 2, wantIDs: []int64{3}, wantPages: 2},
		{name: "past the end", page: 5, limit: 2, wantIDs: []int64{}, wantPages: 2},
		{name: "no limit", page: 1, limit: 0, wantIDs: []int64{1, 2, 3}, wantPages: 1},
		{name: "page defaults to 1", page: 0, limit: 1, wantIDs: []int64{1}, wantPages: 3},
		{name: "huge page", page: 1 << 62, limit: 4, wantIDs: []int64{}, wantPages: 1},
		{name: "huge page wrapping to first page", page: 2305843009213693953, limit: 8, wantIDs: []int64{}, wantPages: 1},
		{name: "max page", page: math.MaxInt64, limit: 2, wantIDs: []int64{}, wantPages: 2},
		{name: "max limit", page: 1, limit: math.MaxInt64, wantIDs: []int64{1, 2, 3}, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, p := Paginate(users, tt.page, tt.limit)

			ids := make([]int64, 0, len(got))
			for _, u := range got {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, int64(3), p.Total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			if tt.page > 0 {
				assert.Equal(t, tt.page, p.Page)
			}
		})
	}
}

func TestSnapshot_SubmitLabel(t *testing.T) {
	assert.Equal(t, "Create User", Snapshot{Mode: ModeCreate}.SubmitLabel())
	assert.Equal(t, "Update User", Snapshot{Mode: ModeEdit}.SubmitLabel())
}
