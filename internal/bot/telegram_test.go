package bot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlbumGroups(t *testing.T) {
	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("p%d", i)
		}
		return out
	}

	tests := []struct {
		photos int
		sizes  []int
	}{
		{2, []int{2}},
		{10, []int{10}},
		{11, []int{6, 5}},
		{20, []int{10, 10}},
		{21, []int{7, 7, 7}},
		{31, []int{8, 8, 8, 7}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d photos", tt.photos), func(t *testing.T) {
			photos := ids(tt.photos)
			groups := albumGroups(photos)

			var sizes []int
			var joined []string
			for _, g := range groups {
				sizes = append(sizes, len(g))
				assert.GreaterOrEqual(t, len(g), minAlbumSize)
				assert.LessOrEqual(t, len(g), maxAlbumSize)
				joined = append(joined, g...)
			}
			assert.Equal(t, tt.sizes, sizes)
			assert.Equal(t, photos, joined, "порядок фото сохраняется")
		})
	}

	assert.Empty(t, albumGroups(nil))
}
