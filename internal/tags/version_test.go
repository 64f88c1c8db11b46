package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersion(t *testing.T) {
	cases := []struct {
		tag   string
		want  string
		found bool
	}{
		{"random", "", false},
		{"random-5", "", false},
		{"random-a.b.c", "", false},
		{"random-1.23.4", "1.23.4", true},
		{"random0.5", "0.5", true},
		{"0.78.9random", "0.78.9", true},
		{"50_78-91-xrandom", "50_78-91", true},
		{"0-78-91-rc5_random", "0-78-91-rc5", true},
		{"7_8_rc12-lessrandom", "7_8_rc12", true},
		{"v0.2", "0.2", true},
		{"1.2.3", "1.2.3", true},
	}
	for _, tc := range cases {
		got, ok := ExtractVersion(tc.tag)
		assert.Equal(t, tc.found, ok, tc.tag)
		assert.Equal(t, tc.want, got, tc.tag)
		if ok {
			// The extracted version is always a contiguous span of the tag.
			assert.Contains(t, tc.tag, got)
		}
	}
}
