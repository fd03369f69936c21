package ticket

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePreservesRuneBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii untouched", "Mathematics", 25, "Mathematics"},
		{"long ascii clipped", "Advanced Engineering Mathematics", 10, "Advanced ."},
		{"multibyte name clipped on rune", "Géographie Économique Régionale Avancée", 10, "Géographi."},
		{"multibyte within byte limit", "Überseehändel", 20, "Überseehändel"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.in, tc.max)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
