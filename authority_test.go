package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorityFromPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces become hyphens", "My Document.tile", "my-document.tile"},
		{"directory stripped", "/home/user/My Document.tile", "my-document.tile"},
		{"already normalized", "docs.tile", "docs.tile"},
		{"uppercase lowered", "README.TILE", "readme.tile"},
		{"underscores mapped", "a_b_c.tile", "a-b-c.tile"},
		{"unicode mapped", "résumé.tile", "r-sum-.tile"},
		{"leading trailing trimmed", "--weird--.tile", "weird--.tile"},
		{"hyphen only trimmed away", "---", ""},
		{"digits kept", "v2.0.tile", "v2.0.tile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuthorityFromPath(tt.input))
		})
	}
}
