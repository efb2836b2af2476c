package sym

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRegistryIsBidirectional(t *testing.T) {
	for _, e := range registry {
		assert.Equal(t, e.glyph, For(e.name), e.name)
		assert.Equal(t, e.name, Name(e.glyph), e.glyph)
		assert.NotEmpty(t, Describe(e.name), e.name)
	}
}

func TestGlyphsAreUniqueSingleRunes(t *testing.T) {
	seen := make(map[string]string)
	for _, e := range registry {
		assert.Equal(t, 1, utf8.RuneCountInString(e.glyph), e.name)
		if prev, ok := seen[e.glyph]; ok {
			t.Errorf("glyph %q used by both %q and %q", e.glyph, prev, e.name)
		}
		seen[e.glyph] = e.name
	}
}

func TestUnknownName(t *testing.T) {
	assert.Empty(t, For("pulse"))
	assert.Empty(t, Name("?"))
}
